package sources

import (
	"net/url"
	"regexp"
	"strings"
)

// countryCurrency is the country-code default used when no currency marker
// can be read from page markup or text.
var countryCurrency = map[string]string{
	"US": "USD",
	"UK": "GBP",
	"GB": "GBP",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"JP": "JPY",
	"IN": "INR",
	"CA": "CAD",
	"AU": "AUD",
}

var symbolCurrency = map[string]string{
	"$": "USD",
	"£": "GBP",
	"€": "EUR",
	"¥": "JPY",
	"₹": "INR",
}

// DefaultCurrency returns the default currency code for a country,
// falling back to USD.
func DefaultCurrency(country string) string {
	if code, ok := countryCurrency[strings.ToUpper(country)]; ok {
		return code
	}
	return "USD"
}

// popularSites lists ranked popular e-commerce domains per country for the
// multi-site adapter. Countries not listed here are resolved through the
// completion model and cached for the process lifetime.
var popularSites = map[string][]string{
	"US": {
		"amazon.com", "walmart.com", "bestbuy.com", "target.com", "ebay.com",
		"newegg.com", "homedepot.com", "macys.com", "kohls.com", "overstock.com",
	},
	"UK": {
		"amazon.co.uk", "argos.co.uk", "currys.co.uk", "johnlewis.com", "ebay.co.uk",
	},
	"IN": {
		"amazon.in", "flipkart.com", "myntra.com", "snapdeal.com", "croma.com",
		"reliancedigital.in", "tatacliq.com", "ajio.com", "shopclues.com", "paytmmall.com",
	},
	"AU": {
		"amazon.com.au", "jbhifi.com.au", "kogan.com", "officeworks.com.au", "ebay.com.au",
	},
	"CA": {
		"amazon.ca", "walmart.ca", "bestbuy.ca", "thebay.com", "canadiantire.ca",
	},
	"DE": {
		"amazon.de", "otto.de", "mediamarkt.de", "saturn.de", "ebay.de",
	},
	"FR": {
		"amazon.fr", "fnac.com", "cdiscount.com", "darty.com", "boulanger.com",
	},
}

// internationalSites is the last-resort domain list when neither the static
// table nor the completion model produced anything for a country.
var internationalSites = []string{"amazon.com", "ebay.com", "walmart.com"}

// productURLPatterns constrains which link paths count as product pages on
// platforms whose search pages are littered with navigation links.
var productURLPatterns = map[string]*regexp.Regexp{
	"amazon.in":    regexp.MustCompile(`/dp/|/gp/product/`),
	"flipkart.com": regexp.MustCompile(`/p/|/product/|/search\?q=`),
	"myntra.com":   regexp.MustCompile(`/buy|/\d{6,}/buy`),
	"snapdeal.com": regexp.MustCompile(`/product/|/search\?`),
}

// searchURL builds the best-guess search URL for a site: known platforms get
// their real search paths, everything else the generic /search?q= guess.
func searchURL(site, query string) string {
	q := url.QueryEscape(query)
	switch {
	case strings.Contains(site, "amazon"):
		return "https://www." + site + "/s?k=" + q
	case strings.Contains(site, "ebay"):
		return "https://www." + site + "/sch/i.html?_nkw=" + q
	case strings.Contains(site, "walmart"):
		return "https://www." + site + "/search/?query=" + q
	case strings.Contains(site, "flipkart"):
		return "https://www." + site + "/search?q=" + q
	default:
		return "https://www." + site + "/search?q=" + q
	}
}
