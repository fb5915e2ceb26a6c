package sources

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/usecase"
)

// amazonDomains maps a country code to its Amazon storefront.
var amazonDomains = map[string]string{
	"US": "amazon.com",
	"UK": "amazon.co.uk",
	"DE": "amazon.de",
	"FR": "amazon.fr",
	"ES": "amazon.es",
	"IT": "amazon.it",
	"JP": "amazon.co.jp",
	"IN": "amazon.in",
	"CA": "amazon.ca",
	"AU": "amazon.com.au",
}

var (
	asinPattern          = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	amazonCurrencyCode   = regexp.MustCompile(`ppu-currency">(\w+)<`)
	amazonCurrencySymbol = regexp.MustCompile(`a-price-symbol">([^<]+)<`)
)

// AmazonAdapter searches Amazon storefronts. It prefers the provider's
// structured endpoints and falls back to scraping the search results page,
// then to AI extraction when the scrape comes up short.
type AmazonAdapter struct {
	fetcher   domain.Fetcher
	extractor *Extractor
	apiKey    string
	opts      Options
}

// NewAmazonAdapter wires an Amazon adapter. apiKey is the scraping
// provider credential; without it the structured endpoints are skipped and
// only the scrape path runs.
func NewAmazonAdapter(fetcher domain.Fetcher, extractor *Extractor, apiKey string, opts Options) *AmazonAdapter {
	return &AmazonAdapter{fetcher: fetcher, extractor: extractor, apiKey: apiKey, opts: opts.withDefaults()}
}

func (a *AmazonAdapter) Name() string { return "amazon" }

// SupportedCountries lists the storefronts the adapter knows about, plus
// the wildcard: any other country is served by the amazon.com default.
func (a *AmazonAdapter) SupportedCountries() []string {
	countries := make([]string, 0, len(amazonDomains)+1)
	for c := range amazonDomains {
		countries = append(countries, c)
	}
	return append(countries, "ALL")
}

// Search runs the structured-endpoint, scrape, AI-fallback chain.
func (a *AmazonAdapter) Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error) {
	domainName, ok := amazonDomains[strings.ToUpper(country)]
	if !ok {
		domainName = amazonDomains["US"]
	}
	sourceLabel := fmt.Sprintf("Amazon %s", strings.ToUpper(country))

	if records := a.searchStructured(ctx, domainName, country, query, sourceLabel); len(records) > 0 {
		return records, nil
	}

	searchURL := fmt.Sprintf("https://www.%s/s?k=%s", domainName, url.QueryEscape(query))
	html := a.fetcher.FetchHTML(ctx, searchURL)
	if html == "" {
		log.Printf("[AMAZON] no page content for %s", searchURL)
		return nil, nil
	}

	records := a.scrapeResultsPage(html, country, query, sourceLabel, domainName)

	if len(records) < a.opts.MinResultsBeforeAI && a.extractor != nil && a.extractor.Ready() {
		log.Printf("[AMAZON] only %d scraped results, trying AI extraction", len(records))
		records = append(records, a.extractor.Extract(ctx, html, searchURL, query, sourceLabel)...)
	}
	return records, nil
}

// searchStructured hits the provider's structured Amazon endpoints: the
// product endpoint when the query looks like an ASIN, the search endpoint
// otherwise. It needs the provider credential; without one the scrape path
// is the only option.
func (a *AmazonAdapter) searchStructured(ctx context.Context, domainName, country, query, sourceLabel string) []domain.ProductRecord {
	if a.apiKey == "" {
		return nil
	}

	if asinPattern.MatchString(query) {
		endpoint := fmt.Sprintf("https://api.scraperapi.com/structured/amazon/product?api_key=%s&asin=%s",
			url.QueryEscape(a.apiKey), url.QueryEscape(query))
		payload := a.fetcher.FetchJSON(ctx, endpoint)
		if payload == nil {
			return nil
		}
		if _, ok := payload["asin"]; !ok {
			return nil
		}
		rec := a.recordFromStructured(payload, sourceLabel, country)
		if rec.ProductName == "" {
			return nil
		}
		return []domain.ProductRecord{rec}
	}

	endpoint := fmt.Sprintf("https://api.scraperapi.com/structured/amazon/search?api_key=%s&search_term=%s&domain=%s",
		url.QueryEscape(a.apiKey), url.QueryEscape(query), domainName)
	payload := a.fetcher.FetchJSON(ctx, endpoint)
	if payload == nil {
		return nil
	}

	rawProducts, _ := payload["products"].([]any)
	var records []domain.ProductRecord
	for _, raw := range rawProducts {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		rec := a.recordFromStructured(item, sourceLabel, country)
		if rec.ProductName == "" {
			continue
		}
		if !usecase.Matches(rec.ProductName, query) {
			continue
		}
		records = append(records, rec)
		if len(records) >= a.opts.MaxRawCandidates {
			break
		}
	}
	return records
}

// recordFromStructured maps one structured-endpoint item defensively:
// absent keys become empty strings, never a dropped record.
func (a *AmazonAdapter) recordFromStructured(item map[string]any, sourceLabel, country string) domain.ProductRecord {
	rec := domain.ProductRecord{
		ProductName: asString(item["name"]),
		Link:        asString(item["url"]),
		Price:       asString(item["pricing"]),
		Currency:    asString(item["currency"]),
		Source:      sourceLabel,
	}
	if rec.ProductName == "" {
		rec.ProductName = asString(item["title"])
	}
	if rec.Link == "" {
		rec.Link = asString(item["product_url"])
	}
	if rec.Price == "" {
		rec.Price = asString(item["price"])
	}
	if images, ok := item["images"].([]any); ok && len(images) > 0 {
		rec.ImageURL = asString(images[0])
	}
	if rec.ImageURL == "" {
		rec.ImageURL = asString(item["image"])
	}
	if rec.Price != "" {
		rec.Price = usecase.CleanPrice(rec.Price)
	}
	if rec.Currency == "" {
		rec.Currency = DefaultCurrency(country)
	}
	if info := infoFromAny(item["product_information"]); info != nil {
		rec.Info = info
	}
	if rating := asString(item["stars"]); rating != "" {
		rec.EnsureInfo().Rating = rating
	}
	if reviews := asString(item["total_reviews"]); reviews != "" {
		rec.EnsureInfo().Reviews = reviews
	}
	return rec
}

// scrapeResultsPage parses the Amazon search results markup directly.
func (a *AmazonAdapter) scrapeResultsPage(html, country, query, sourceLabel, domainName string) []domain.ProductRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[AMAZON] could not parse results page: %v", err)
		return nil
	}

	currency := a.currencyFromMarkup(html, country)

	items := doc.Find(`div.s-result-item[data-component-type='s-search-result']`)
	if items.Length() == 0 {
		items = doc.Find("div.sg-col-inner")
	}

	var records []domain.ProductRecord
	items.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rec, ok := a.recordFromMarkup(s, domainName, currency, sourceLabel)
		if !ok {
			return true
		}
		if !usecase.Matches(rec.ProductName, query) {
			return true
		}
		records = append(records, rec)
		return len(records) < a.opts.MaxRawCandidates
	})
	return records
}

func (a *AmazonAdapter) recordFromMarkup(s *goquery.Selection, domainName, currency, sourceLabel string) (domain.ProductRecord, bool) {
	link := s.Find("a.a-link-normal.s-no-outline")
	if link.Length() == 0 {
		link = s.Find("a.a-link-normal")
	}
	href, _ := link.First().Attr("href")
	if href == "" {
		return domain.ProductRecord{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = "https://www." + domainName + href
	}

	name := strings.TrimSpace(s.Find("span.a-size-medium").First().Text())
	if name == "" {
		name = strings.TrimSpace(s.Find("span.a-size-base-plus").First().Text())
	}
	if name == "" {
		name = strings.TrimSpace(s.Find("h2 span").First().Text())
	}
	if name == "" {
		return domain.ProductRecord{}, false
	}

	price := strings.TrimSpace(s.Find("span.a-price > span.a-offscreen").First().Text())
	if price == "" {
		price = strings.TrimSpace(s.Find("span.a-price-whole").First().Text())
	}
	if price != "" {
		price = usecase.CleanPrice(price)
	}

	rec := domain.ProductRecord{
		Link:        href,
		Price:       price,
		Currency:    currency,
		ProductName: name,
		Source:      sourceLabel,
	}
	if img, ok := s.Find("img.s-image").First().Attr("src"); ok {
		rec.ImageURL = img
	}
	if rating := strings.TrimSpace(s.Find("span.a-icon-alt").First().Text()); rating != "" {
		rec.EnsureInfo().Rating = rating
	}
	if reviews := strings.TrimSpace(s.Find("span.a-size-base.s-underline-text").First().Text()); reviews != "" {
		rec.EnsureInfo().Reviews = reviews
	}
	return rec, true
}

// currencyFromMarkup sniffs the page's own currency markers before falling
// back to the country default.
func (a *AmazonAdapter) currencyFromMarkup(html, country string) string {
	if m := amazonCurrencyCode.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	if m := amazonCurrencySymbol.FindStringSubmatch(html); m != nil {
		if code, ok := symbolCurrency[strings.TrimSpace(m[1])]; ok {
			return code
		}
	}
	return DefaultCurrency(country)
}
