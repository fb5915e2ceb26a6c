package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// pricePatterns is the ordered extraction list: explicit currency markers
// first, a bare numeric amount strictly last. Free text is noisy and the
// high-precision patterns keep ratings, years and counts from being read as
// prices.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[$£€¥₹]\s*[\d,]+\.?\d*`),                                   // $1,234.56
	regexp.MustCompile(`(?i)[\d,]+\.?\d*\s*[$£€¥₹]`),                                   // 1,234.56$
	regexp.MustCompile(`(?i)[\d,]+\.?\d*\s*(?:USD|EUR|GBP|JPY|INR|CAD|AUD)`),           // 123.45 USD
	regexp.MustCompile(`(?i)[\d,]+\.?\d*\s*(?:dollars|rupees|euros|pounds)`),           // 123 dollars
	regexp.MustCompile(`(?i)price[^\d]*[$£€¥₹]?\s*[\d,]+\.?\d*`),                       // price: $123
	regexp.MustCompile(`(?i)cost[^\d]*[$£€¥₹]?\s*[\d,]+\.?\d*`),                        // cost: $123
	regexp.MustCompile(`(?i)starting at\s*[$£€¥₹]?\s*[\d,]+\.?\d*`),                    // starting at $123
	regexp.MustCompile(`(?i)from\s*[$£€¥₹]?\s*[\d,]+\.?\d*`),                           // from $123
	regexp.MustCompile(`[\d,]+\.?\d*`),                                                 // bare amount, last resort
}

// currencyMarkers maps symbols and codes found inside a matched price
// substring to ISO codes. Order matters: symbols are checked before codes.
var currencyMarkers = []struct {
	marker string
	code   string
}{
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"USD", "USD"},
	{"EUR", "EUR"},
	{"GBP", "GBP"},
	{"JPY", "JPY"},
	{"INR", "INR"},
	{"CAD", "CAD"},
	{"AUD", "AUD"},
}

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// yearPhrasePatterns are the fixed founding/since/edition phrasings that mark
// a 4-digit number as a year rather than a price. %d is replaced with the
// candidate digits.
var yearPhrasePatterns = []string{
	`since\s*%s`,
	`est\.?\s*%s`,
	`established\s*%s`,
	`founded\s*%s`,
	`%s\s*®`,
	`watches since %s`,
	`in\s+%s`,
	`from\s+%s`,
	`%s\s+edition`,
	`%s\s+collection`,
}

// watchFoundingYears are well known watchmaker founding years that show up
// in product copy next to the word "watch".
var watchFoundingYears = map[int]bool{
	1755: true, 1848: true, 1926: true, 1884: true, 1875: true, 1905: true,
}

// CleanPrice standardizes raw price text into canonical decimal text.
// Anything that does not survive cleaning as a number comes back as "0".
func CleanPrice(price string) string {
	if price == "" {
		return "0"
	}

	// Keep only digits, decimal points and commas
	var b strings.Builder
	for _, c := range price {
		if (c >= '0' && c <= '9') || c == '.' || c == ',' {
			b.WriteRune(c)
		}
	}
	clean := b.String()

	// A comma before a dot is a thousands separator; a comma alone is a
	// decimal separator.
	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")
	switch {
	case hasComma && hasDot:
		if strings.Index(clean, ",") < strings.Index(clean, ".") {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ExtractPriceFromText applies the ordered pattern list and returns the first
// match that is not classified as a year, along with the currency inferred
// from the matched substring ("" when no marker is present).
func ExtractPriceFromText(text string) (price, currency string) {
	if text == "" {
		return "", ""
	}

	for _, pattern := range pricePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}

		cur := ""
		for _, m := range currencyMarkers {
			if strings.Contains(match, m.marker) {
				cur = m.code
				break
			}
		}

		candidate := nonPriceChars.ReplaceAllString(match, "")
		candidate = strings.TrimRight(candidate, ".,")
		if candidate == "" {
			continue
		}

		if IsLikelyYear(candidate, text) {
			continue
		}

		return candidate, cur
	}

	return "", ""
}

// IsLikelyYear reports whether a digits-only candidate is a calendar year
// rather than a price. It is a fixed heuristic: 4-digit numbers in
// [1800, 2030] referenced by founding/since/edition phrasing, plus a short
// list of watchmaker founding years co-occurring with "watch".
func IsLikelyYear(candidate, surrounding string) bool {
	if candidate == "" || !isAllDigits(candidate) {
		return false
	}

	n, err := strconv.Atoi(candidate)
	if err != nil || n < 1800 || n > 2030 {
		return false
	}

	for _, phrase := range yearPhrasePatterns {
		re := regexp.MustCompile(`(?i)` + strings.ReplaceAll(phrase, "%s", candidate))
		if re.MatchString(surrounding) {
			return true
		}
	}

	if watchFoundingYears[n] && strings.Contains(strings.ToLower(surrounding), "watch") {
		return true
	}

	return false
}

// priceSortKey parses a cleaned or raw price for ordering; unparseable
// values sort as zero.
func priceSortKey(price string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(price, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
