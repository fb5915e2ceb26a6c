package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/usecase"
)

const defaultCustomSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

var sinceYearPattern = regexp.MustCompile(`(?i)since\s+(\d{4})`)

// GoogleSearchAdapter queries the Google Custom Search JSON API and mines
// prices out of the result metadata and text. Unlike the scraping adapters
// it cannot degrade silently: missing credentials are a hard error.
type GoogleSearchAdapter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cseID      string
	extractor  *Extractor
	opts       Options
}

// NewGoogleSearchAdapter wires a Custom Search adapter. The extractor is
// optional and only used when too few results carry a price.
func NewGoogleSearchAdapter(apiKey, cseID string, extractor *Extractor, opts Options) *GoogleSearchAdapter {
	return &GoogleSearchAdapter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultCustomSearchBaseURL,
		apiKey:     apiKey,
		cseID:      cseID,
		extractor:  extractor,
		opts:       opts.withDefaults(),
	}
}

func (g *GoogleSearchAdapter) Name() string { return "google" }

// SupportedCountries is the wildcard: the API takes any geolocation code.
func (g *GoogleSearchAdapter) SupportedCountries() []string { return []string{"ALL"} }

// searchItem is the slice of the Custom Search response we care about.
type searchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	PageMap struct {
		Offer []struct {
			Price         string `json:"price"`
			PriceCurrency string `json:"pricecurrency"`
		} `json:"offer"`
		Product []struct {
			Name  string `json:"name"`
			Brand string `json:"brand"`
		} `json:"product"`
		AggregateRating []struct {
			RatingValue string `json:"ratingvalue"`
			ReviewCount string `json:"reviewcount"`
		} `json:"aggregaterating"`
		CSEImage []struct {
			Src string `json:"src"`
		} `json:"cse_image"`
		ImageObject []struct {
			URL string `json:"url"`
		} `json:"imageobject"`
		MetaTags []map[string]string `json:"metatags"`
	} `json:"pagemap"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

func (g *GoogleSearchAdapter) Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error) {
	if g.apiKey == "" || g.cseID == "" {
		return nil, fmt.Errorf("google custom search: %w", domain.ErrMissingCredentials)
	}

	items, err := g.fetchItems(ctx, country, query)
	if err != nil {
		return nil, err
	}

	currency := DefaultCurrency(country)
	var records []domain.ProductRecord
	priced := 0
	for _, item := range items {
		rec := g.recordFromItem(item, currency)
		if rec.ProductName == "" || rec.Link == "" {
			continue
		}
		if rec.Price != "" {
			priced++
		}
		records = append(records, rec)
	}

	if priced < g.opts.MinResultsBeforeAI && g.extractor != nil && g.extractor.Ready() {
		log.Printf("[GOOGLE] only %d priced results, trying AI extraction", priced)
		records = g.mergeAIExtraction(ctx, items, query, records)
	}
	return records, nil
}

func (g *GoogleSearchAdapter) fetchItems(ctx context.Context, country, query string) ([]searchItem, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cseID)
	params.Set("q", fmt.Sprintf("%s price buy online", query))
	params.Set("gl", strings.ToLower(country))
	params.Set("num", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google custom search: build request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google custom search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google custom search: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google custom search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("google custom search: decode response: %w", err)
	}
	return parsed.Items, nil
}

func (g *GoogleSearchAdapter) recordFromItem(item searchItem, defaultCurrency string) domain.ProductRecord {
	meta := map[string]string{}
	if len(item.PageMap.MetaTags) > 0 {
		meta = item.PageMap.MetaTags[0]
	}

	name := ""
	if len(item.PageMap.Product) > 0 {
		name = item.PageMap.Product[0].Name
	}
	if name == "" {
		name = meta["og:title"]
	}
	if name == "" {
		name = item.Title
	}

	price, currency := g.priceFromItem(item, meta)
	if currency == "" {
		currency = defaultCurrency
	}

	rec := domain.ProductRecord{
		Link:        item.Link,
		Price:       price,
		Currency:    currency,
		ProductName: name,
		Source:      "Google Search",
	}

	if len(item.PageMap.CSEImage) > 0 {
		rec.ImageURL = item.PageMap.CSEImage[0].Src
	}
	if rec.ImageURL == "" && len(item.PageMap.ImageObject) > 0 {
		rec.ImageURL = item.PageMap.ImageObject[0].URL
	}
	if rec.ImageURL == "" {
		rec.ImageURL = meta["og:image"]
	}

	if item.Snippet != "" {
		rec.EnsureInfo().Snippet = item.Snippet
	}
	if len(item.PageMap.Product) > 0 && item.PageMap.Product[0].Brand != "" {
		rec.EnsureInfo().Brand = item.PageMap.Product[0].Brand
	}
	if len(item.PageMap.AggregateRating) > 0 {
		rating := item.PageMap.AggregateRating[0]
		if rating.RatingValue != "" {
			rec.EnsureInfo().Rating = rating.RatingValue
		}
		if rating.ReviewCount != "" {
			rec.EnsureInfo().Reviews = rating.ReviewCount
		}
	}
	return rec
}

// priceFromItem prefers structured offer metadata and only then mines the
// visible text, with the year heuristics guarding against founding dates
// being sold as prices.
func (g *GoogleSearchAdapter) priceFromItem(item searchItem, meta map[string]string) (string, string) {
	if len(item.PageMap.Offer) > 0 && item.PageMap.Offer[0].Price != "" {
		return usecase.CleanPrice(item.PageMap.Offer[0].Price), item.PageMap.Offer[0].PriceCurrency
	}

	combined := strings.Join([]string{item.Title, item.Snippet, meta["og:description"]}, " ")

	sinceYear := ""
	if m := sinceYearPattern.FindStringSubmatch(combined); m != nil {
		sinceYear = m[1]
	}

	price, currency := usecase.ExtractPriceFromText(combined)
	if price == "" {
		return "", ""
	}
	if usecase.IsLikelyYear(price, combined) {
		return "", ""
	}
	if sinceYear != "" && price == sinceYear {
		return "", ""
	}
	return price, currency
}

// mergeAIExtraction feeds the top result texts through the extractor and
// merges anything new, deduplicating by link.
func (g *GoogleSearchAdapter) mergeAIExtraction(ctx context.Context, items []searchItem, query string, records []domain.ProductRecord) []domain.ProductRecord {
	top := items
	if len(top) > g.opts.AICandidateCap {
		top = top[:g.opts.AICandidateCap]
	}

	var b strings.Builder
	for _, item := range top {
		fmt.Fprintf(&b, "Title: %s\nLink: %s\nSnippet: %s\n\n", item.Title, item.Link, item.Snippet)
	}
	extracted := g.extractor.Extract(ctx, b.String(), g.baseURL, query, "Google Search")

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.Link] = struct{}{}
	}
	for _, rec := range extracted {
		if rec.Link == "" {
			continue
		}
		if _, dup := seen[rec.Link]; dup {
			continue
		}
		seen[rec.Link] = struct{}{}
		records = append(records, rec)
	}
	return records
}
