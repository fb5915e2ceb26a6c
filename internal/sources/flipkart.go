package sources

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/usecase"
)

// FlipkartAdapter scrapes flipkart.com search results. Flipkart only
// operates in India, so every other country short-circuits before any
// network traffic.
type FlipkartAdapter struct {
	fetcher   domain.Fetcher
	extractor *Extractor
	opts      Options
}

// NewFlipkartAdapter wires a Flipkart adapter.
func NewFlipkartAdapter(fetcher domain.Fetcher, extractor *Extractor, opts Options) *FlipkartAdapter {
	return &FlipkartAdapter{fetcher: fetcher, extractor: extractor, opts: opts.withDefaults()}
}

func (f *FlipkartAdapter) Name() string { return "flipkart" }

func (f *FlipkartAdapter) SupportedCountries() []string { return []string{"IN"} }

func (f *FlipkartAdapter) Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error) {
	if strings.ToUpper(country) != "IN" {
		return nil, nil
	}

	searchURL := fmt.Sprintf("https://www.flipkart.com/search?q=%s", url.QueryEscape(query))
	html := f.fetcher.FetchHTML(ctx, searchURL)
	if html == "" {
		log.Printf("[FLIPKART] no page content for %s", searchURL)
		return nil, nil
	}

	records := f.scrapeResultsPage(html, query)

	if len(records) < f.opts.MinResultsBeforeAI && f.extractor != nil && f.extractor.Ready() {
		log.Printf("[FLIPKART] only %d scraped results, trying AI extraction", len(records))
		records = append(records, f.extractor.Extract(ctx, html, searchURL, query, "Flipkart")...)
	}
	return records, nil
}

func (f *FlipkartAdapter) scrapeResultsPage(html, query string) []domain.ProductRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[FLIPKART] could not parse results page: %v", err)
		return nil
	}

	var records []domain.ProductRecord
	doc.Find("div._1AtVbE").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rec, ok := f.recordFromMarkup(s)
		if !ok {
			return true
		}
		if !usecase.Matches(rec.ProductName, query) {
			return true
		}
		records = append(records, rec)
		return len(records) < f.opts.MaxRawCandidates
	})
	return records
}

func (f *FlipkartAdapter) recordFromMarkup(s *goquery.Selection) (domain.ProductRecord, bool) {
	href, _ := s.Find("a._1fQZEK, a._2rpwqI, a.s1Q9rs").First().Attr("href")
	if href == "" {
		return domain.ProductRecord{}, false
	}
	if !strings.HasPrefix(href, "http") {
		href = "https://www.flipkart.com" + href
	}

	name := strings.TrimSpace(s.Find("div._4rR01T, a.s1Q9rs, div._2WkVRV").First().Text())
	if name == "" {
		return domain.ProductRecord{}, false
	}

	price := strings.TrimSpace(s.Find("div._30jeq3._1_WHN1, div._30jeq3").First().Text())
	if price != "" {
		price = usecase.CleanPrice(price)
	}

	rec := domain.ProductRecord{
		Link:        href,
		Price:       price,
		Currency:    "INR",
		ProductName: name,
		Source:      "Flipkart",
	}
	if img, ok := s.Find("img._396cs4, img._2r_T1I").First().Attr("src"); ok {
		rec.ImageURL = img
	}
	if rating := strings.TrimSpace(s.Find("div._3LWZlK").First().Text()); rating != "" {
		rec.EnsureInfo().Rating = rating
	}
	if reviews := strings.TrimSpace(s.Find("span._2_R_DZ").First().Text()); reviews != "" {
		rec.EnsureInfo().Reviews = reviews
	}
	return rec, true
}
