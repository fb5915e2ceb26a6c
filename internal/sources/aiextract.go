package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/metrics"
	"github.com/pricescout/backend/internal/usecase"
)

// jsonArrayPattern pulls the first top-level JSON array out of a raw model
// completion, which tends to wrap it in prose or code fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// SiteScope constrains the site-scoped extraction variant to one domain,
// optionally with a required product-URL path pattern.
type SiteScope struct {
	Domain      string
	PathPattern *regexp.Regexp
}

// Extractor is the AI-assisted extraction fallback shared by the adapters.
// It asks the completion model for a JSON array of product listings, then
// validates and repairs each item before accepting it.
type Extractor struct {
	completer   domain.Completer
	probeClient *http.Client
	opts        Options
}

// NewExtractor creates an extractor bound to a completion capability.
func NewExtractor(completer domain.Completer, opts Options) *Extractor {
	opts = opts.withDefaults()
	return &Extractor{
		completer:   completer,
		probeClient: &http.Client{Timeout: opts.ProbeTimeout},
		opts:        opts,
	}
}

// Ready reports whether the fallback can run at all.
func (e *Extractor) Ready() bool {
	return e.completer != nil && e.completer.Configured()
}

// Extract runs the adapter-scoped variant: items keep whatever link and
// price the model produced, with no domain or liveness policing. Used by
// site-specific adapters whose page is already known to be the right shop.
func (e *Extractor) Extract(ctx context.Context, html, pageURL, query, sourceLabel string) []domain.ProductRecord {
	items, ok := e.completeAndParse(ctx, html, pageURL, query, "", nil)
	if !ok {
		return nil
	}

	var records []domain.ProductRecord
	for _, item := range items {
		rec, ok := e.repairItem(item, pageURL, sourceLabel)
		if !ok {
			continue
		}
		records = append(records, rec)
		if len(records) >= e.opts.AICandidateCap {
			break
		}
	}
	return records
}

// ExtractSite runs the site-scoped variant: items must link into the target
// domain, match the site's product-URL pattern when one is configured, and
// answer a liveness probe. When the parsed array validates down to zero
// accepted items the pure-markup link harvester takes over; a completion
// that failed to parse at all yields nothing.
func (e *Extractor) ExtractSite(ctx context.Context, html, pageURL, query string, scope SiteScope) []domain.ProductRecord {
	site := strings.ToLower(strings.TrimPrefix(scope.Domain, "www."))

	items, ok := e.completeAndParse(ctx, html, pageURL, query, site, scope.PathPattern)
	if !ok {
		return nil
	}

	var records []domain.ProductRecord
	for _, item := range items {
		rec, ok := e.repairItem(item, pageURL, scope.Domain)
		if !ok {
			continue
		}

		// The site-scoped variant has no use for items it can't link to
		// or price.
		if rec.Link == "" || rec.Price == "" {
			log.Printf("[EXTRACT] skipping item with missing link or price: %q", rec.ProductName)
			continue
		}
		if !strings.Contains(strings.ToLower(rec.Link), site) {
			log.Printf("[EXTRACT] skipping item with wrong domain: %s", rec.Link)
			continue
		}
		if scope.PathPattern != nil && !scope.PathPattern.MatchString(rec.Link) {
			log.Printf("[EXTRACT] skipping item not matching product URL pattern: %s", rec.Link)
			continue
		}
		if !e.probeLink(ctx, rec.Link) {
			log.Printf("[EXTRACT] skipping item with dead link: %s", rec.Link)
			continue
		}

		records = append(records, rec)
		if len(records) >= e.opts.AICandidateCap {
			break
		}
	}

	if len(records) == 0 {
		log.Printf("[EXTRACT] no valid items for %s, falling back to link harvester", scope.Domain)
		records = e.harvestLinks(ctx, html, scope)
	}
	return records
}

// aiItem is the loosely-typed shape the model returns. Fields arrive as
// strings, numbers, or null depending on the model's mood.
type aiItem struct {
	ProductName    any `json:"productName"`
	Price          any `json:"price"`
	Currency       any `json:"currency"`
	Link           any `json:"link"`
	ImageURL       any `json:"imageUrl"`
	Source         any `json:"source"`
	AdditionalInfo any `json:"additionalInfo"`
}

// completeAndParse runs the completion and parses its JSON array. ok is
// false when the completion could not run or could not be parsed; that is
// a hard stop for the whole fallback, distinct from a parsed array whose
// items all fail validation.
func (e *Extractor) completeAndParse(ctx context.Context, html, pageURL, query, site string, pattern *regexp.Regexp) ([]aiItem, bool) {
	if !e.Ready() || html == "" {
		return nil, false
	}
	metrics.RecordFallback("ai_extract")

	truncated := html
	if len(truncated) > e.opts.HTMLTruncateBytes {
		cut := e.opts.HTMLTruncateBytes
		// Never cut through a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(truncated[cut]) {
			cut--
		}
		truncated = truncated[:cut] + "..."
	}

	prompt := e.buildPrompt(truncated, pageURL, query, site, pattern)

	answer := e.completer.Complete(ctx, prompt)
	if answer == "" {
		return nil, false
	}
	if match := jsonArrayPattern.FindString(answer); match != "" {
		answer = match
	}

	var items []aiItem
	if err := json.Unmarshal([]byte(answer), &items); err != nil {
		log.Printf("[EXTRACT] failed to parse completion JSON: %v", err)
		return nil, false
	}
	return items, true
}

func (e *Extractor) buildPrompt(truncatedHTML, pageURL, query, site string, pattern *regexp.Regexp) string {
	var b strings.Builder
	b.WriteString("You are a web scraping assistant. Extract up to ")
	fmt.Fprintf(&b, "%d product listings", e.opts.AICandidateCap)
	if site != "" {
		fmt.Fprintf(&b, " ONLY from the website %s. Do NOT include products from any other site.\nWebsite: %s", site, site)
	} else {
		b.WriteString(" from this search results page.")
	}
	fmt.Fprintf(&b, "\nSearch URL: %s\nSearch Query: %s\nHTML Content (truncated):\n%s\n", pageURL, query, truncatedHTML)
	b.WriteString("For each product found, return a JSON list of objects with: productName, price, currency, link, imageUrl, additionalInfo (should be a dictionary or null). ")
	b.WriteString("Only use product links that are present in the provided HTML. Do not make up or guess links. If a field is missing, set it to an empty string. ")
	b.WriteString("Only include products that match the search query.")
	if pattern != nil {
		fmt.Fprintf(&b, " For %s, only extract links matching the pattern: %s", site, pattern.String())
	}
	return b.String()
}

// repairItem applies the ordered validation-and-repair steps to one model
// item. Returns ok=false only for the unconditional discard (no name);
// link/price policing is the site-scoped caller's job.
func (e *Extractor) repairItem(item aiItem, pageURL, sourceLabel string) (domain.ProductRecord, bool) {
	name := asString(item.ProductName)
	if name == "" {
		return domain.ProductRecord{}, false
	}

	rec := domain.ProductRecord{
		ProductName: name,
		Link:        asString(item.Link),
		Price:       asString(item.Price),
		Currency:    asString(item.Currency),
		ImageURL:    asString(item.ImageURL),
		Source:      asString(item.Source),
	}

	if rec.Link != "" && !strings.HasPrefix(rec.Link, "http://") && !strings.HasPrefix(rec.Link, "https://") {
		rec.Link = resolveLink(pageURL, rec.Link)
	}
	if rec.Source == "" {
		rec.Source = sourceLabel
	}
	if rec.Price != "" {
		rec.Price = usecase.CleanPrice(rec.Price)
	}
	rec.Info = infoFromAny(item.AdditionalInfo)

	return rec, true
}

// harvestLinks is the last extraction stage: no model involved, just the
// page's own hyperlinks filtered to the target domain.
func (e *Extractor) harvestLinks(ctx context.Context, html string, scope SiteScope) []domain.ProductRecord {
	metrics.RecordFallback("link_harvest")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[EXTRACT] link harvester could not parse page: %v", err)
		return nil
	}

	site := strings.ToLower(strings.TrimPrefix(scope.Domain, "www."))
	seen := make(map[string]struct{})
	var records []domain.ProductRecord

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href == "" || !strings.Contains(strings.ToLower(href), site) {
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}
		seen[href] = struct{}{}

		if scope.PathPattern != nil && !scope.PathPattern.MatchString(href) {
			return true
		}

		name := strings.TrimSpace(s.Text())
		if name == "" {
			name, _ = s.Attr("title")
		}
		if name == "" {
			return true
		}

		link := href
		if !strings.HasPrefix(link, "http") {
			if !strings.HasPrefix(link, "/") {
				link = "/" + link
			}
			link = "https://" + site + link
		}
		if !e.probeLink(ctx, link) {
			return true
		}

		records = append(records, domain.ProductRecord{
			Link:        link,
			ProductName: name,
			Source:      scope.Domain,
		})
		return len(records) < e.opts.AICandidateCap
	})

	return records
}

// probeLink checks that a link is alive: HEAD request, redirects followed,
// any 2xx counts as success.
func (e *Extractor) probeLink(ctx context.Context, link string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return false
	}
	resp, err := e.probeClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// resolveLink resolves a relative link against the origin of the page it
// was extracted from.
func resolveLink(pageURL, link string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// asString renders whatever the model returned as a plain string; null and
// absent values become "".
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// infoFromAny converts the model's additionalInfo value into provenance:
// null stays absent, a mapping keeps its known fields and overflows the
// rest, anything else is wrapped as {"info": value}.
func infoFromAny(v any) *domain.AdditionalInfo {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		info := &domain.AdditionalInfo{}
		for k, raw := range t {
			val := asString(raw)
			switch strings.ToLower(k) {
			case "rating":
				info.Rating = val
			case "reviews":
				info.Reviews = val
			case "snippet":
				info.Snippet = val
			case "brand":
				info.Brand = val
			default:
				if info.Extra == nil {
					info.Extra = make(map[string]string)
				}
				info.Extra[k] = val
			}
		}
		return info
	default:
		return &domain.AdditionalInfo{Extra: map[string]string{"info": asString(v)}}
	}
}
