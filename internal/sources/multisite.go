package sources

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pricescout/backend/internal/domain"
)

// SiteSuggester proposes e-commerce domains for a country the static
// tables don't cover.
type SiteSuggester interface {
	SuggestSites(ctx context.Context, country string, limit int) []string
}

// MultiSiteAdapter fans a query out across the popular shopping sites for
// a country and extracts listings from each page. It covers the countries
// the dedicated adapters don't, and adds breadth where they do.
type MultiSiteAdapter struct {
	fetcher   domain.Fetcher
	extractor *Extractor
	cache     domain.SiteCache
	suggester SiteSuggester
	opts      Options
}

// NewMultiSiteAdapter wires a multi-site adapter.
func NewMultiSiteAdapter(fetcher domain.Fetcher, extractor *Extractor, cache domain.SiteCache, suggester SiteSuggester, opts Options) *MultiSiteAdapter {
	return &MultiSiteAdapter{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		suggester: suggester,
		opts:      opts.withDefaults(),
	}
}

func (m *MultiSiteAdapter) Name() string { return "multisite" }

// SupportedCountries is the wildcard: site discovery makes any country
// servable.
func (m *MultiSiteAdapter) SupportedCountries() []string { return []string{"ALL"} }

func (m *MultiSiteAdapter) Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error) {
	sites := m.resolveSites(ctx, country)
	if len(sites) > m.opts.SiteFanout {
		sites = sites[:m.opts.SiteFanout]
	}

	results := make([][]domain.ProductRecord, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			results[i] = m.searchSite(gctx, site, country, query)
			return nil
		})
	}
	_ = g.Wait()

	var records []domain.ProductRecord
	for _, batch := range results {
		records = append(records, batch...)
	}
	return records, nil
}

// resolveSites picks the domain list for a country: the curated table
// first, then previously discovered sites, then a fresh model suggestion
// (cached for next time), then the international defaults.
func (m *MultiSiteAdapter) resolveSites(ctx context.Context, country string) []string {
	code := strings.ToUpper(country)

	if sites, ok := popularSites[code]; ok {
		return sites
	}

	if m.cache != nil {
		if sites, err := m.cache.Get(ctx, code); err == nil && len(sites) > 0 {
			return sites
		} else if err != nil && !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[MULTISITE] site cache lookup failed for %s: %v", code, err)
		}
	}

	if m.suggester != nil {
		if sites := m.suggester.SuggestSites(ctx, code, m.opts.SiteFanout); len(sites) > 0 {
			log.Printf("[MULTISITE] discovered %d sites for %s", len(sites), code)
			if m.cache != nil {
				if err := m.cache.Set(ctx, code, sites); err != nil {
					log.Printf("[MULTISITE] could not cache sites for %s: %v", code, err)
				}
			}
			return sites
		}
	}

	return internationalSites
}

func (m *MultiSiteAdapter) searchSite(ctx context.Context, site, country, query string) []domain.ProductRecord {
	pageURL := searchURL(site, query)
	html := m.fetcher.FetchHTML(ctx, pageURL)
	if html == "" {
		log.Printf("[MULTISITE] no page content for %s", pageURL)
		return nil
	}

	scope := SiteScope{Domain: site, PathPattern: productURLPatterns[site]}
	extracted := m.extractor.ExtractSite(ctx, html, pageURL, query, scope)

	// The extractor already validated the items against the query; the
	// only repair left is a missing currency.
	currency := DefaultCurrency(country)
	for i := range extracted {
		if extracted[i].Currency == "" {
			extracted[i].Currency = currency
		}
	}
	return extracted
}
