package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/metrics"
)

// SearchService fans a search out to every adapter that serves the
// requested country, then estimates missing prices and ranks the combined
// results. Adapter order is fixed at construction and decides result order
// before ranking.
type SearchService struct {
	adapters []domain.Adapter
}

// NewSearchService builds the service over a static adapter registry.
func NewSearchService(adapters ...domain.Adapter) *SearchService {
	return &SearchService{adapters: adapters}
}

// Search runs the full pipeline: select adapters, dispatch concurrently,
// merge, estimate, sort. One adapter failing or panicking never takes the
// others down; it just contributes nothing.
func (s *SearchService) Search(ctx context.Context, country, query string) ([]domain.ProductRecord, error) {
	eligible := s.adaptersFor(country)
	if len(eligible) == 0 {
		log.Printf("[SEARCH] no adapters available for country %q", country)
		return []domain.ProductRecord{}, nil
	}

	results := make([][]domain.ProductRecord, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range eligible {
		i, adapter := i, adapter
		g.Go(func() error {
			results[i] = s.runAdapter(gctx, adapter, country, query)
			return nil
		})
	}
	_ = g.Wait()

	merged := []domain.ProductRecord{}
	for _, batch := range results {
		merged = append(merged, batch...)
	}

	for i := range merged {
		merged[i] = EstimatePrice(merged[i], query)
	}
	SortByPrice(merged)

	return merged, nil
}

// adaptersFor selects adapters claiming the country. An adapter listing
// "ALL" is eligible for every country; registration order is preserved.
func (s *SearchService) adaptersFor(country string) []domain.Adapter {
	code := strings.ToUpper(strings.TrimSpace(country))

	var eligible []domain.Adapter
	for _, adapter := range s.adapters {
		for _, supported := range adapter.SupportedCountries() {
			supported = strings.ToUpper(supported)
			if supported == "ALL" || supported == code {
				eligible = append(eligible, adapter)
				break
			}
		}
	}
	return eligible
}

// runAdapter executes one adapter, converting failures and panics into an
// empty contribution.
func (s *SearchService) runAdapter(ctx context.Context, adapter domain.Adapter, country, query string) (records []domain.ProductRecord) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SEARCH] adapter %s panicked: %v", adapter.Name(), r)
			metrics.RecordSearch(adapter.Name(), 0, time.Since(start), nil)
			records = nil
		}
	}()

	records, err := adapter.Search(ctx, country, query)
	metrics.RecordSearch(adapter.Name(), len(records), time.Since(start), err)
	if err != nil {
		log.Printf("[SEARCH] adapter %s failed: %v", adapter.Name(), err)
		return nil
	}
	log.Printf("[SEARCH] adapter %s returned %d results", adapter.Name(), len(records))
	return records
}
