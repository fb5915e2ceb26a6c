package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescout/backend/internal/infrastructure/cache"
)

func TestMultiSiteAdapter_Metadata(t *testing.T) {
	adapter := NewMultiSiteAdapter(&fakeFetcher{}, NewExtractor(&fakeCompleter{}, Options{}), nil, nil, Options{})

	assert.Equal(t, "multisite", adapter.Name())
	assert.Equal(t, []string{"ALL"}, adapter.SupportedCountries())
}

func TestMultiSiteAdapter_UsesCuratedSites(t *testing.T) {
	fetcher := &fakeFetcher{}
	adapter := NewMultiSiteAdapter(fetcher, NewExtractor(&fakeCompleter{}, Options{}), nil, nil, Options{})

	_, err := adapter.Search(context.Background(), "US", "watch")
	require.NoError(t, err)

	// Fan-out is capped at the first five curated US domains.
	require.Len(t, fetcher.htmlCalls, 5)
	joined := strings.Join(fetcher.htmlCalls, " ")
	assert.Contains(t, joined, "amazon.com")
	assert.Contains(t, joined, "walmart.com")
	assert.NotContains(t, joined, "newegg.com")
}

func TestMultiSiteAdapter_DiscoversAndCachesSites(t *testing.T) {
	fetcher := &fakeFetcher{}
	suggester := &fakeSuggester{sites: []string{"mercadolibre.com.br", "americanas.com.br"}}
	siteCache := cache.NewSiteListCache()
	adapter := NewMultiSiteAdapter(fetcher, NewExtractor(&fakeCompleter{}, Options{}), siteCache, suggester, Options{})

	ctx := context.Background()

	_, err := adapter.Search(ctx, "BR", "watch")
	require.NoError(t, err)
	assert.Equal(t, 1, suggester.calls)
	assert.Contains(t, strings.Join(fetcher.htmlCalls, " "), "mercadolibre.com.br")

	cached, err := siteCache.Get(ctx, "BR")
	require.NoError(t, err)
	assert.Equal(t, suggester.sites, cached)

	// A second search hits the cache, not the suggester.
	_, err = adapter.Search(ctx, "BR", "watch")
	require.NoError(t, err)
	assert.Equal(t, 1, suggester.calls)
}

func TestMultiSiteAdapter_InternationalFallback(t *testing.T) {
	fetcher := &fakeFetcher{}
	adapter := NewMultiSiteAdapter(fetcher, NewExtractor(&fakeCompleter{}, Options{}), cache.NewSiteListCache(), &fakeSuggester{}, Options{})

	_, err := adapter.Search(context.Background(), "ZZ", "watch")
	require.NoError(t, err)

	joined := strings.Join(fetcher.htmlCalls, " ")
	for _, site := range internationalSites {
		assert.Contains(t, joined, site)
	}
}

func TestMultiSiteAdapter_ExtractsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	host := hostOf(t, server.URL)

	completer := &fakeCompleter{
		configured: true,
		response: fmt.Sprintf(`[
			{"productName":"Casio F91W Watch","price":"25","link":"%s/product/casio"},
			{"productName":"Desk Lamp","price":"30","link":"%s/product/lamp"}
		]`, server.URL, server.URL),
	}
	fetcher := &fakeFetcher{htmlFn: func(string) string { return "<html>catalog</html>" }}
	siteCache := cache.NewSiteListCache()
	require.NoError(t, siteCache.Set(context.Background(), "ZZ", []string{host}))

	adapter := NewMultiSiteAdapter(fetcher, NewExtractor(completer, Options{}), siteCache, nil, Options{})

	records, err := adapter.Search(context.Background(), "ZZ", "watch")
	require.NoError(t, err)

	// Everything the extractor accepted comes through; the adapter does
	// not second-guess item names against the query.
	require.Len(t, records, 2)
	assert.Equal(t, "Casio F91W Watch", records[0].ProductName)
	assert.Equal(t, "25", records[0].Price)
	assert.Equal(t, "USD", records[0].Currency, "missing currency falls back to the country default")
	assert.Equal(t, host, records[0].Source)
	assert.Equal(t, "Desk Lamp", records[1].ProductName)
}

func TestMultiSiteAdapter_FanoutCap(t *testing.T) {
	fetcher := &fakeFetcher{}
	adapter := NewMultiSiteAdapter(fetcher, NewExtractor(&fakeCompleter{}, Options{}), nil, nil, Options{SiteFanout: 2})

	_, err := adapter.Search(context.Background(), "IN", "watch")
	require.NoError(t, err)

	assert.Len(t, fetcher.htmlCalls, 2)
}
