package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ParsesNoisyCompletion(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		response: "Sure! Here are the products:\n```json\n" +
			`[{"productName":"Apple Watch SE","price":"$249.99","currency":"USD","link":"https://www.amazon.com/dp/B0TEST","imageUrl":"","additionalInfo":null}]` +
			"\n```",
	}
	e := NewExtractor(completer, Options{})

	records := e.Extract(context.Background(), "<html>page</html>", "https://www.amazon.com/s?k=watch", "apple watch", "Amazon US")

	require.Len(t, records, 1)
	assert.Equal(t, "Apple Watch SE", records[0].ProductName)
	assert.Equal(t, "249.99", records[0].Price)
	assert.Equal(t, "USD", records[0].Currency)
	assert.Equal(t, "Amazon US", records[0].Source)
	assert.Nil(t, records[0].Info)
}

func TestExtract_FieldRepairs(t *testing.T) {
	completer := &fakeCompleter{
		configured: true,
		response: `[
			{"productName":"Relative Link","price":399,"currency":null,"link":"/dp/B0REL"},
			{"price":"100","link":"https://example.com/nameless"},
			{"productName":"Odd Info","price":"50","link":"https://example.com/odd","additionalInfo":"ships fast"},
			{"productName":"Rich Info","price":"75","link":"https://example.com/rich","additionalInfo":{"rating":4.5,"color":"black"}}
		]`,
	}
	e := NewExtractor(completer, Options{})

	records := e.Extract(context.Background(), "<html></html>", "https://www.shop.example/s?k=x", "", "Shop")

	require.Len(t, records, 3)

	assert.Equal(t, "https://www.shop.example/dp/B0REL", records[0].Link)
	assert.Equal(t, "399", records[0].Price)
	assert.Equal(t, "", records[0].Currency)

	require.NotNil(t, records[1].Info)
	assert.Equal(t, "ships fast", records[1].Info.Extra["info"])

	require.NotNil(t, records[2].Info)
	assert.Equal(t, "4.5", records[2].Info.Rating)
	assert.Equal(t, "black", records[2].Info.Extra["color"])
}

func TestExtract_CapsAccepted(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, fmt.Sprintf(`{"productName":"Item %d","price":"%d","link":"https://example.com/%d"}`, i, i+10, i))
	}
	completer := &fakeCompleter{configured: true, response: "[" + strings.Join(items, ",") + "]"}
	e := NewExtractor(completer, Options{})

	records := e.Extract(context.Background(), "<html></html>", "https://example.com/s", "item", "Example")

	assert.Len(t, records, 5)
}

func TestExtract_UnparseableCompletion(t *testing.T) {
	completer := &fakeCompleter{configured: true, response: "I could not find any products on that page."}
	e := NewExtractor(completer, Options{})

	records := e.Extract(context.Background(), "<html></html>", "https://example.com/s", "item", "Example")

	assert.Nil(t, records)
}

func TestExtract_NotConfigured(t *testing.T) {
	e := NewExtractor(&fakeCompleter{configured: false}, Options{})

	records := e.Extract(context.Background(), "<html></html>", "https://example.com/s", "item", "Example")

	assert.Nil(t, records)
}

func TestExtract_TruncatesHTMLInPrompt(t *testing.T) {
	completer := &fakeCompleter{configured: true, response: "[]"}
	e := NewExtractor(completer, Options{HTMLTruncateBytes: 1200})

	e.Extract(context.Background(), strings.Repeat("a", 5000), "https://example.com/s", "item", "Example")

	require.Len(t, completer.prompts, 1)
	assert.Less(t, len(completer.prompts[0]), 2000)
}

func TestExtract_TruncationKeepsRunesWhole(t *testing.T) {
	completer := &fakeCompleter{configured: true, response: "[]"}
	e := NewExtractor(completer, Options{HTMLTruncateBytes: 1001})

	// Two-byte runes with an odd limit force the cut into the middle of a
	// rune unless the cut backs up to a boundary.
	e.Extract(context.Background(), strings.Repeat("é", 1000), "https://example.com/s", "item", "Example")

	require.Len(t, completer.prompts, 1)
	assert.True(t, utf8.ValidString(completer.prompts[0]))
}

func TestExtractSite_FiltersAndProbes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "dead") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	host := hostOf(t, server.URL)

	completer := &fakeCompleter{
		configured: true,
		response: fmt.Sprintf(`[
			{"productName":"Alive","price":"199","link":"%s/product/alive"},
			{"productName":"Dead","price":"299","link":"%s/product/dead"},
			{"productName":"Wrong Domain","price":"99","link":"https://elsewhere.example/product/1"},
			{"productName":"No Price","link":"%s/product/unpriced"}
		]`, server.URL, server.URL, server.URL),
	}
	e := NewExtractor(completer, Options{})

	records := e.ExtractSite(context.Background(), "<html></html>", server.URL+"/search?q=x", "x", SiteScope{Domain: host})

	require.Len(t, records, 1)
	assert.Equal(t, "Alive", records[0].ProductName)
	assert.Equal(t, host, records[0].Source)
}

func TestExtractSite_PathPatternEnforced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	host := hostOf(t, server.URL)

	completer := &fakeCompleter{
		configured: true,
		response: fmt.Sprintf(`[
			{"productName":"Product Page","price":"10","link":"%s/dp/B0AAA"},
			{"productName":"Category Page","price":"20","link":"%s/category/watches"}
		]`, server.URL, server.URL),
	}
	e := NewExtractor(completer, Options{})

	scope := SiteScope{Domain: host, PathPattern: productURLPatterns["amazon.in"]}
	records := e.ExtractSite(context.Background(), "<html></html>", server.URL, "x", scope)

	require.Len(t, records, 1)
	assert.Equal(t, "Product Page", records[0].ProductName)
}

func TestExtractSite_HarvestsLinksWhenNothingValidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	host := hostOf(t, server.URL)

	page := fmt.Sprintf(`<html><body>
		<a href="%s/product/1">First Watch</a>
		<a href="%s/product/1">First Watch duplicate</a>
		<a href="%s/product/2" title="Second Watch"></a>
		<a href="https://elsewhere.example/product/3">Other Shop</a>
	</body></html>`, server.URL, server.URL, server.URL)

	// The model answered, but every item points off-site, so the parsed
	// array validates down to nothing and the link harvester takes over.
	completer := &fakeCompleter{
		configured: true,
		response:   `[{"productName":"Off Site","price":"10","link":"https://elsewhere.example/product/9"}]`,
	}
	e := NewExtractor(completer, Options{})

	records := e.ExtractSite(context.Background(), page, server.URL, "watch", SiteScope{Domain: host})

	require.Len(t, records, 2)
	assert.Equal(t, "First Watch", records[0].ProductName)
	assert.Equal(t, "Second Watch", records[1].ProductName)
	assert.Equal(t, host, records[0].Source)
}

func TestExtractSite_UnparseableCompletionYieldsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	host := hostOf(t, server.URL)

	page := fmt.Sprintf(`<html><body><a href="%s/product/1">Live Watch</a></body></html>`, server.URL)

	// A completion that never parses means the page content is suspect;
	// harvesting links from it would launder junk into results.
	completer := &fakeCompleter{configured: true, response: "I could not find any products on that page."}
	e := NewExtractor(completer, Options{})

	records := e.ExtractSite(context.Background(), page, server.URL, "watch", SiteScope{Domain: host})

	assert.Nil(t, records)
}

func TestExtractSite_NotConfiguredYieldsNothing(t *testing.T) {
	page := `<html><body><a href="https://shop.example/product/1">Live Watch</a></body></html>`

	e := NewExtractor(&fakeCompleter{configured: false}, Options{})

	records := e.ExtractSite(context.Background(), page, "https://shop.example/s", "watch", SiteScope{Domain: "shop.example"})

	assert.Nil(t, records)
}

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Host
}
