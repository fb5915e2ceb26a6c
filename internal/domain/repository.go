package domain

import "context"

// Adapter is a backend-specific search strategy. Search returns the records
// it found or an error describing why the backend produced nothing; an error
// never aborts sibling adapters, the orchestrator logs it and moves on.
type Adapter interface {
	Name() string

	// SupportedCountries lists upper-case country codes; the value "ALL"
	// is a wildcard matching any country.
	SupportedCountries() []string

	Search(ctx context.Context, country, query string) ([]ProductRecord, error)
}

// Fetcher retrieves remote content. Implementations never propagate
// transport faults: a failed fetch yields the empty value.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) string
	FetchJSON(ctx context.Context, url string) map[string]any
}

// Completer is the text-completion capability used by the AI extraction
// fallback. A fault yields the empty string.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
	Configured() bool
}

// SiteCache stores the popular e-commerce domain list per country for the
// multi-site adapter. Duplicate writes for the same country are harmless.
type SiteCache interface {
	Get(ctx context.Context, country string) ([]string, error)
	Set(ctx context.Context, country string, sites []string) error
}
