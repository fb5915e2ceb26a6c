// Package sources contains the backend-specific search adapters and the
// shared AI-assisted extraction fallback they delegate to when structured
// or markup extraction comes up short.
package sources

import "time"

// Options bounds a single adapter search run. The zero value is usable;
// withDefaults fills in the observed production caps.
type Options struct {
	// MaxRawCandidates caps how many candidate nodes an adapter inspects
	// on a search results page.
	MaxRawCandidates int
	// AICandidateCap caps how many items the AI extraction fallback and
	// the link harvester may accept.
	AICandidateCap int
	// HTMLTruncateBytes bounds the HTML passed to the completion model.
	HTMLTruncateBytes int
	// MinResultsBeforeAI is the match count below which an adapter also
	// invokes the AI fallback.
	MinResultsBeforeAI int
	// SiteFanout caps how many domains the multi-site adapter queries.
	SiteFanout int
	// ProbeTimeout bounds each link liveness probe.
	ProbeTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRawCandidates <= 0 {
		o.MaxRawCandidates = 10
	}
	if o.AICandidateCap <= 0 {
		o.AICandidateCap = 5
	}
	if o.HTMLTruncateBytes <= 0 {
		o.HTMLTruncateBytes = 15000
	}
	if o.MinResultsBeforeAI <= 0 {
		o.MinResultsBeforeAI = 3
	}
	if o.SiteFanout <= 0 {
		o.SiteFanout = 5
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 5 * time.Second
	}
	return o
}
