package domain

import "encoding/json"

// ProductRecord is the canonical unit flowing through the search pipeline.
// All string fields are present in the JSON output; an unknown value is the
// empty string, never null.
type ProductRecord struct {
	Link        string          `json:"link"`
	Price       string          `json:"price"`
	Currency    string          `json:"currency"`
	ProductName string          `json:"productName"`
	Source      string          `json:"source"`
	ImageURL    string          `json:"imageUrl"`
	Info        *AdditionalInfo `json:"additionalInfo,omitempty"`
}

// EnsureInfo returns the record's AdditionalInfo, allocating it if absent.
func (r *ProductRecord) EnsureInfo() *AdditionalInfo {
	if r.Info == nil {
		r.Info = &AdditionalInfo{}
	}
	return r.Info
}

// AdditionalInfo carries provenance for a record: the known fields adapters
// actually produce, plus an overflow bag for anything else an extraction
// stage hands back.
type AdditionalInfo struct {
	Rating         string
	Reviews        string
	Snippet        string
	Brand          string
	PriceEstimated bool
	Extra          map[string]string
}

// MarshalJSON flattens the known fields and the overflow bag into a single
// JSON object, omitting empty values.
func (a AdditionalInfo) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	if a.Rating != "" {
		m["rating"] = a.Rating
	}
	if a.Reviews != "" {
		m["reviews"] = a.Reviews
	}
	if a.Snippet != "" {
		m["snippet"] = a.Snippet
	}
	if a.Brand != "" {
		m["brand"] = a.Brand
	}
	if a.PriceEstimated {
		m["priceEstimated"] = true
	}
	for k, v := range a.Extra {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits a JSON object back into known fields and overflow.
func (a *AdditionalInfo) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, raw := range m {
		switch k {
		case "rating":
			_ = json.Unmarshal(raw, &a.Rating)
		case "reviews":
			_ = json.Unmarshal(raw, &a.Reviews)
		case "snippet":
			_ = json.Unmarshal(raw, &a.Snippet)
		case "brand":
			_ = json.Unmarshal(raw, &a.Brand)
		case "priceEstimated":
			_ = json.Unmarshal(raw, &a.PriceEstimated)
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				// Non-string overflow values are kept as raw JSON text.
				s = string(raw)
			}
			if a.Extra == nil {
				a.Extra = make(map[string]string)
			}
			a.Extra[k] = s
		}
	}
	return nil
}

// SearchRequest is the search input accepted at the request boundary.
type SearchRequest struct {
	Country string `json:"country" binding:"required"`
	Query   string `json:"query" binding:"required"`
}
