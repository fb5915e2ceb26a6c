package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Config holds settings for the Gemini client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client calls the Gemini generateContent endpoint. It implements the
// text-completion contract the extraction fallback relies on: Complete
// returns the model's text or "", never an error.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewClient creates a new Gemini client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.APIKey == "" {
		log.Printf("[GEMINI] API key not configured, AI-assisted extraction disabled")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
	}
}

// Configured reports whether the client has credentials to make calls.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// generateRequest mirrors the generateContent request body
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse holds the slice of the response we care about:
// candidates[0].content.parts[0].text
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the completion text, or "" on any
// fault. Callers treat an empty completion as "no data from this stage".
func (c *Client) Complete(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return ""
	}

	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		log.Printf("[GEMINI] failed to encode request: %v", err)
		return ""
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		log.Printf("[GEMINI] failed to create request: %v", err)
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[GEMINI] request failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[GEMINI] API returned status %d", resp.StatusCode)
		return ""
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[GEMINI] failed to decode response: %v", err)
		return ""
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		log.Printf("[GEMINI] response contained no candidates")
		return ""
	}
	return result.Candidates[0].Content.Parts[0].Text
}

// SuggestSites asks the model for the most popular e-commerce domains in a
// country, one domain per line. Used by the multi-site adapter when its
// static table has no entry for the country.
func (c *Client) SuggestSites(ctx context.Context, country string, limit int) []string {
	prompt := fmt.Sprintf(
		"What are the %d most popular e-commerce websites in %s? "+
			"Please list only the domain names (e.g., amazon.com), one per line "+
			"without any explanation or numbering.", limit, country)

	answer := c.Complete(ctx, prompt)
	if answer == "" {
		return nil
	}

	var sites []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sites = append(sites, line)
		}
	}
	return sites
}
