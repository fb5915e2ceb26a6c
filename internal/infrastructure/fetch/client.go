package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ecommerceDomains get routed through the remote scraping provider first;
// direct requests against them are usually blocked or bot-challenged.
var ecommerceDomains = []string{
	"amazon.", "flipkart.com", "myntra.com", "snapdeal.com", "ajio.com", "jiomart.com",
	"walmart.com", "ebay.", "bestbuy.com",
}

// Config holds settings for the fetch client
type Config struct {
	ScraperAPIKey  string
	ScraperAPIBase string
	Timeout        time.Duration
}

// Client retrieves remote HTML and JSON with a fixed fallback order: remote
// scraping provider for e-commerce domains, then direct HTTP. Faults never
// escape; a failed fetch yields the empty value.
type Client struct {
	httpClient     *http.Client
	scraperAPIKey  string
	scraperAPIBase string
	rateLimiter    *rate.Limiter
}

// NewClient creates a new fetch client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ScraperAPIBase == "" {
		cfg.ScraperAPIBase = "https://api.scraperapi.com"
	}

	// Keep outbound pressure bounded: 2 req/sec with a small burst covers a
	// full adapter fan-out without tripping provider limits.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		scraperAPIKey:  cfg.ScraperAPIKey,
		scraperAPIBase: cfg.ScraperAPIBase,
		rateLimiter:    limiter,
	}
}

// FetchHTML fetches the page at url, trying the scraping provider first for
// e-commerce domains, then plain HTTP. Returns "" on any failure.
func (c *Client) FetchHTML(ctx context.Context, targetURL string) string {
	if isEcommerceDomain(targetURL) && c.scraperAPIKey != "" {
		if html := c.fetchViaProvider(ctx, targetURL); html != "" {
			return html
		}
	}

	body, status, err := c.get(ctx, targetURL)
	if err != nil {
		log.Printf("[FETCH] direct fetch failed for %s: %v", targetURL, err)
		return ""
	}
	if status != http.StatusOK {
		log.Printf("[FETCH] direct fetch for %s returned status %d", targetURL, status)
		return ""
	}
	return string(body)
}

// FetchJSON fetches and decodes a JSON object. Returns nil on any failure.
func (c *Client) FetchJSON(ctx context.Context, targetURL string) map[string]any {
	body, status, err := c.get(ctx, targetURL)
	if err != nil {
		log.Printf("[FETCH] JSON fetch failed for %s: %v", targetURL, err)
		return nil
	}
	if status != http.StatusOK {
		log.Printf("[FETCH] JSON fetch for %s returned status %d", targetURL, status)
		return nil
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("[FETCH] JSON decode failed for %s: %v", targetURL, err)
		return nil
	}
	return result
}

// fetchViaProvider routes the request through the remote scraping provider.
// Responses under 1000 bytes are treated as challenge pages, not content.
func (c *Client) fetchViaProvider(ctx context.Context, targetURL string) string {
	providerURL := fmt.Sprintf("%s/?api_key=%s&url=%s",
		c.scraperAPIBase, c.scraperAPIKey, url.QueryEscape(targetURL))

	body, status, err := c.get(ctx, providerURL)
	if err != nil {
		log.Printf("[FETCH] provider fetch failed for %s: %v", targetURL, err)
		return ""
	}
	if status != http.StatusOK {
		log.Printf("[FETCH] provider fetch for %s returned status %d", targetURL, status)
		return ""
	}
	if len(body) <= 1000 {
		log.Printf("[FETCH] provider fetch for %s returned suspiciously small body (%d bytes)", targetURL, len(body))
		return ""
	}
	return string(body)
}

func (c *Client) get(ctx context.Context, targetURL string) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func isEcommerceDomain(targetURL string) bool {
	for _, domain := range ecommerceDomains {
		if strings.Contains(targetURL, domain) {
			return true
		}
	}
	return false
}
