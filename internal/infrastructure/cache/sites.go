package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/pricescout/backend/internal/domain"
)

// SiteListCache is a thread-safe in-memory store of popular e-commerce
// domains per country. A country's list is written at most once per process
// in practice; concurrent duplicate writes of the same list are harmless,
// so the discipline is first-write-wins.
type SiteListCache struct {
	data  map[string][]string
	mutex sync.RWMutex
}

// NewSiteListCache creates an empty cache
func NewSiteListCache() *SiteListCache {
	return &SiteListCache{
		data: make(map[string][]string),
	}
}

// Get returns the cached domain list for a country code.
func (c *SiteListCache) Get(ctx context.Context, country string) ([]string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	sites, exists := c.data[strings.ToUpper(country)]
	if !exists {
		return nil, domain.ErrCacheMiss
	}
	return sites, nil
}

// Set stores the domain list for a country code. If a list is already
// present it is kept, so racing writers converge on the first result.
func (c *SiteListCache) Set(ctx context.Context, country string, sites []string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := strings.ToUpper(country)
	if _, exists := c.data[key]; exists {
		return nil
	}

	stored := make([]string, len(sites))
	copy(stored, sites)
	c.data[key] = stored
	return nil
}

// Size returns the number of cached countries (for debugging/monitoring)
func (c *SiteListCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
