// Package imagecache memoizes image downloads behind a bounded LRU.
// Concurrent requests for the same URL coalesce into one fetch; a
// failed fetch caches nothing, so the next request retries.
package imagecache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jemaristudio/eshop-go/core"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 256

// Fetcher downloads image bytes. *client.Client satisfies it.
type Fetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Cache is safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	lru     *lru.Cache[string, []byte]
	group   singleflight.Group
	logger  core.Logger
}

// New creates a cache over the given fetcher. Capacity values below one
// fall back to DefaultCapacity.
func New(fetcher Fetcher, capacity int, logger core.Logger) (*Cache, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	store, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{fetcher: fetcher, lru: store, logger: logger}, nil
}

// Get returns the image bytes for a URL, fetching on a miss. The
// returned slice is shared; callers must not mutate it.
func (c *Cache) Get(ctx context.Context, imageURL string) ([]byte, error) {
	if data, ok := c.lru.Get(imageURL); ok {
		return data, nil
	}

	// The flight is shared: it must not fail every coalesced waiter just
	// because the caller that happened to start it canceled. The transport
	// timeout still bounds the detached fetch.
	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := c.group.Do(imageURL, func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have filled it.
		if data, ok := c.lru.Get(imageURL); ok {
			return data, nil
		}
		data, err := c.fetcher.FetchImage(fetchCtx, imageURL)
		if err != nil {
			return nil, err
		}
		c.lru.Add(imageURL, data)
		c.logger.Debug("Image cached", map[string]interface{}{
			"url":   imageURL,
			"bytes": len(data),
		})
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Has reports whether a URL is cached, without touching recency.
func (c *Cache) Has(imageURL string) bool {
	return c.lru.Contains(imageURL)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Remove evicts one URL.
func (c *Cache) Remove(imageURL string) {
	c.lru.Remove(imageURL)
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}
