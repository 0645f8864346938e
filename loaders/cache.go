package loaders

import (
	"time"

	"github.com/Lundis/go-voicepool/codec"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/godoc/vfs"
)

// Cache decodes files through a Registry and keeps the result for ttl after
// the last access. Concurrent loads of the same path share one decode.
// A zero ttl disables retention; loads are still deduplicated.
type Cache struct {
	registry *Registry
	fs       vfs.Opener
	ttl      time.Duration
	items    *cache.Cache
	group    singleflight.Group
}

func NewCache(registry *Registry, fs vfs.Opener, ttl time.Duration) *Cache {
	c := &Cache{
		registry: registry,
		fs:       fs,
		ttl:      ttl,
	}
	if ttl > 0 {
		c.items = cache.New(ttl, 2*ttl)
	}
	return c
}

// Load returns the decoded samples for path.
func (c *Cache) Load(tag codec.Tag, path string) (*Samples, error) {
	if c.items != nil {
		if v, ok := c.items.Get(path); ok {
			samples := v.(*Samples)
			// refresh the expiration of hot entries
			c.items.Set(path, samples, cache.DefaultExpiration)
			return samples, nil
		}
	}

	v, err, _ := c.group.Do(path, func() (interface{}, error) {
		samples, err := c.registry.Decode(c.fs, tag, path)
		if err != nil {
			return nil, err
		}
		if c.items != nil {
			c.items.Set(path, samples, cache.DefaultExpiration)
		}
		return samples, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Samples), nil
}

// Len reports the number of retained entries, including expired ones that
// have not been cleaned up yet.
func (c *Cache) Len() int {
	if c.items == nil {
		return 0
	}
	return c.items.ItemCount()
}

// Flush drops every retained entry.
func (c *Cache) Flush() {
	if c.items != nil {
		c.items.Flush()
	}
}
