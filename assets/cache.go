package assets

import (
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/setanarut/iconcomposer"
)

// Cache memoizes decoded images by reference for the length of a batch.
// Concurrent misses on the same reference decode once. Cached images are
// shared and must not be modified; the engine copies before transforming.
type Cache struct {
	src    iconcomposer.AssetSource
	group  singleflight.Group
	images sync.Map // ref -> image.Image

	hits, misses atomic.Int64
}

func NewCache(src iconcomposer.AssetSource) *Cache {
	return &Cache{src: src}
}

func (c *Cache) Open(ref string) (image.Image, error) {
	if img, ok := c.images.Load(ref); ok {
		c.hits.Add(1)
		return img.(image.Image), nil
	}
	v, err, _ := c.group.Do(ref, func() (any, error) {
		if img, ok := c.images.Load(ref); ok {
			return img, nil
		}
		c.misses.Add(1)
		img, err := c.src.Open(ref)
		if err != nil {
			return nil, err
		}
		c.images.Store(ref, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Stats returns the number of cache hits and decodes.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
