package server

import (
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog"

	"velohub/internal/config"
)

// Cache stores serialized report responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type reportCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewCache creates the report cache, or a no-op when disabled
func NewCache(cfg config.CacheConfig, log zerolog.Logger) Cache {
	if !cfg.Enabled || cfg.SizeBytes <= 0 {
		log.Info().Msg("report cache disabled")
		return &noopCache{}
	}

	ttl := int(cfg.TTL.Seconds())
	if ttl < 1 {
		ttl = 1
	}

	log.Info().Int("size_bytes", cfg.SizeBytes).Int("ttl_seconds", ttl).Msg("report cache initialized")

	return &reportCache{
		cache: freecache.NewCache(cfg.SizeBytes),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// Safe when the result is only read, which holds for freecache — it
// copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *reportCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *reportCache) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
