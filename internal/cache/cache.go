// Package cache provides namespaced query/answer caching over a pluggable
// backend. Lookups are best-effort: backend failures degrade to misses so
// retrieval never blocks on the cache.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"
)

// ErrMiss is returned by stores when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the backend contract. Implementations must treat Get on an
// expired entry as ErrMiss.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache namespaces keys and swallows backend errors.
type Cache struct {
	store  Store
	logger *log.Logger
}

func New(store Store) *Cache {
	return &Cache{
		store:  store,
		logger: log.New(log.Writer(), "[CACHE] ", log.LstdFlags),
	}
}

// Key builds a stable cache key from a namespace and the raw inputs.
// Inputs are normalized (lowercased, whitespace collapsed) before hashing
// so trivially different spellings of the same query share an entry.
func Key(namespace string, parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(normalize(p)))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns the cached value and true on a hit. Backend errors other
// than ErrMiss are logged and reported as misses.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Printf("get %s: %v", key, err)
		}
		return "", false
	}
	return val, true
}

// Set stores a value with the given TTL. Failures are logged, not returned.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logger.Printf("set %s: %v", key, err)
	}
}

// Delete removes a key. Failures are logged, not returned.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Printf("delete %s: %v", key, err)
	}
}
