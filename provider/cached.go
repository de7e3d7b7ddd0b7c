package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/jusconsultus/lexsearch/internal/cache"
)

type cachingProvider struct {
	inner CompletionProvider
	cache *cache.Cache
	ttl   time.Duration
}

// WithCache wraps a provider so identical completion requests reuse a
// cached response. The key covers the system prompt, the last user
// message and the requested model; low-temperature calls with the same
// inputs are close enough to deterministic for reuse.
func WithCache(inner CompletionProvider, store *cache.Cache, ttl time.Duration) CompletionProvider {
	if store == nil || ttl <= 0 {
		return inner
	}
	return &cachingProvider{inner: inner, cache: store, ttl: ttl}
}

func (p *cachingProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	key := p.key(messages, opts)
	if val, ok := p.cache.Get(ctx, key); ok {
		return val, nil
	}
	out, err := p.inner.Complete(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	p.cache.Set(ctx, key, out, p.ttl)
	return out, nil
}

func (p *cachingProvider) key(messages []Message, opts Options) string {
	var system, lastUser string
	for _, m := range messages {
		switch m.Role {
		case "system":
			if system == "" {
				system = m.Content
			}
		case "user":
			lastUser = m.Content
		}
	}
	if len(system) > 500 {
		system = system[:500]
	}
	return cache.Key("llm", system, lastUser, opts.Model, fmt.Sprintf("%g|%d", opts.Temperature, opts.MaxTokens))
}
