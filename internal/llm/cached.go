package llm

import (
	"context"
	"time"

	"github.com/narravox/narravox/internal/cache"
)

// CachedGenerator wraps a Generator with a response cache keyed by the
// prompt pair. Repair retries change the prompt, so repaired calls never
// collide with the original.
type CachedGenerator struct {
	inner Generator
	store cache.Cache
	ttl   time.Duration
}

// NewCachedGenerator wraps the generator with the given cache backend
func NewCachedGenerator(inner Generator, store cache.Cache, ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{
		inner: inner,
		store: store,
		ttl:   ttl,
	}
}

// Name returns the wrapped provider's name
func (g *CachedGenerator) Name() string {
	return g.inner.Name()
}

// IsAvailable defers to the wrapped provider
func (g *CachedGenerator) IsAvailable(ctx context.Context) bool {
	return g.inner.IsAvailable(ctx)
}

// Generate returns a cached response when one exists, otherwise calls
// through and stores the result. Errors are never cached.
func (g *CachedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	key := cache.Key(req.SystemPrompt, req.Prompt)

	if data, found := g.store.Get(key); found {
		return string(data), nil
	}

	text, err := g.inner.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	_ = g.store.Set(key, []byte(text), g.ttl)
	return text, nil
}
