package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jusconsultus/lexsearch/internal/cache"
)

type countingProvider struct {
	calls    int
	response string
	err      error
}

func (c *countingProvider) Complete(_ context.Context, _ []Message, _ Options) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func TestWithCacheReusesResponse(t *testing.T) {
	inner := &countingProvider{response: "analysis"}
	p := WithCache(inner, cache.New(cache.NewMemoryStore()), time.Hour)

	ctx := context.Background()
	messages := []Message{
		{Role: "system", Content: "grounding prompt"},
		{Role: "user", Content: "what is due process"},
	}
	opts := Options{Temperature: 0.3, MaxTokens: 2048}

	first, err := p.Complete(ctx, messages, opts)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := p.Complete(ctx, messages, opts)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if first != "analysis" || second != "analysis" {
		t.Fatalf("got %q, %q", first, second)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
}

func TestWithCacheKeySeparatesRequests(t *testing.T) {
	inner := &countingProvider{response: "analysis"}
	p := WithCache(inner, cache.New(cache.NewMemoryStore()), time.Hour)

	ctx := context.Background()
	base := []Message{{Role: "user", Content: "question one"}}
	other := []Message{{Role: "user", Content: "question two"}}

	if _, err := p.Complete(ctx, base, Options{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := p.Complete(ctx, other, Options{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := p.Complete(ctx, base, Options{Model: "deepseek-reasoner"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("inner calls = %d, want 3 distinct requests", inner.calls)
	}
}

func TestWithCacheDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("rate limited")}
	p := WithCache(inner, cache.New(cache.NewMemoryStore()), time.Hour)

	ctx := context.Background()
	messages := []Message{{Role: "user", Content: "q"}}
	if _, err := p.Complete(ctx, messages, Options{}); err == nil {
		t.Fatal("expected error")
	}

	inner.err = nil
	inner.response = "recovered"
	out, err := p.Complete(ctx, messages, Options{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("out = %q", out)
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls = %d", inner.calls)
	}
}

func TestWithCacheNilStorePassthrough(t *testing.T) {
	inner := &countingProvider{response: "x"}
	if p := WithCache(inner, nil, time.Hour); p != CompletionProvider(inner) {
		t.Fatal("nil store should return the inner provider unchanged")
	}
	if p := WithCache(inner, cache.New(cache.NewMemoryStore()), 0); p != CompletionProvider(inner) {
		t.Fatal("zero ttl should return the inner provider unchanged")
	}
}
