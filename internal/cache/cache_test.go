package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyNormalization(t *testing.T) {
	a := Key("query", "Violence  Against Women", "laws")
	b := Key("query", "violence against women", "LAWS")
	if a != b {
		t.Fatalf("normalized keys differ: %s vs %s", a, b)
	}
	if Key("query", "violence") == Key("query", "women") {
		t.Fatal("different inputs collided")
	}
}

func TestKeyPartBoundaries(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not hash identically.
	if Key("ns", "ab", "c") == Key("ns", "a", "bc") {
		t.Fatal("part boundaries not preserved")
	}
}

func TestKeyNamespacePrefix(t *testing.T) {
	key := Key("answer", "some query")
	if key[:7] != "answer:" {
		t.Fatalf("key = %s, want answer: prefix", key)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
	if err := store.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "v" {
		t.Fatalf("val = %q", val)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err after delete = %v, want ErrMiss", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err after expiry = %v, want ErrMiss", err)
	}
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("backend down")
}
func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("backend down")
}
func (failingStore) Delete(context.Context, string) error {
	return errors.New("backend down")
}

func TestCacheSwallowsBackendErrors(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{})

	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("hit reported from a failing backend")
	}
	// Set and Delete must not panic or surface the error.
	c.Set(ctx, "k", "v", time.Minute)
	c.Delete(ctx, "k")
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStore())

	key := Key("query", "due process")
	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Set(ctx, key, "payload", time.Hour)
	val, ok := c.Get(ctx, key)
	if !ok || val != "payload" {
		t.Fatalf("got (%q, %t)", val, ok)
	}
}
