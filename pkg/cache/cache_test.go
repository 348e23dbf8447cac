package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "layout:x"); hit {
		t.Error("empty cache should miss")
	}

	want := []byte("positions")
	if err := c.Set(ctx, "layout:x", want, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "layout:x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || !bytes.Equal(got, want) {
		t.Errorf("Get = %q hit=%v, want %q hit=true", got, hit, want)
	}

	if err := c.Delete(ctx, "layout:x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:x"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "layout:x"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "frame:x", []byte("pixels"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "frame:x"); hit {
		t.Error("expired entry should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("agua"))
	h2 := Hash([]byte("agua"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("fuego")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.ScriptKey("es-101"); got != "script:es-101" {
		t.Errorf("ScriptKey unexpected: %s", got)
	}

	lk1 := k.LayoutKey("h1", LayoutKeyOpts{Width: 800, Height: 600, BoundaryTier: 2})
	lk2 := k.LayoutKey("h1", LayoutKeyOpts{Width: 800, Height: 600, BoundaryTier: 3})
	if lk1 == lk2 {
		t.Error("different boundary tiers should produce different layout keys")
	}
	if lk1 != k.LayoutKey("h1", LayoutKeyOpts{Width: 800, Height: 600, BoundaryTier: 2}) {
		t.Error("LayoutKey should be deterministic")
	}

	fk1 := k.FrameKey("h1", FrameKeyOpts{Width: 800, Height: 600, Scale: 1})
	fk2 := k.FrameKey("h1", FrameKeyOpts{Width: 800, Height: 600, Scale: 1.1})
	if fk1 == fk2 {
		t.Error("different transforms should produce different frame keys")
	}
	fk3 := k.FrameKey("h1", FrameKeyOpts{Width: 800, Height: 600, Scale: 1, RevealDigest: "abc"})
	if fk1 == fk3 {
		t.Error("different reveal digests should produce different frame keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "learner:123:")

	if got := scoped.ScriptKey("es-101"); got != "learner:123:script:es-101" {
		t.Errorf("ScopedKeyer ScriptKey unexpected: %s", got)
	}

	lk := scoped.LayoutKey("h1", LayoutKeyOpts{})
	if len(lk) < 12 || lk[:12] != "learner:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.ScriptKey("c"); got != "prefix:script:c" {
		t.Errorf("unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("should call once: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrCacheMiss
	})
	if err != ErrCacheMiss {
		t.Errorf("should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("should not retry non-retryable error: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
