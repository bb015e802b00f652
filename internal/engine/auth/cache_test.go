package auth

import (
	"testing"
	"time"
)

func TestMemoryScopeCache(t *testing.T) {
	cache := NewMemoryScopeCache(0)
	defer cache.Close()

	scope := OrgScope("org_1", PlanPro)

	if _, ok := cache.Get("fp1"); ok {
		t.Error("Expected miss on empty cache")
	}

	cache.Set("fp1", scope, time.Minute)
	got, ok := cache.Get("fp1")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if got != scope {
		t.Errorf("Cached scope differs: got %+v want %+v", got, scope)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", cache.Len())
	}

	// Overwrite with the same value keeps one entry.
	cache.Set("fp1", scope, time.Minute)
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry after idempotent fill, got %d", cache.Len())
	}

	cache.Invalidate("fp1")
	if _, ok := cache.Get("fp1"); ok {
		t.Error("Expected miss after Invalidate")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected 0 entries, got %d", cache.Len())
	}
}

func TestMemoryScopeCacheExpiry(t *testing.T) {
	cache := NewMemoryScopeCache(0)
	defer cache.Close()

	cache.Set("fp1", OrgScope("org_1", PlanFree), 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := cache.Get("fp1"); ok {
		t.Error("Expected entry to expire")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry to be dropped, got %d", cache.Len())
	}
}

func TestMemoryScopeCacheZeroTTL(t *testing.T) {
	cache := NewMemoryScopeCache(0)
	defer cache.Close()

	cache.Set("fp1", OrgScope("org_1", PlanFree), 0)
	if _, ok := cache.Get("fp1"); ok {
		t.Error("Zero TTL must not cache")
	}
}
