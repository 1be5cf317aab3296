package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCacheBasicOperations(t *testing.T) {
	cache := NewMemoryCache(1024)

	value := []byte(`{"post_id":1}`)
	if err := cache.Put("speech:1", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := cache.Get("speech:1")
	if !ok || string(got) != string(value) {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if cache.Size() != int64(len(value)) {
		t.Errorf("Size = %d, want %d", cache.Size(), len(value))
	}

	cache.Delete("speech:1")
	if _, ok := cache.Get("speech:1"); ok {
		t.Error("key still present after Delete")
	}
	if cache.Size() != 0 {
		t.Errorf("Size not zero after Delete: %d", cache.Size())
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	cache := NewMemoryCache(100)

	for i := 0; i < 5; i++ {
		if err := cache.Put(fmt.Sprintf("key-%d", i), make([]byte, 20)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// key-0 and key-1 become recently used
	cache.Get("key-0")
	cache.Get("key-1")

	if err := cache.Put("key-new", make([]byte, 30)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for _, k := range []string{"key-0", "key-1", "key-new", "key-4"} {
		if _, ok := cache.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
	for _, k := range []string{"key-2", "key-3"} {
		if _, ok := cache.Get(k); ok {
			t.Errorf("expected %s to be evicted", k)
		}
	}
	if cache.Size() > 100 {
		t.Errorf("size %d exceeds capacity", cache.Size())
	}
	if ev := cache.Stats().Evictions; ev != 2 {
		t.Errorf("expected 2 evictions, got %d", ev)
	}
}

func TestMemoryCacheUpdate(t *testing.T) {
	cache := NewMemoryCache(100)

	_ = cache.Put("k", make([]byte, 10))
	_ = cache.Put("k", make([]byte, 40))

	if cache.Len() != 1 || cache.Size() != 40 {
		t.Errorf("Len=%d Size=%d, want 1 and 40", cache.Len(), cache.Size())
	}
}

func TestMemoryCacheTooLarge(t *testing.T) {
	cache := NewMemoryCache(10)

	_ = cache.Put("k", []byte("small"))
	if err := cache.Put("k", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}
	if _, ok := cache.Get("k"); ok {
		t.Error("stale value must not survive an oversized update")
	}
}

func TestMemoryCacheDisabled(t *testing.T) {
	cache := NewMemoryCache(0)
	if err := cache.Put("k", []byte("v")); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}
	if _, ok := cache.Get("k"); ok {
		t.Error("disabled cache must miss")
	}
}

func TestMemoryCachePurge(t *testing.T) {
	cache := NewMemoryCache(100)
	_ = cache.Put("a", []byte("1"))
	_ = cache.Put("b", []byte("2"))

	cache.Purge()
	if cache.Len() != 0 || cache.Size() != 0 {
		t.Errorf("expected empty cache, got %d items", cache.Len())
	}
	if cache.Stats().LastPurge.IsZero() {
		t.Error("expected purge time")
	}
}

func TestMemoryCachePrune(t *testing.T) {
	cache := NewMemoryCache(100)
	_ = cache.Put("old", []byte("1"))
	time.Sleep(20 * time.Millisecond)
	_ = cache.Put("new", []byte("2"))

	if n := cache.Prune(10 * time.Millisecond); n != 1 {
		t.Errorf("expected 1 pruned entry, got %d", n)
	}
	if _, ok := cache.Get("new"); !ok {
		t.Error("fresh entry must survive pruning")
	}
}

func TestMemoryCacheStats(t *testing.T) {
	cache := NewMemoryCache(100)
	_ = cache.Put("k", []byte("v"))
	cache.Get("k")
	cache.Get("missing")

	s := cache.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.HitRate != 0.5 || s.ItemCount != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestMemoryCacheConcurrency(t *testing.T) {
	cache := NewMemoryCache(1000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k-%d-%d", n, j%10)
				_ = cache.Put(key, make([]byte, 10))
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() > 1000 {
		t.Errorf("size %d exceeds capacity", cache.Size())
	}
}
