package cache

import (
	"testing"
	"time"

	"finman/internal/core"
)

func TestListCacheHitAfterComplete(t *testing.T) {
	c := NewListCache(10, time.Minute)

	if _, ok := c.Get("sess"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	token := c.Begin("sess")
	if !c.Complete("sess", token, []core.Transaction{{ID: "1"}}) {
		t.Fatal("Complete rejected a current token")
	}
	txs, ok := c.Get("sess")
	if !ok || len(txs) != 1 || txs[0].ID != "1" {
		t.Fatalf("Get = %v, %v", txs, ok)
	}
}

func TestListCacheInvalidateDiscardsInFlightFetch(t *testing.T) {
	c := NewListCache(10, time.Minute)

	token := c.Begin("sess")
	// A mutation lands while the fetch is still in flight.
	c.Invalidate("sess")
	if c.Complete("sess", token, []core.Transaction{{ID: "stale"}}) {
		t.Fatal("stale fetch result was accepted")
	}
	if _, ok := c.Get("sess"); ok {
		t.Fatal("stale list is being served")
	}

	// The next fetch cycle works again.
	token = c.Begin("sess")
	if !c.Complete("sess", token, []core.Transaction{{ID: "fresh"}}) {
		t.Fatal("fresh fetch rejected")
	}
	txs, _ := c.Get("sess")
	if len(txs) != 1 || txs[0].ID != "fresh" {
		t.Fatalf("cached = %v", txs)
	}
}

func TestListCacheInvalidateDropsEntry(t *testing.T) {
	c := NewListCache(10, time.Minute)
	token := c.Begin("sess")
	c.Complete("sess", token, []core.Transaction{{ID: "1"}})

	c.Invalidate("sess")
	if _, ok := c.Get("sess"); ok {
		t.Fatal("entry survived invalidation")
	}
}

func TestListCacheGetReturnsCopy(t *testing.T) {
	c := NewListCache(10, time.Minute)
	token := c.Begin("sess")
	c.Complete("sess", token, []core.Transaction{{ID: "1", Name: "A"}})

	txs, _ := c.Get("sess")
	txs[0].Name = "mutated"
	again, _ := c.Get("sess")
	if again[0].Name != "A" {
		t.Error("cached list was mutated through a Get result")
	}
}

func TestListCacheTTLExpiry(t *testing.T) {
	c := NewListCache(10, 10*time.Millisecond)
	token := c.Begin("sess")
	c.Complete("sess", token, []core.Transaction{{ID: "1"}})

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("sess"); ok {
		t.Fatal("expired entry served")
	}
	c.CleanExpired()
	if c.Size() != 0 {
		t.Errorf("size = %d after cleanup", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewListCache(2, time.Minute)
	for _, key := range []string{"a", "b", "c"} {
		token := c.Begin(key)
		c.Complete(key, token, []core.Transaction{{ID: key}})
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest session survived eviction")
	}
}
