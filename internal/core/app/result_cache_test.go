package app

import (
	"testing"
	"time"

	"routelens/internal/engine/parser"
	"routelens/internal/engine/resolver"
)

func testRef(line int, base string, path ...string) parser.DecoratorReference {
	return parser.DecoratorReference{
		BaseIdentifier: base,
		PropertyPath:   path,
		Location:       parser.Location{Line: line},
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	cache := newResultCache(8, time.Minute)
	key := resultKey("src/posts.controller.ts", testRef(10, "postsContract", "createPost"))

	cache.put(key, resultEntry{info: resolver.RouteInfo{Method: "POST", FullPath: "/posts"}, ok: true})

	entry, ok := cache.get(key)
	if !ok {
		t.Fatal("expected cached entry")
	}
	if !entry.ok || entry.info.FullPath != "/posts" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestResultCache_CachesMisses(t *testing.T) {
	cache := newResultCache(8, time.Minute)
	key := resultKey("src/posts.controller.ts", testRef(10, "postsContract", "missing"))

	cache.put(key, resultEntry{ok: false, reason: "STRUCTURAL_MISMATCH"})

	entry, ok := cache.get(key)
	if !ok {
		t.Fatal("expected cached miss")
	}
	if entry.ok || entry.reason != "STRUCTURAL_MISMATCH" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestResultCache_TTLExpiry(t *testing.T) {
	cache := newResultCache(8, 10*time.Millisecond)
	key := resultKey("src/posts.controller.ts", testRef(10, "postsContract", "createPost"))
	cache.put(key, resultEntry{ok: true})

	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.get(key); ok {
		t.Fatal("expected entry to expire")
	}
	if cache.len() != 0 {
		t.Fatalf("expected expired entry to be evicted, got %d", cache.len())
	}
}

func TestResultCache_InvalidateFile(t *testing.T) {
	cache := newResultCache(8, time.Minute)
	keyA1 := resultKey("src/a.controller.ts", testRef(5, "c", "one"))
	keyA2 := resultKey("src/a.controller.ts", testRef(9, "c", "two"))
	keyB := resultKey("src/b.controller.ts", testRef(5, "c", "one"))
	for _, k := range []string{keyA1, keyA2, keyB} {
		cache.put(k, resultEntry{ok: true})
	}

	cache.invalidateFile("src/a.controller.ts")

	if _, ok := cache.get(keyA1); ok {
		t.Fatal("expected a.controller entries to be invalidated")
	}
	if _, ok := cache.get(keyA2); ok {
		t.Fatal("expected a.controller entries to be invalidated")
	}
	if _, ok := cache.get(keyB); !ok {
		t.Fatal("expected b.controller entry to survive")
	}
}

func TestResultCache_Prune(t *testing.T) {
	cache := newResultCache(16, time.Minute)
	for i := 0; i < 10; i++ {
		cache.put(resultKey("src/a.controller.ts", testRef(i, "c", "op")), resultEntry{ok: true})
	}

	cache.prune(20)

	if cache.len() != 8 {
		t.Fatalf("expected 2 pruned entries, got %d remaining", cache.len())
	}
}
