package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestCache(t *testing.T, config Config) *Cache {
	t.Helper()
	if config.Dir == "" {
		config.Dir = t.TempDir()
	}
	c, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestCache_GetPut(t *testing.T) {
	cache := newTestCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	key := Key("0.1.0", "function", `<div id="app"></div>`)
	data := []byte(`return function render(_ctx) {}`)

	if err := cache.Put(key, data, "src/App.vue", []string{"createElementVNode"}); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}

	retrieved, found := cache.Get(key)
	if !found {
		t.Fatal("Data not found in cache")
	}
	if !bytes.Equal(retrieved, data) {
		t.Errorf("Retrieved data doesn't match: got %s, want %s", retrieved, data)
	}

	entry, ok := cache.Lookup(key)
	if !ok {
		t.Fatal("Lookup() found nothing")
	}
	if entry.Source != "src/App.vue" {
		t.Errorf("Source = %q", entry.Source)
	}
	if diff := cmp.Diff([]string{"createElementVNode"}, entry.Helpers); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}

	stats := cache.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}

	if _, found = cache.Get("non-existent"); found {
		t.Error("Found non-existent key")
	}
	if stats = cache.GetStats(); stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(t, Config{})

	key := "delete-test"
	if err := cache.Put(key, []byte("data to delete"), "", nil); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}
	if _, found := cache.Get(key); !found {
		t.Fatal("Data not found after put")
	}

	if err := cache.Delete(key); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found := cache.Get(key); found {
		t.Error("Data found after delete")
	}

	// Delete again should not error
	if err := cache.Delete(key); err != nil {
		t.Errorf("Delete of non-existent key failed: %v", err)
	}
}

func TestCache_Eviction(t *testing.T) {
	tests := []struct {
		name     string
		strategy EvictionStrategy
		touch    func(c *Cache)
		evicted  string
	}{
		{
			name:     "LRU",
			strategy: LRU,
			touch:    func(c *Cache) { c.Get("key1") },
			evicted:  "key2",
		},
		{
			name:     "LFU",
			strategy: LFU,
			touch: func(c *Cache) {
				c.Get("key1")
				c.Get("key1")
				c.Get("key2")
			},
			evicted: "key2",
		},
		{
			name:     "FIFO",
			strategy: FIFO,
			touch: func(c *Cache) {
				c.Get("key1")
				c.Get("key1")
			},
			evicted: "key1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newTestCache(t, Config{MaxSize: 100, Strategy: tt.strategy})

			cache.Put("key1", bytes.Repeat([]byte("a"), 40), "", nil)
			time.Sleep(10 * time.Millisecond)
			cache.Put("key2", bytes.Repeat([]byte("b"), 40), "", nil)
			time.Sleep(10 * time.Millisecond)

			tt.touch(cache)
			time.Sleep(10 * time.Millisecond)

			cache.Put("key3", bytes.Repeat([]byte("c"), 40), "", nil)

			for _, key := range []string{"key1", "key2", "key3"} {
				_, found := cache.Lookup(key)
				if key == tt.evicted && found {
					t.Errorf("%s was not evicted but should have been", key)
				}
				if key != tt.evicted && !found {
					t.Errorf("%s was evicted but shouldn't have been", key)
				}
			}

			if stats := cache.GetStats(); stats.Evictions != 1 {
				t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
			}
		})
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := newTestCache(t, Config{MaxAge: 50 * time.Millisecond})

	key := "expiring-key"
	cache.Put(key, []byte("expiring data"), "", nil)

	if _, found := cache.Get(key); !found {
		t.Fatal("Data not found immediately after put")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := cache.Get(key); found {
		t.Error("Expired data was still found")
	}
}

func TestCache_InvalidateSource(t *testing.T) {
	cache := newTestCache(t, Config{})

	app := filepath.Join("src", "App.vue")
	nested := filepath.Join("src", "components", "Button.vue")
	other := filepath.Join("srcx", "Other.vue")

	cache.Put("function-app", []byte("data1"), app, nil)
	cache.Put("module-app", []byte("data2"), app, nil)
	cache.Put("button", []byte("data3"), nested, nil)
	cache.Put("other", []byte("data4"), other, nil)

	if count := cache.InvalidateSource(app); count != 2 {
		t.Errorf("Expected 2 entries invalidated, got %d", count)
	}
	if _, found := cache.Lookup("button"); !found {
		t.Error("button should still exist")
	}

	if count := cache.InvalidateSource("src"); count != 1 {
		t.Errorf("Expected 1 entry invalidated under src, got %d", count)
	}
	if _, found := cache.Lookup("other"); !found {
		t.Error("srcx/Other.vue must not match the src directory")
	}
}

func TestCache_Clear(t *testing.T) {
	tmpDir := t.TempDir()
	cache := newTestCache(t, Config{Dir: tmpDir})

	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("key%d", i), []byte(fmt.Sprintf("data%d", i)), "", nil)
	}

	if stats := cache.GetStats(); stats.EntryCount != 10 {
		t.Errorf("Expected 10 entries, got %d", stats.EntryCount)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	if stats := cache.GetStats(); stats.EntryCount != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", stats.EntryCount)
	}

	artifactsDir := filepath.Join(tmpDir, "artifacts")
	if _, err := os.Stat(artifactsDir); !os.IsNotExist(err) {
		entries, _ := os.ReadDir(artifactsDir)
		if len(entries) > 0 {
			t.Errorf("Artifacts directory still has %d files", len(entries))
		}
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := newTestCache(t, Config{MaxSize: 10 << 20})

	var wg sync.WaitGroup
	numGoroutines := 10
	numOperations := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				data := []byte(fmt.Sprintf("data-%d-%d", id, j))

				if err := cache.Put(key, data, "", nil); err != nil {
					t.Errorf("Failed to put: %v", err)
				}

				retrieved, found := cache.Get(key)
				if !found {
					t.Errorf("Key not found: %s", key)
				}
				if !bytes.Equal(retrieved, data) {
					t.Errorf("Data mismatch for key %s", key)
				}

				if j%10 == 0 {
					cache.Delete(key)
				}
			}
		}(i)
	}

	wg.Wait()

	stats := cache.GetStats()
	if stats.EntryCount != numGoroutines*(numOperations-numOperations/10) {
		t.Errorf("EntryCount = %d", stats.EntryCount)
	}
	if stats.TotalSize < 0 {
		t.Errorf("Invalid total size: %d", stats.TotalSize)
	}
}

func TestKey(t *testing.T) {
	key1 := Key("0.1.0", "function", "<p></p>")
	key2 := Key("0.1.0", "function", "<p></p>")
	key3 := Key("0.1.0", "module", "<p></p>")

	if key1 != key2 {
		t.Error("Same inputs produced different keys")
	}
	if key1 == key3 {
		t.Error("Different inputs produced same key")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Input boundaries are not part of the key")
	}
}

func TestCache_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	cache1 := newTestCache(t, Config{Dir: tmpDir, Version: "0.1.0"})
	cache1.Put("persistent-key", []byte("persistent-data"), "App.vue", nil)

	// Simulate cache restart
	cache2 := newTestCache(t, Config{Dir: tmpDir, Version: "0.1.0"})

	data, found := cache2.Get("persistent-key")
	if !found {
		t.Fatal("Persistent data not found after restart")
	}
	if string(data) != "persistent-data" {
		t.Errorf("Persistent data corrupted: got %s", data)
	}
	if stats := cache2.GetStats(); stats.TotalSize != int64(len("persistent-data")) {
		t.Errorf("TotalSize after reload = %d", stats.TotalSize)
	}
}

func TestCache_VersionChangeInvalidates(t *testing.T) {
	tmpDir := t.TempDir()

	old := newTestCache(t, Config{Dir: tmpDir, Version: "0.1.0"})
	old.Put("k", []byte("stale output"), "App.vue", nil)

	upgraded := newTestCache(t, Config{Dir: tmpDir, Version: "0.2.0"})
	if _, found := upgraded.Get("k"); found {
		t.Error("output of an older compiler was served")
	}
	if stats := upgraded.GetStats(); stats.EntryCount != 0 {
		t.Errorf("EntryCount = %d, want 0", stats.EntryCount)
	}
}

func TestCache_TamperedArtifact(t *testing.T) {
	cache := newTestCache(t, Config{})
	cache.Put("k", []byte("original"), "", nil)

	entry, _ := cache.Lookup("k")
	if err := os.WriteFile(entry.Path, []byte("edited by hand"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, found := cache.Get("k"); found {
		t.Error("modified artifact was served")
	}
}

func TestCache_PruneMissingArtifacts(t *testing.T) {
	tmpDir := t.TempDir()
	first := newTestCache(t, Config{Dir: tmpDir})
	first.Put("k", []byte("output"), "", nil)

	entry, _ := first.Lookup("k")
	os.Remove(entry.Path)

	second := newTestCache(t, Config{Dir: tmpDir})
	if _, found := second.Lookup("k"); found {
		t.Error("entry without artifact survived reload")
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    EvictionStrategy
		wantErr bool
	}{
		{"", LRU, false},
		{"lru", LRU, false},
		{"LFU", LFU, false},
		{"fifo", FIFO, false},
		{"random", LRU, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkCache_Put(b *testing.B) {
	cache, _ := New(Config{Dir: b.TempDir(), MaxSize: 100 << 20})
	data := bytes.Repeat([]byte("_createElementVNode"), 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), data, "", nil)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	cache, _ := New(Config{Dir: b.TempDir(), MaxSize: 100 << 20})

	data := bytes.Repeat([]byte("_createElementVNode"), 512)
	for i := 0; i < 1000; i++ {
		cache.Put(fmt.Sprintf("key-%d", i), data, "", nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(fmt.Sprintf("key-%d", i%1000))
	}
}
