// Package cache stores compiled render functions on disk so unchanged
// templates are not recompiled on every build or watch cycle.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is an on-disk store of compiled templates
type Cache struct {
	mu       sync.RWMutex
	dir      string
	index    *Index
	maxSize  int64 // Maximum cache size in bytes
	maxAge   time.Duration
	strategy EvictionStrategy

	statsMu sync.Mutex
	stats   Stats
}

// Index tracks all cached entries. It is discarded whole when the compiler
// version that wrote it differs from the running one.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one compiled template
type Entry struct {
	Key         string    `json:"key"`
	Hash        string    `json:"hash"`
	Path        string    `json:"path"`
	Source      string    `json:"source,omitempty"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
	Helpers     []string  `json:"helpers,omitempty"`
}

// Stats tracks cache performance
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// EvictionStrategy defines how cache entries are removed
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// LFU removes least frequently used entries
	LFU
	// FIFO removes oldest entries first
	FIFO
)

// ParseStrategy maps a config value to an EvictionStrategy
func ParseStrategy(s string) (EvictionStrategy, error) {
	switch strings.ToLower(s) {
	case "", "lru":
		return LRU, nil
	case "lfu":
		return LFU, nil
	case "fifo":
		return FIFO, nil
	default:
		return LRU, fmt.Errorf("unknown eviction strategy %q", s)
	}
}

// Config holds cache configuration
type Config struct {
	Dir      string           // Cache directory (default: $HOME/.cache/vexc)
	Version  string           // Compiler version; a different version invalidates the cache
	MaxSize  int64            // Maximum cache size in bytes (default: 64MB)
	MaxAge   time.Duration    // Maximum age for cache entries (default: 7 days)
	Strategy EvictionStrategy // Eviction strategy (default: LRU)
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:      filepath.Join(homeDir, ".cache", "vexc"),
		MaxSize:  64 << 20,
		MaxAge:   7 * 24 * time.Hour,
		Strategy: LRU,
	}
}

// New opens or creates the cache in config.Dir
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:      config.Dir,
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		strategy: config.Strategy,
		index:    newIndex(config.Version),
	}

	if err := c.loadIndex(config.Version); err != nil {
		// Missing, corrupted or written by another compiler version
		if !os.IsNotExist(err) {
			log.Printf("⚠️  Resetting compile cache: %v", err)
			os.RemoveAll(c.artifactsDir())
		}
		c.index = newIndex(config.Version)
	}

	c.prune()
	return c, nil
}

func newIndex(version string) *Index {
	return &Index{
		Version: version,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Get returns the compiled output stored under key
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, exists := c.index.Entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if c.isExpired(entry) {
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil || c.hash(data) != entry.Hash {
		// Artifact is missing or was modified outside the cache
		c.Delete(key)
		c.recordMiss()
		return nil, false
	}

	c.mu.Lock()
	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.mu.Unlock()

	c.recordHit()
	return data, true
}

// Put stores compiled output under key. source is the template path the
// output was compiled from, used by InvalidateSource.
func (c *Cache) Put(key string, data []byte, source string, helpers []string) error {
	hash := c.hash(data)

	c.mu.RLock()
	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	size := int64(len(data))
	c.ensureSpace(size)

	filename := fmt.Sprintf("%s_%s.js", sanitizeKey(key), hash[:8])
	path := filepath.Join(c.artifactsDir(), filename)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	entry := &Entry{
		Key:        key,
		Hash:       hash,
		Path:       path,
		Source:     source,
		Size:       size,
		Created:    now,
		LastAccess: now,
		Helpers:    helpers,
	}

	c.mu.Lock()
	if old, ok := c.index.Entries[key]; ok {
		if old.Path != path {
			c.removeFile(old.Path)
		}
		c.adjustSize(-old.Size)
	}
	c.index.Entries[key] = entry
	c.index.Updated = now
	c.adjustSize(size)
	c.mu.Unlock()

	return c.Save()
}

// Lookup returns the entry stored under key without touching access stats
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.index.Entries[key]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		return nil
	}

	c.removeFile(entry.Path)
	delete(c.index.Entries, key)
	c.adjustSize(-entry.Size)
	c.index.Updated = time.Now()

	return c.saveIndexNoLock()
}

// InvalidateSource removes every entry compiled from source, or from any
// file under source when it is a directory. It returns how many were removed.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(source, string(filepath.Separator)) + string(filepath.Separator)
	count := 0
	for key, entry := range c.index.Entries {
		if entry.Source == source || strings.HasPrefix(entry.Source, prefix) {
			c.removeFile(entry.Path)
			delete(c.index.Entries, key)
			c.adjustSize(-entry.Size)
			count++
		}
	}

	if count > 0 {
		c.index.Updated = time.Now()
		c.saveIndexNoLock()
	}
	return count
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.artifactsDir()); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}

	c.index = newIndex(c.index.Version)

	c.statsMu.Lock()
	c.stats = Stats{}
	c.statsMu.Unlock()

	return c.saveIndexNoLock()
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Save writes the index to disk
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveIndexNoLock()
}

// Key derives a cache key from everything that affects compiled output
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		// length prefix keeps ("ab","c") and ("a","bc") apart
		fmt.Fprintf(h, "%d:", len(input))
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) artifactsDir() string {
	return filepath.Join(c.dir, "artifacts")
}

func (c *Cache) loadIndex(version string) error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("corrupted index: %w", err)
	}
	if index.Version != version {
		return fmt.Errorf("index written by compiler %q, running %q", index.Version, version)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}

	c.index = &index

	var totalSize int64
	for _, entry := range c.index.Entries {
		totalSize += entry.Size
	}
	c.statsMu.Lock()
	c.stats.TotalSize = totalSize
	c.stats.EntryCount = len(c.index.Entries)
	c.statsMu.Unlock()

	return nil
}

// saveIndexNoLock saves the index without acquiring a lock
// Caller must hold at least a read lock
func (c *Cache) saveIndexNoLock() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) isExpired(entry *Entry) bool {
	// If maxAge is 0 or negative, entries never expire
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

// adjustSize updates size and count stats. Caller must hold c.mu.
func (c *Cache) adjustSize(delta int64) {
	c.statsMu.Lock()
	c.stats.TotalSize += delta
	c.stats.EntryCount = len(c.index.Entries)
	c.statsMu.Unlock()
}

func (c *Cache) ensureSpace(needed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// If maxSize is 0 or negative, no limit
	if c.maxSize <= 0 {
		return
	}

	for c.GetStats().TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		evictKey, evictEntry := c.victim()
		if evictEntry == nil {
			break
		}

		c.removeFile(evictEntry.Path)
		delete(c.index.Entries, evictKey)
		c.adjustSize(-evictEntry.Size)

		c.statsMu.Lock()
		c.stats.Evictions++
		c.statsMu.Unlock()
	}
}

// victim picks the entry to evict under the configured strategy. Ties are
// broken by key so eviction is deterministic.
func (c *Cache) victim() (string, *Entry) {
	var evictKey string
	var evictEntry *Entry

	before := func(a, b *Entry) bool {
		switch c.strategy {
		case LFU:
			return a.AccessCount < b.AccessCount
		case FIFO:
			return a.Created.Before(b.Created)
		default:
			return a.LastAccess.Before(b.LastAccess)
		}
	}
	equal := func(a, b *Entry) bool {
		return !before(a, b) && !before(b, a)
	}

	for key, entry := range c.index.Entries {
		if evictEntry == nil || before(entry, evictEntry) || (equal(entry, evictEntry) && key < evictKey) {
			evictKey = key
			evictEntry = entry
		}
	}
	return evictKey, evictEntry
}

// prune drops expired entries and entries whose artifact has disappeared
func (c *Cache) prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.index.Entries {
		_, statErr := os.Stat(entry.Path)
		if c.isExpired(entry) || statErr != nil {
			c.removeFile(entry.Path)
			delete(c.index.Entries, key)
			c.adjustSize(-entry.Size)
			removed++
		}
	}
	if removed > 0 {
		c.index.Updated = time.Now()
		c.saveIndexNoLock()
	}
}

func (c *Cache) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️  Failed to remove cache file %s: %v", path, err)
	}
}

// Close saves the index
func (c *Cache) Close() error {
	return c.Save()
}

func (c *Cache) hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	sanitized := replacer.Replace(key)

	// Limit length
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	return sanitized
}
