package engine

import (
	"os"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedMatches is one cached per-file result. The modification time and
// size act as the validity check: a file that changed since the entry
// was stored misses the cache. The pattern and fold mode are part of the
// check too, so one Engine can serve different requests without leaking
// a previous pattern's matches.
type cachedMatches struct {
	pattern    string
	ignoreCase bool
	modTime    time.Time
	size       int64
	matches    []string
}

// resultCache memoizes per-file match sets. Watch mode uses it so that
// an unchanged file is not re-read on every filesystem event. LRU
// eviction keeps memory bounded in long-running sessions.
type resultCache struct {
	entries *lru.Cache[string, cachedMatches]
}

func newResultCache(size int) (*resultCache, error) {
	entries, err := lru.New[string, cachedMatches](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

// lookup returns the cached match set for path if the file is unchanged
// and the entry was produced by the same matcher. The returned slice is
// a copy; the cache never shares ownership with callers.
func (c *resultCache) lookup(path string, m *Matcher) ([]string, bool) {
	entry, ok := c.entries.Get(path)
	if !ok {
		return nil, false
	}

	// A different pattern is a plain miss; store will replace the entry.
	if entry.pattern != m.pattern || entry.ignoreCase != m.ignoreCase {
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(entry.modTime) || info.Size() != entry.size {
		c.entries.Remove(path)
		return nil, false
	}

	return slices.Clone(entry.matches), true
}

// store records the match set for path keyed by its current metadata
// and the matcher that produced it.
func (c *resultCache) store(path string, m *Matcher, matches []string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	c.entries.Add(path, cachedMatches{
		pattern:    m.pattern,
		ignoreCase: m.ignoreCase,
		modTime:    info.ModTime(),
		size:       info.Size(),
		matches:    slices.Clone(matches),
	})
}

// purge drops every cached entry.
func (c *resultCache) purge() {
	c.entries.Purge()
}
