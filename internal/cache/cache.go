// Package cache keeps extraction results in memory so that watch mode only
// re-extracts files that changed since the previous scan.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// DefaultCapacity is the number of literals kept when no capacity is given.
const DefaultCapacity = 1 << 20

// Cache maps a file version to the literals extracted from it.
// Entries cost one unit per literal, so capacity bounds literals held
// rather than files.
type Cache struct {
	entries otter.Cache[string, []literal.Literal]
}

// New creates a cache holding up to capacity literals. A capacity below one
// uses DefaultCapacity.
func New(capacity int) (*Cache, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	entries, err := otter.MustBuilder[string, []literal.Literal](capacity).
		Cost(func(_ string, lits []literal.Literal) uint32 {
			return uint32(len(lits)) + 1
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Get returns the literals cached under key.
func (c *Cache) Get(key string) ([]literal.Literal, bool) {
	return c.entries.Get(key)
}

// Put records lits under key. The key must be taken with Key before the
// file is read, so a save during extraction never caches stale literals
// under the new version.
func (c *Cache) Put(key string, lits []literal.Literal) {
	c.entries.Set(key, lits)
}

// Close releases the cache.
func (c *Cache) Close() {
	c.entries.Close()
}

// Key identifies a version of a file for a provider.
// Format: hex SHA-256 of provider, path, size and modification time.
func Key(provider, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return hashString(provider + "\x00" + path + "\x00" +
		strconv.FormatInt(info.Size(), 10) + "\x00" +
		strconv.FormatInt(info.ModTime().UnixNano(), 10)), nil
}

// hashString returns SHA-256 hash of the input string as hex.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
