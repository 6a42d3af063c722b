/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package packagejson

import (
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"

	"bennypowers.dev/esmaudit/fs"
)

// shardCount matches the shard count of the system this cache's sharding
// strategy was modeled on, chosen to spread lock contention across a
// parallel walk over many top-level dependencies without the memory cost
// of one lock per package.
const shardCount = 8

// Cache provides a caching interface for parsed package.json files, keyed
// by package directory (not file path - a package directory has exactly
// one package.json).
type Cache interface {
	// GetOrLoad atomically retrieves a cached entry or loads it with loader.
	// Only one goroutine executes loader for a given dir; concurrent callers
	// for the same dir block until it completes and share its result.
	GetOrLoad(dir string, loader func() (*PackageJSON, error)) (*PackageJSON, error)

	// Invalidate removes a cached entry for dir, if present.
	Invalidate(dir string)
}

type cacheEntry struct {
	once sync.Once
	pkg  *PackageJSON
	err  error
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// MemoryCache is a sharded, concurrency-safe in-memory Cache.
type MemoryCache struct {
	shards [shardCount]*shard
}

// NewMemoryCache creates a new sharded in-memory package.json cache.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]*cacheEntry)}
	}
	return c
}

func (c *MemoryCache) shardFor(dir string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(dir))
	return c.shards[h.Sum32()%shardCount]
}

// GetOrLoad implements Cache.
func (c *MemoryCache) GetOrLoad(dir string, loader func() (*PackageJSON, error)) (*PackageJSON, error) {
	sh := c.shardFor(dir)

	sh.mu.RLock()
	entry, ok := sh.entries[dir]
	sh.mu.RUnlock()

	if !ok {
		sh.mu.Lock()
		entry, ok = sh.entries[dir]
		if !ok {
			entry = &cacheEntry{}
			sh.entries[dir] = entry
		}
		sh.mu.Unlock()
	}

	entry.once.Do(func() {
		entry.pkg, entry.err = loader()
	})

	return entry.pkg, entry.err
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(dir string) {
	sh := c.shardFor(dir)
	sh.mu.Lock()
	delete(sh.entries, dir)
	sh.mu.Unlock()
}

// LoadPackageDir loads and caches the package.json found directly inside
// dir, returning the same *PackageJSON to every concurrent caller for dir.
//
// dir's basename (or, for a scoped package, its last two path segments) is
// passed as a name hint, so exports-like fields still normalize for a
// package.json that omits "name" - the common case for an unpublished
// workspace member.
func LoadPackageDir(cache Cache, fsys fs.FileSystem, dir string) (*PackageJSON, error) {
	return cache.GetOrLoad(dir, func() (*PackageJSON, error) {
		return ParseFileWithHint(fsys, filepath.Join(dir, "package.json"), hintedNameFromDir(dir))
	})
}

// hintedNameFromDir derives a package-name hint from a node_modules package
// directory path: the last segment, or "@scope/name" for a scoped package.
func hintedNameFromDir(dir string) string {
	dir = filepath.ToSlash(filepath.Clean(dir))
	base := filepath.Base(dir)
	parent := filepath.Base(filepath.Dir(dir))
	if strings.HasPrefix(parent, "@") {
		return parent + "/" + base
	}
	return base
}
