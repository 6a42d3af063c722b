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
package walk

import (
	"sync"

	"bennypowers.dev/esmaudit/fs"
)

// moduleCache memoizes ParseModule results by file path. A single module
// is frequently reached through more than one top-level package's import
// graph (a shared transitive dependency), so caching its parse avoids
// re-running tree-sitter over files already visited by a sibling worker.
type moduleCache struct {
	mu      sync.Mutex
	entries map[string]*moduleEntry
}

type moduleEntry struct {
	once   sync.Once
	parsed *ParsedModule
	err    error
}

func newModuleCache() *moduleCache {
	return &moduleCache{entries: make(map[string]*moduleEntry)}
}

func (c *moduleCache) parse(fsys fs.FileSystem, file string) (*ParsedModule, error) {
	c.mu.Lock()
	entry, ok := c.entries[file]
	if !ok {
		entry = &moduleEntry{}
		c.entries[file] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		content, err := fsys.ReadFile(file)
		if err != nil {
			entry.err = err
			return
		}
		entry.parsed, entry.err = ParseModule(content)
	})

	return entry.parsed, entry.err
}
