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
package resolve

import (
	"path/filepath"

	"bennypowers.dev/esmaudit/fs"
)

// ImplicitFileResolver probes a candidate path that has no file extension
// (or is a directory) against a preset's configured extensions and index
// filenames. It tries, in order:
//
//  1. candidate + each extension, e.g. "./foo" -> "./foo.js", "./foo.ts"
//  2. candidate/<index> for each index filename, e.g. "./foo/index.js"
//
// Returns the first path that exists on disk, or FileNotFoundError.
type ImplicitFileResolver struct {
	Extensions []string
	Indexes    []string
}

// Resolve probes candidate against the configured extensions and indexes.
// If candidate already exists verbatim as a regular file, it is returned
// unchanged, whatever its extension.
func (r ImplicitFileResolver) Resolve(fsys fs.FileSystem, candidate string) (string, error) {
	if fsys.Exists(candidate) {
		if stat, err := fsys.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate, nil
		}
	}

	for _, ext := range r.Extensions {
		withExt := candidate + ext
		if fsys.Exists(withExt) {
			if stat, err := fsys.Stat(withExt); err == nil && !stat.IsDir() {
				return withExt, nil
			}
		}
	}

	for _, index := range r.Indexes {
		indexPath := filepath.Join(candidate, index)
		if fsys.Exists(indexPath) {
			if stat, err := fsys.Stat(indexPath); err == nil && !stat.IsDir() {
				return indexPath, nil
			}
		}
	}

	return "", &FileNotFoundError{Path: candidate}
}

// DefaultExtensions is the extension probe order for the Default preset.
var DefaultExtensions = []string{".js", ".cjs", ".mjs", ".json"}

// TypeScriptExtensions adds TypeScript source/declaration extensions ahead
// of their compiled JS counterparts.
var TypeScriptExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".cjs", ".mjs", ".json"}

// DefaultIndexes is the implicit index-file probe order.
var DefaultIndexes = []string{"index.js", "index.cjs", "index.mjs", "index.json"}

// TypeScriptIndexes adds TypeScript index files ahead of their JS counterparts.
var TypeScriptIndexes = []string{"index.ts", "index.tsx", "index.d.ts", "index.js", "index.cjs", "index.mjs", "index.json"}
