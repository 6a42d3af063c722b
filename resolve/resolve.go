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

// Package resolve implements Node.js-style module resolution: relative
// paths, node_modules package lookup, package.json exports/main/module
// conditional resolution, implicit extensions/index files, optional peer
// dependencies, and pseudo-namespaced subpackages.
package resolve

import (
	"path/filepath"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/packagejson"
)

// Logger is an interface for logging messages during resolution.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// NopLogger discards everything. Used when callers don't supply a Logger.
type NopLogger struct{}

// Warning implements Logger.
func (NopLogger) Warning(string, ...any) {}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// FindWorkspaceRoot walks up the directory tree looking for the nearest
// ancestor containing node_modules, a package.json declaring workspaces,
// or a .git directory - in that order of preference at each level.
func FindWorkspaceRoot(fsys fs.FileSystem, startDir string) string {
	dir := startDir
	for {
		nodeModulesPath := filepath.Join(dir, "node_modules")
		if stat, err := fsys.Stat(nodeModulesPath); err == nil && stat.IsDir() {
			return dir
		}

		pkgPath := filepath.Join(dir, "package.json")
		if pkg, err := packagejson.ParseFile(fsys, pkgPath); err == nil && len(pkg.WorkspacePatterns()) > 0 {
			return dir
		}

		gitDir := filepath.Join(dir, ".git")
		if stat, err := fsys.Stat(gitDir); err == nil && stat.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}
