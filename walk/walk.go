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
	"errors"
	"path"
	"strings"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/packagejson"
	"bennypowers.dev/esmaudit/resolve"
)

// ResolveErrorRecord captures a hard resolution failure encountered while
// walking a package's import graph.
type ResolveErrorRecord struct {
	File      string
	Specifier string
	Err       error
}

// ParseErrorRecord captures a failure to parse a module's source text.
type ParseErrorRecord struct {
	File string
	Err  error
}

// Analysis is the result of walking a single top-level dependency's
// transitive import graph.
type Analysis struct {
	PackageName string

	// EntryHasCJSSyntax is true if CommonJS syntax (module.exports,
	// exports.x, require(...)) was found in a file belonging to
	// PackageName itself, as opposed to one of its transitive deps.
	EntryHasCJSSyntax bool

	// TransitiveCJSDeps holds the names of packages, reached transitively
	// from PackageName, whose own files contain CommonJS syntax.
	TransitiveCJSDeps map[string]bool

	// MissingExtensionSpecifiers holds relative import specifiers found in
	// PackageName's own source that have no file extension - valid under
	// bundler resolution but not under native ESM resolution.
	MissingExtensionSpecifiers []string

	ResolveErrors []ResolveErrorRecord
	ParseErrors   []ParseErrorRecord
}

// Walker walks a package's transitive import graph, resolving each
// specifier with a resolve.Resolver and classifying CJS/ESM usage via the
// tree-sitter-backed module parser.
type Walker struct {
	fs       fs.FileSystem
	resolver *resolve.Resolver
	pkgCache packagejson.Cache
	modCache *moduleCache
}

// New creates a Walker. Pass nil for pkgCache to get a fresh MemoryCache.
func New(fsys fs.FileSystem, resolver *resolve.Resolver, pkgCache packagejson.Cache) *Walker {
	if pkgCache == nil {
		pkgCache = packagejson.NewMemoryCache()
	}
	return &Walker{fs: fsys, resolver: resolver, pkgCache: pkgCache, modCache: newModuleCache()}
}

// owner tracks the package a given file belongs to, and that package's
// parsed package.json (nil for files outside any node_modules package,
// i.e. the audited project's own source).
type owner struct {
	name string
	dir  string
	pkg  *packagejson.PackageJSON
}

// WalkPackage walks packageName's transitive import graph starting from
// entryFile (the resolved entry point inside packageDir), returning its
// Analysis. visited-set scope is local to this call, matching the walker's
// cycle-safety guarantee: a file revisited within one top-level package's
// walk is skipped, but the same file walked again for a different
// top-level package starts fresh.
func (w *Walker) WalkPackage(packageName, packageDir, entryFile string) *Analysis {
	analysis := &Analysis{
		PackageName:       packageName,
		TransitiveCJSDeps: make(map[string]bool),
	}

	pkg, _ := packagejson.LoadPackageDir(w.pkgCache, w.fs, packageDir)
	self := owner{name: packageName, dir: packageDir, pkg: pkg}

	visited := make(map[string]bool)
	w.walkFile(entryFile, self, self, analysis, visited)

	return analysis
}

func (w *Walker) walkFile(file string, fileOwner, entry owner, analysis *Analysis, visited map[string]bool) {
	// Resolve errors are terminal for the whole top-level package (one error
	// max): once followSpecifier has recorded one, every further call at any
	// recursion depth becomes a no-op.
	if len(analysis.ResolveErrors) > 0 {
		return
	}

	if visited[file] {
		return
	}
	visited[file] = true

	parsed, err := w.modCache.parse(w.fs, file)
	if err != nil {
		analysis.ParseErrors = append(analysis.ParseErrors, ParseErrorRecord{File: file, Err: err})
		return
	}

	if parsed.HasCJSSyntax {
		if fileOwner.name == entry.name {
			analysis.EntryHasCJSSyntax = true
		} else {
			analysis.TransitiveCJSDeps[fileOwner.name] = true
		}
	}

	for _, spec := range parsed.Specifiers {
		w.followSpecifier(spec, file, fileOwner, entry, analysis, visited)
		if len(analysis.ResolveErrors) > 0 {
			return
		}
	}
}

func (w *Walker) followSpecifier(spec Specifier, file string, fileOwner, entry owner, analysis *Analysis, visited map[string]bool) {
	// Node.js builtins addressed with the "node:" scheme are never resolved.
	if strings.HasPrefix(spec.Text, "node:") {
		return
	}

	if fileOwner.name == entry.name && isRelativeSpecifier(spec.Text) && path.Ext(spec.Text) == "" {
		analysis.MissingExtensionSpecifiers = append(analysis.MissingExtensionSpecifiers, spec.Text)
	}

	resolved, err := w.resolver.Resolve(spec.Text, file, fileOwner.pkg)
	if err != nil {
		var missingExt *resolve.MissingExtensionError
		var peerNotInstalled *resolve.PeerDependencyNotInstalledError

		switch {
		case errors.As(err, &peerNotInstalled):
			return
		case errors.As(err, &missingExt) && fileOwner.name == entry.name && isRelativeSpecifier(spec.Text):
			// Already recorded above as a missing-extension specifier.
			return
		default:
			analysis.ResolveErrors = append(analysis.ResolveErrors, ResolveErrorRecord{
				File: file, Specifier: spec.Text, Err: err,
			})
			return
		}
	}

	nextOwner := fileOwner
	if dir, name, ok := splitNodeModulesOwner(resolved); ok && name != fileOwner.name {
		pkg, _ := packagejson.LoadPackageDir(w.pkgCache, w.fs, dir)
		nextOwner = owner{name: name, dir: dir, pkg: pkg}
	}

	w.walkFile(resolved, nextOwner, entry, analysis, visited)
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// splitNodeModulesOwner extracts the package directory and name that p
// belongs to, based on the last "/node_modules/" segment in its path.
func splitNodeModulesOwner(p string) (dir, name string, ok bool) {
	const marker = "/node_modules/"
	idx := strings.LastIndex(p, marker)
	if idx < 0 {
		return "", "", false
	}
	rest := p[idx+len(marker):]
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}

	prefix := p[:idx+len(marker)]
	if strings.HasPrefix(parts[0], "@") && len(parts) >= 2 {
		name = parts[0] + "/" + parts[1]
		dir = prefix + parts[0] + "/" + parts[1]
	} else {
		name = parts[0]
		dir = prefix + parts[0]
	}
	return dir, name, true
}
