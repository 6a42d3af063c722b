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
	"strings"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/packagejson"
)

// Options configures a Resolver's behavior. Use one of the preset
// constructors (DefaultPreset, TypeScriptPreset, StrictESMPreset) as a
// starting point.
type Options struct {
	// Conditions is the ordered list of export conditions to try.
	Conditions []string
	// Extensions is the implicit-extension probe order (C4).
	Extensions []string
	// Indexes is the implicit index-filename probe order (C4).
	Indexes []string
	// ImplicitFiles enables C4 probing for extensionless relative imports.
	// When false, a relative import with no extension is a hard
	// MissingExtensionError instead of being probed.
	ImplicitFiles bool
	// OptionalPeerGate enables skipping unresolvable bare specifiers that
	// are declared as optional peer dependencies of the importing package.
	OptionalPeerGate bool
	// PseudoNamespace enables fallback to direct file resolution within a
	// package's root when the package has no exports field restricting
	// subpaths, supporting packages that expose subpackages as plain files
	// rather than exports map entries (e.g. "dom-helpers/addClass").
	PseudoNamespace bool
	// TypesField enables the "types" exports-like field as the last step of
	// the no-exports fallback chain, for presets where a separate .d.ts
	// entry point is meaningful.
	TypesField bool
}

// Resolver implements Node.js-style module resolution against a
// fs.FileSystem, built from a chain of steps composed according to Options.
// Each WithX method returns a new Resolver rather than mutating the
// receiver, so a base Resolver can be safely reused to derive variants.
type Resolver struct {
	fs     fs.FileSystem
	cache  packagejson.Cache
	logger Logger
	opts   Options
}

// New creates a Resolver using DefaultPreset options. Pass nil for cache or
// logger to get a fresh MemoryCache and a no-op Logger respectively.
func New(fsys fs.FileSystem, cache packagejson.Cache, logger Logger) *Resolver {
	if cache == nil {
		cache = packagejson.NewMemoryCache()
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Resolver{fs: fsys, cache: cache, logger: logger, opts: DefaultPreset()}
}

// WithOptions returns a new Resolver using opts instead of the current options.
func (r *Resolver) WithOptions(opts Options) *Resolver {
	return &Resolver{fs: r.fs, cache: r.cache, logger: r.logger, opts: opts}
}

// Options returns the resolver's current options.
func (r *Resolver) Options() Options {
	return r.opts
}

// loadPackageDir loads and caches the package.json directly inside dir.
func (r *Resolver) loadPackageDir(dir string) (*packagejson.PackageJSON, error) {
	return packagejson.LoadPackageDir(r.cache, r.fs, dir)
}

// Resolve resolves specifier as it would appear in an import statement
// inside the file at fromFile, which belongs to package fromPkg (nil if
// fromFile is not inside any package, e.g. the audited project's own root
// source). Returns the absolute filesystem path of the resolved module.
func (r *Resolver) Resolve(specifier, fromFile string, fromPkg *packagejson.PackageJSON) (string, error) {
	if isRelativeOrAbsolute(specifier) {
		return r.resolveRelative(specifier, fromFile)
	}
	return r.resolveBare(specifier, fromFile, fromPkg)
}

// isRelativeOrAbsolute reports whether specifier is a relative ("./", "../")
// or filesystem-absolute import, as opposed to a bare package specifier.
func isRelativeOrAbsolute(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/") ||
		specifier == "." || specifier == ".."
}

func (r *Resolver) resolveRelative(specifier, fromFile string) (string, error) {
	var candidate string
	if strings.HasPrefix(specifier, "/") {
		candidate = specifier
	} else {
		candidate = filepath.Join(filepath.Dir(fromFile), specifier)
	}

	ext := filepath.Ext(candidate)
	if ext != "" && r.fs.Exists(candidate) {
		if stat, err := r.fs.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate, nil
		}
	}

	if !r.opts.ImplicitFiles {
		if ext == "" {
			return "", &MissingExtensionError{Specifier: specifier}
		}
		return "", &FileNotFoundError{Path: candidate}
	}

	if ext == "" {
		if name, ok := r.siblingPackageName(candidate); ok {
			return r.resolveBare(name, fromFile, nil)
		}
	}

	probe := ImplicitFileResolver{Extensions: r.opts.Extensions, Indexes: r.opts.Indexes}
	return probe.Resolve(r.fs, candidate)
}

// siblingPackageName reports whether dir is a directory containing a named
// package.json, in which case a relative import pointing at it is really a
// bare import of that package (a vendored, linked, or workspace-sibling
// package directory reached by relative path rather than through
// node_modules).
func (r *Resolver) siblingPackageName(dir string) (string, bool) {
	stat, err := r.fs.Stat(dir)
	if err != nil || !stat.IsDir() {
		return "", false
	}
	pkg, err := r.loadPackageDir(dir)
	if err != nil || pkg.Name == "" {
		return "", false
	}
	return pkg.Name, true
}

// splitBareSpecifier splits a bare specifier into its package name and
// subpath ("." for the package root). Scoped packages ("@scope/name/sub")
// consume two path segments for the name; unscoped packages consume one.
func splitBareSpecifier(specifier string) (pkgName, subpath string) {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") {
		if len(parts) < 2 {
			return specifier, "."
		}
		pkgName = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = "./" + parts[2]
		} else {
			subpath = "."
		}
		return pkgName, subpath
	}

	pkgName = parts[0]
	if len(parts) > 1 {
		rest := strings.TrimPrefix(specifier, pkgName+"/")
		subpath = "./" + rest
	} else {
		subpath = "."
	}
	return pkgName, subpath
}

// findPackageDir walks up the ancestor node_modules directories starting
// from fromFile's directory, looking for a directory named pkgName.
func (r *Resolver) findPackageDir(fromFile, pkgName string) (string, bool) {
	dir := filepath.Dir(fromFile)
	for {
		candidate := filepath.Join(dir, "node_modules", pkgName)
		if stat, err := r.fs.Stat(candidate); err == nil && stat.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolveEntry resolves the entry point of the package rooted at pkgDir,
// following the same exports/main/module fallback chain resolveBare uses for
// subpath ".", without requiring a synthetic importing file.
func (r *Resolver) ResolveEntry(pkgDir string) (string, error) {
	pkg, err := r.loadPackageDir(pkgDir)
	if err != nil {
		return "", err
	}
	return r.resolveSubpath(pkg, pkgDir, ".")
}

func (r *Resolver) resolveBare(specifier, fromFile string, fromPkg *packagejson.PackageJSON) (string, error) {
	pkgName, subpath := splitBareSpecifier(specifier)

	pkgDir, found := r.findPackageDir(fromFile, pkgName)
	if !found {
		if r.opts.OptionalPeerGate && fromPkg != nil && fromPkg.IsOptionalPeer(pkgName) {
			return "", &PeerDependencyNotInstalledError{PackageName: pkgName}
		}
		return "", &PackageNotFoundError{PackageName: pkgName}
	}

	pkg, err := r.loadPackageDir(pkgDir)
	if err != nil {
		return "", err
	}

	resolved, err := r.resolveSubpath(pkg, pkgDir, subpath)
	if err == nil {
		return resolved, nil
	}

	if r.opts.PseudoNamespace && pkg.Exports.Kind == packagejson.FieldUnset && subpath != "." {
		direct := filepath.Join(pkgDir, strings.TrimPrefix(subpath, "./"))
		if resolved, perr := (ImplicitFileResolver{Extensions: r.opts.Extensions, Indexes: r.opts.Indexes}).Resolve(r.fs, direct); perr == nil {
			return resolved, nil
		}
	}

	return "", err
}

// resolveSubpath resolves subpath ("." or "./foo") within pkg, preferring
// the exports field when present (declaring exports is exclusionary:
// anything not listed is not exported), then falling back to the
// module/browser/main/types chain.
func (r *Resolver) resolveSubpath(pkg *packagejson.PackageJSON, pkgDir, subpath string) (string, error) {
	if pkg.Exports.Kind != packagejson.FieldUnset {
		target, err := r.resolveViaExportsField(pkg.Exports, pkg.Name, subpath)
		if err != nil {
			return "", err
		}
		return r.finishCandidate(pkgDir, target)
	}

	return r.resolveViaFallbackChain(pkg, pkgDir, subpath)
}

// resolveViaFallbackChain resolves subpath when pkg declares no exports
// field at all, trying module, browser, main, and (TypeScript preset only)
// types in order, each a no-op when that field is itself unset, falling
// back to direct file resolution within the package root as a last resort.
func (r *Resolver) resolveViaFallbackChain(pkg *packagejson.PackageJSON, pkgDir, subpath string) (string, error) {
	if subpath == "." && pkg.Module != "" {
		for _, cond := range r.opts.Conditions {
			if cond == "module" || cond == "import" {
				return r.finishCandidate(pkgDir, pkg.Module)
			}
		}
	}

	if pkg.Browser.Kind != packagejson.FieldUnset {
		if target, err := r.resolveViaExportsField(pkg.Browser, pkg.Name, subpath); err == nil {
			return r.finishCandidate(pkgDir, target)
		}
	}

	if subpath == "." && pkg.Main != "" {
		return r.finishCandidate(pkgDir, pkg.Main)
	}

	if r.opts.TypesField && pkg.Types.Kind != packagejson.FieldUnset {
		if target, err := r.resolveViaExportsField(pkg.Types, pkg.Name, subpath); err == nil {
			return r.finishCandidate(pkgDir, target)
		}
	}

	if subpath == "." {
		return r.finishCandidate(pkgDir, "./index")
	}
	return r.finishCandidate(pkgDir, subpath)
}

// resolveViaExportsField resolves subpath against an already-parsed
// exports-like field belonging to package pkgName, per its Kind.
func (r *Resolver) resolveViaExportsField(field packagejson.ExportsLikeField, pkgName, subpath string) (string, error) {
	switch field.Kind {
	case packagejson.FieldFilename:
		if subpath != "." {
			return "", &SubpathNotExportedError{Subpath: subpath}
		}
		return field.Filename, nil

	case packagejson.FieldConditional:
		if subpath != "." {
			return "", &SubpathNotExportedError{Subpath: subpath}
		}
		resolved, err := field.ResolveConditions(r.opts.Conditions)
		if err != nil {
			return "", &NoConditionMatchError{Subpath: subpath, Conditions: r.opts.Conditions}
		}
		return r.resolveLeafConditional(resolved, subpath)

	case packagejson.FieldSubpaths:
		matched, ok := matchExport(field.Subpaths, normalizedSubpathRequest(pkgName, subpath))
		if !ok {
			return "", &SubpathNotExportedError{Subpath: subpath}
		}
		return r.resolveLeafConditional(matched, subpath)

	default:
		return "", &SubpathNotExportedError{Subpath: subpath}
	}
}

// normalizedSubpathRequest converts a resolution-time subpath ("." or
// "./tail") into the "<pkgName><tail>" form package.json parsing normalizes
// Subpaths map keys to, so lookups and stored keys agree.
func normalizedSubpathRequest(pkgName, subpath string) string {
	return pkgName + strings.TrimPrefix(subpath, ".")
}

func (r *Resolver) resolveLeafConditional(field packagejson.ExportsLikeField, subpath string) (string, error) {
	switch field.Kind {
	case packagejson.FieldFilename:
		return field.Filename, nil
	case packagejson.FieldConditional:
		resolved, err := field.ResolveConditions(r.opts.Conditions)
		if err != nil {
			return "", &NoConditionMatchError{Subpath: subpath, Conditions: r.opts.Conditions}
		}
		return r.resolveLeafConditional(resolved, subpath)
	default:
		return "", &SubpathNotExportedError{Subpath: subpath}
	}
}

// finishCandidate joins pkgDir with target and probes implicit
// extensions/index files if the target has no extension and the preset
// allows it.
func (r *Resolver) finishCandidate(pkgDir, target string) (string, error) {
	candidate := filepath.Join(pkgDir, strings.TrimPrefix(target, "./"))

	if filepath.Ext(candidate) != "" {
		if r.fs.Exists(candidate) {
			return candidate, nil
		}
		return "", &FileNotFoundError{Path: candidate}
	}

	if !r.opts.ImplicitFiles {
		return "", &MissingExtensionError{Specifier: target}
	}

	probe := ImplicitFileResolver{Extensions: r.opts.Extensions, Indexes: r.opts.Indexes}
	return probe.Resolve(r.fs, candidate)
}
