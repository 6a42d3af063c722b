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

// Package packagejson parses package.json files and normalizes their
// exports-like fields (exports, imports, browser) into a typed form that
// the resolver can walk without re-inspecting raw JSON.
package packagejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"bennypowers.dev/esmaudit/fs"
)

// ErrNotExported is returned when a subpath is not exported by a package.
var ErrNotExported = errors.New("not exported by package.json")

// FieldKind discriminates the normalized shape of an exports-like field.
type FieldKind int

const (
	// FieldUnset means the field was absent or had an unsupported JSON shape
	// (array, boolean, null at the top level) - the whole field unsets.
	FieldUnset FieldKind = iota
	// FieldFilename means the field was a bare string, e.g. "./index.js".
	FieldFilename
	// FieldConditional means the field was an object whose keys are all
	// condition names (no key starts with ".").
	FieldConditional
	// FieldSubpaths means the field was an object with at least one
	// dot-prefixed key, mapping subpaths to further ExportsLikeField values.
	FieldSubpaths
)

// ExportsLikeField is a tagged union over the normalized shapes that
// package.json's exports/imports/browser fields can take.
type ExportsLikeField struct {
	Kind FieldKind

	// Filename holds the target when Kind == FieldFilename.
	Filename string

	// Conditions holds condition name -> nested field, sorted by condition
	// name, when Kind == FieldConditional.
	Conditions []ConditionEntry

	// Subpaths holds subpath -> nested field, when Kind == FieldSubpaths.
	// Nested dotted keys are flattened onto the parent subpath name.
	Subpaths map[string]ExportsLikeField
}

// ConditionEntry is one condition of a Conditional field. The order of the
// entries carries no priority: condition priority is resolved left-to-right
// through the caller's condition list (see ResolveConditions), matched
// against whichever conditions the package actually declares.
type ConditionEntry struct {
	Name  string
	Value ExportsLikeField
}

// PackageJSON is the subset of package.json relevant to module resolution.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main,omitempty"`
	Module          string            `json:"module,omitempty"`
	Type            string            `json:"type,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]PeerMeta `json:"peerDependenciesMeta,omitempty"`

	Exports ExportsLikeField `json:"-"`
	Imports ExportsLikeField `json:"-"`
	Browser ExportsLikeField `json:"-"`
	Types   ExportsLikeField `json:"-"`

	rawWorkspaces json.RawMessage
}

// PeerMeta describes the peerDependenciesMeta entry for a single peer.
type PeerMeta struct {
	Optional bool `json:"optional,omitempty"`
}

// rawPackageJSON mirrors package.json's on-disk shape before normalization.
type rawPackageJSON struct {
	Name                 string              `json:"name"`
	Version              string              `json:"version"`
	Main                 string              `json:"main,omitempty"`
	Module               string              `json:"module,omitempty"`
	Type                 string              `json:"type,omitempty"`
	Dependencies         map[string]string   `json:"dependencies,omitempty"`
	DevDependencies      map[string]string   `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string   `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]PeerMeta `json:"peerDependenciesMeta,omitempty"`
	Exports              json.RawMessage     `json:"exports,omitempty"`
	Imports              json.RawMessage     `json:"imports,omitempty"`
	Browser              json.RawMessage     `json:"browser,omitempty"`
	Types                json.RawMessage     `json:"types,omitempty"`
	Workspaces           json.RawMessage     `json:"workspaces,omitempty"`
}

// Parse parses package.json content into a normalized PackageJSON, using
// raw.name as the effective package name.
func Parse(data []byte) (*PackageJSON, error) {
	return ParseWithHint(data, "")
}

// ParseWithHint parses package.json content into a normalized PackageJSON.
// This is get_or_parse's hinted_name contract: when the package.json has no
// "name" field of its own, hintedName (typically derived from its
// node_modules directory name) is used as the effective name instead.
// Normalization of every exports-like field requires a known effective name;
// if both raw.name and hintedName are empty, every exports-like field is
// left unset.
func ParseWithHint(data []byte, hintedName string) (*PackageJSON, error) {
	var raw rawPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	name := raw.Name
	if name == "" {
		name = hintedName
	}

	pkg := &PackageJSON{
		Name:                 name,
		Version:              raw.Version,
		Main:                 raw.Main,
		Module:               raw.Module,
		Type:                 raw.Type,
		Dependencies:         raw.Dependencies,
		DevDependencies:      raw.DevDependencies,
		PeerDependencies:     raw.PeerDependencies,
		PeerDependenciesMeta: raw.PeerDependenciesMeta,
		rawWorkspaces:        raw.Workspaces,
	}

	pkg.Exports = parseExportsLikeField(raw.Exports, name)
	pkg.Imports = parseExportsLikeField(raw.Imports, name)
	pkg.Browser = parseExportsLikeField(raw.Browser, name)
	pkg.Types = parseExportsLikeField(raw.Types, name)

	return pkg, nil
}

// ParseFile parses a package.json file from the given filesystem.
func ParseFile(fsys fs.FileSystem, path string) (*PackageJSON, error) {
	return ParseFileWithHint(fsys, path, "")
}

// ParseFileWithHint parses a package.json file from the given filesystem,
// using hintedName as the effective name when the file has none of its own.
func ParseFileWithHint(fsys fs.FileSystem, path, hintedName string) (*PackageJSON, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWithHint(data, hintedName)
}

// parseExportsLikeField normalizes a raw JSON value for
// exports/imports/browser/types, given the package's effective name (raw.name
// or a caller-supplied hint).
//
// String -> Filename. Object with any dotted key -> Subpaths, with keys
// normalized from "." / ".<tail>" to "<name>" / "<name><tail>" (nested dotted
// keys are flattened onto the parent subpath name rather than nested).
// Object with no dotted keys -> Conditional, even when empty. Any other JSON
// shape (array, bool, null), at the top level or nested at any depth, unsets
// the whole field - there is no partial recovery. With no effective name, the field cannot be normalized at all and
// is left unset.
func parseExportsLikeField(raw json.RawMessage, name string) ExportsLikeField {
	if len(raw) == 0 || name == "" || string(bytes.TrimSpace(raw)) == "null" {
		return ExportsLikeField{Kind: FieldUnset}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return ExportsLikeField{Kind: FieldFilename, Filename: asString}
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return parseObjectField(asObject, name)
	}

	return ExportsLikeField{Kind: FieldUnset}
}

func parseObjectField(obj map[string]json.RawMessage, name string) ExportsLikeField {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	hasDotted := false
	for _, k := range keys {
		if strings.HasPrefix(k, ".") {
			hasDotted = true
			break
		}
	}

	if !hasDotted {
		entries := make([]ConditionEntry, 0, len(keys))
		for _, k := range keys {
			value := parseExportsLikeField(obj[k], name)
			if value.Kind == FieldUnset {
				return ExportsLikeField{Kind: FieldUnset}
			}
			entries = append(entries, ConditionEntry{Name: k, Value: value})
		}
		return ExportsLikeField{Kind: FieldConditional, Conditions: entries}
	}

	subpaths := make(map[string]ExportsLikeField, len(keys))
	for _, k := range keys {
		if !strings.HasPrefix(k, ".") {
			// Non-dotted sibling key alongside subpaths: ignored, matching
			// the original implementation's "any dotted key -> subpaths"
			// classification, which does not reserve non-dotted keys.
			continue
		}
		flattenSubpath(subpaths, k, obj[k], name)
	}
	for _, value := range subpaths {
		if value.Kind == FieldUnset {
			return ExportsLikeField{Kind: FieldUnset}
		}
	}
	return ExportsLikeField{Kind: FieldSubpaths, Subpaths: subpaths}
}

// flattenSubpath normalizes dotted key (e.g. "." or "./bar") to
// "<name><tail>" and inserts its normalized value into subpaths. If raw is
// itself an object whose keys all start with ".", those nested dotted keys
// extend the same subpath map instead of nesting - the tail of key is
// concatenated onto each nested key before recursing, so
// {"./foo": {"./bar": "./foo/bar.js"}} flattens to "<name>/foo/bar".
func flattenSubpath(subpaths map[string]ExportsLikeField, key string, raw json.RawMessage, name string) {
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && allKeysDotted(nested) {
		nestedKeys := make([]string, 0, len(nested))
		for k := range nested {
			nestedKeys = append(nestedKeys, k)
		}
		sort.Strings(nestedKeys)
		for _, k2 := range nestedKeys {
			flattenSubpath(subpaths, key+strings.TrimPrefix(k2, "."), nested[k2], name)
		}
		return
	}

	subpaths[normalizeSubpathKey(key, name)] = parseExportsLikeField(raw, name)
}

func allKeysDotted(obj map[string]json.RawMessage) bool {
	for k := range obj {
		if !strings.HasPrefix(k, ".") {
			return false
		}
	}
	return true
}

// normalizeSubpathKey rewrites a raw "." / ".<tail>" exports key into its
// normalized form: the package's own name for the root, or
// "<name><tail>" otherwise.
func normalizeSubpathKey(key, name string) string {
	return name + strings.TrimPrefix(key, ".")
}

// WorkspacePatterns returns the workspace glob patterns declared by the
// package, handling both the array form and the object form used by
// yarn classic with nohoist ({"packages": [...], "nohoist": [...]}).
func (pkg *PackageJSON) WorkspacePatterns() []string {
	if len(pkg.rawWorkspaces) == 0 {
		return nil
	}

	var patterns []string
	if err := json.Unmarshal(pkg.rawWorkspaces, &patterns); err == nil {
		return patterns
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(pkg.rawWorkspaces, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// IsOptionalPeer returns true if depName is declared as an optional peer
// dependency in peerDependenciesMeta.
func (pkg *PackageJSON) IsOptionalPeer(depName string) bool {
	meta, ok := pkg.PeerDependenciesMeta[depName]
	return ok && meta.Optional
}

// ResolveConditions walks a Conditional field's entries in the order given
// by conditionOrder, returning the first matching nested field. Nested
// Conditional values recurse transparently. Returns ErrNotExported if no
// condition in conditionOrder is declared.
func (f ExportsLikeField) ResolveConditions(conditionOrder []string) (ExportsLikeField, error) {
	if f.Kind != FieldConditional {
		return ExportsLikeField{}, ErrNotExported
	}
	byName := make(map[string]ExportsLikeField, len(f.Conditions))
	for _, c := range f.Conditions {
		byName[c.Name] = c.Value
	}
	for _, cond := range conditionOrder {
		value, ok := byName[cond]
		if !ok {
			continue
		}
		if value.Kind == FieldConditional {
			if resolved, err := value.ResolveConditions(conditionOrder); err == nil {
				return resolved, nil
			}
			continue
		}
		return value, nil
	}
	return ExportsLikeField{}, ErrNotExported
}
