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
package packagejson_test

import (
	"testing"

	"bennypowers.dev/esmaudit/internal/mapfs"
	"bennypowers.dev/esmaudit/packagejson"
)

func TestParseSimpleString(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"pkg","exports":"./index.js"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldFilename {
		t.Fatalf("expected FieldFilename, got %v", pkg.Exports.Kind)
	}
	if pkg.Exports.Filename != "./index.js" {
		t.Errorf("got filename %q", pkg.Exports.Filename)
	}
}

func TestParseEmptyObjectIsConditional(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"pkg","exports":{}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldConditional {
		t.Fatalf("expected FieldConditional for empty object, got %v", pkg.Exports.Kind)
	}
	if len(pkg.Exports.Conditions) != 0 {
		t.Errorf("expected no conditions, got %d", len(pkg.Exports.Conditions))
	}
}

func TestParseConditionalExports(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "pkg",
		"exports": {"import": "./esm.js", "require": "./cjs.js", "default": "./fallback.js"}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldConditional {
		t.Fatalf("expected FieldConditional, got %v", pkg.Exports.Kind)
	}

	resolved, err := pkg.Exports.ResolveConditions([]string{"import", "default"})
	if err != nil {
		t.Fatalf("ResolveConditions failed: %v", err)
	}
	if resolved.Filename != "./esm.js" {
		t.Errorf("expected ./esm.js, got %q", resolved.Filename)
	}
}

func TestParseSubpathExports(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "pkg",
		"exports": {".": "./index.js", "./button": "./button.js", "./*": "./dist/*.js"}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldSubpaths {
		t.Fatalf("expected FieldSubpaths, got %v", pkg.Exports.Kind)
	}
	if len(pkg.Exports.Subpaths) != 3 {
		t.Fatalf("expected 3 subpaths, got %d", len(pkg.Exports.Subpaths))
	}
	// Subpath keys are normalized to "<package name><tail>", not the raw
	// "." / "./tail" JSON keys.
	if pkg.Exports.Subpaths["pkg/button"].Filename != "./button.js" {
		t.Errorf("unexpected pkg/button target: %+v", pkg.Exports.Subpaths["pkg/button"])
	}
	if pkg.Exports.Subpaths["pkg"].Filename != "./index.js" {
		t.Errorf("unexpected pkg target: %+v", pkg.Exports.Subpaths["pkg"])
	}
	if pkg.Exports.Subpaths["pkg/*"].Filename != "./dist/*.js" {
		t.Errorf("unexpected pkg/* target: %+v", pkg.Exports.Subpaths["pkg/*"])
	}
}

func TestParseNestedConditionsUnderSubpath(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "pkg",
		"exports": {
			".": {"import": "./esm/index.js", "require": "./cjs/index.js"},
			"./feature": "./feature.js"
		}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	main := pkg.Exports.Subpaths["pkg"]
	if main.Kind != packagejson.FieldConditional {
		t.Fatalf("expected nested conditional under normalized root key, got %v", main.Kind)
	}
}

func TestParseNestedDottedSubpathsAreFlattened(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "pkg",
		"exports": {"./foo": {"./bar": "./foo/bar.js"}}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldSubpaths {
		t.Fatalf("expected FieldSubpaths, got %v", pkg.Exports.Kind)
	}
	if len(pkg.Exports.Subpaths) != 1 {
		t.Fatalf("expected the nested dotted key to flatten into one entry, got %v", pkg.Exports.Subpaths)
	}
	if pkg.Exports.Subpaths["pkg/foo/bar"].Filename != "./foo/bar.js" {
		t.Errorf("expected flattened key pkg/foo/bar, got %+v", pkg.Exports.Subpaths)
	}
}

func TestParseExportsWithoutNameIsUnset(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"exports": {".": "./index.js"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldUnset {
		t.Fatalf("expected FieldUnset with no effective package name, got %v", pkg.Exports.Kind)
	}
}

func TestParseWithHintNormalizesUnnamedPackage(t *testing.T) {
	pkg, err := packagejson.ParseWithHint([]byte(`{"exports": {".": "./index.js", "./button": "./button.js"}}`), "hinted-pkg")
	if err != nil {
		t.Fatalf("ParseWithHint failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldSubpaths {
		t.Fatalf("expected FieldSubpaths using the name hint, got %v", pkg.Exports.Kind)
	}
	if pkg.Exports.Subpaths["hinted-pkg/button"].Filename != "./button.js" {
		t.Errorf("expected hinted-pkg/button key, got %+v", pkg.Exports.Subpaths)
	}
	// raw.name, when present, always wins over the hint.
	pkg2, err := packagejson.ParseWithHint([]byte(`{"name":"real-name","exports":{".":"./index.js"}}`), "hinted-pkg")
	if err != nil {
		t.Fatalf("ParseWithHint failed: %v", err)
	}
	if pkg2.Exports.Subpaths["real-name"].Filename != "./index.js" {
		t.Errorf("expected raw.name to win over the hint, got %+v", pkg2.Exports.Subpaths)
	}
}

func TestParseArrayExportsUnsetsField(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"pkg","exports":["./a.js","./b.js"]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.Exports.Kind != packagejson.FieldUnset {
		t.Fatalf("expected FieldUnset for array exports, got %v", pkg.Exports.Kind)
	}
}

func TestOptionalPeerDependency(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{
		"name": "pkg",
		"peerDependencies": {"react": "^18", "react-dom": "^18"},
		"peerDependenciesMeta": {"react-dom": {"optional": true}}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if pkg.IsOptionalPeer("react") {
		t.Error("react should not be optional")
	}
	if !pkg.IsOptionalPeer("react-dom") {
		t.Error("react-dom should be optional")
	}
}

func TestWorkspacePatternsArrayForm(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"root","workspaces":["packages/*"]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	patterns := pkg.WorkspacePatterns()
	if len(patterns) != 1 || patterns[0] != "packages/*" {
		t.Errorf("unexpected patterns: %v", patterns)
	}
}

func TestWorkspacePatternsObjectForm(t *testing.T) {
	pkg, err := packagejson.Parse([]byte(`{"name":"root","workspaces":{"packages":["libs/*"],"nohoist":["**/react"]}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	patterns := pkg.WorkspacePatterns()
	if len(patterns) != 1 || patterns[0] != "libs/*" {
		t.Errorf("unexpected patterns: %v", patterns)
	}
}

func TestParseFileUsesMapFS(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/pkg/package.json", `{"name":"pkg","main":"./index.js"}`, 0644)

	pkg, err := packagejson.ParseFile(mfs, "/pkg/package.json")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if pkg.Main != "./index.js" {
		t.Errorf("got main %q", pkg.Main)
	}
}
