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
package report

import (
	"errors"
	"testing"

	"bennypowers.dev/esmaudit/walk"
)

func TestGenerateClassifiesPureESM(t *testing.T) {
	analyses := []*walk.Analysis{
		{PackageName: "pure-esm", TransitiveCJSDeps: map[string]bool{}},
	}
	r := Generate(analyses)
	if len(r.ESM) != 1 || r.ESM[0] != "pure-esm" {
		t.Fatalf("expected esm=[pure-esm], got %v", r.ESM)
	}
	if r.Total != 1 {
		t.Fatalf("expected total=1, got %d", r.Total)
	}
}

func TestGenerateClassifiesCJS(t *testing.T) {
	analyses := []*walk.Analysis{
		{PackageName: "legacy-lib", EntryHasCJSSyntax: true},
	}
	r := Generate(analyses)
	if len(r.CJS) != 1 || r.CJS[0] != "legacy-lib" {
		t.Fatalf("expected cjs=[legacy-lib], got %v", r.CJS)
	}
}

func TestGenerateClassifiesFauxESMWithCommonJSDependencies(t *testing.T) {
	analyses := []*walk.Analysis{
		{
			PackageName:       "faux-esm",
			TransitiveCJSDeps: map[string]bool{"cjs-dep": true, "another-cjs-dep": true},
		},
	}
	r := Generate(analyses)
	if len(r.FauxESM.WithCommonJSDependencies) != 1 {
		t.Fatalf("expected one faux-esm/cjs entry, got %v", r.FauxESM.WithCommonJSDependencies)
	}
	entry := r.FauxESM.WithCommonJSDependencies[0]
	if entry.PackageName != "faux-esm" {
		t.Fatalf("expected package name faux-esm, got %s", entry.PackageName)
	}
	want := []string{"another-cjs-dep", "cjs-dep"}
	if !equalSlices(entry.TransitiveCommonJSDependencies, want) {
		t.Fatalf("expected sorted deps %v, got %v", want, entry.TransitiveCommonJSDependencies)
	}
}

func TestGenerateClassifiesFauxESMWithMissingExtensions(t *testing.T) {
	analyses := []*walk.Analysis{
		{
			PackageName:                "bundler-style",
			MissingExtensionSpecifiers: []string{"./helper", "./util"},
		},
	}
	r := Generate(analyses)
	if len(r.FauxESM.WithMissingJSFileExtensions) != 1 {
		t.Fatalf("expected one faux-esm/missing-ext entry, got %v", r.FauxESM.WithMissingJSFileExtensions)
	}
}

func TestGenerateCommonJSDependenciesTakePrecedenceOverMissingExtensions(t *testing.T) {
	analyses := []*walk.Analysis{
		{
			PackageName:                "both-issues",
			TransitiveCJSDeps:          map[string]bool{"cjs-dep": true},
			MissingExtensionSpecifiers: []string{"./helper"},
		},
	}
	r := Generate(analyses)
	if len(r.FauxESM.WithCommonJSDependencies) != 1 {
		t.Fatalf("expected entry under with-commonjs-dependencies, got %v", r.FauxESM)
	}
	if len(r.FauxESM.WithMissingJSFileExtensions) != 0 {
		t.Fatalf("expected no duplicate entry under with-missing-extensions, got %v", r.FauxESM.WithMissingJSFileExtensions)
	}
}

func TestGenerateRecordsResolveErrors(t *testing.T) {
	analyses := []*walk.Analysis{
		{
			PackageName: "broken-resolve",
			ResolveErrors: []walk.ResolveErrorRecord{
				{File: "/proj/node_modules/broken-resolve/index.js", Specifier: "missing-pkg", Err: errors.New("package not found")},
			},
		},
	}
	r := Generate(analyses)
	if len(r.ResolveErrors) != 1 {
		t.Fatalf("expected one resolve error, got %v", r.ResolveErrors)
	}
	if r.ResolveErrors[0].PackageName != "broken-resolve" || r.ResolveErrors[0].ImportSpecifier != "missing-pkg" {
		t.Fatalf("unexpected resolve error contents: %+v", r.ResolveErrors[0])
	}
	if len(r.ESM) != 0 || len(r.CJS) != 0 {
		t.Fatal("a package with resolve errors should not also appear in esm/cjs")
	}
}

func TestGenerateSortsFauxESMCaseInsensitively(t *testing.T) {
	analyses := []*walk.Analysis{
		{PackageName: "Zeta", TransitiveCJSDeps: map[string]bool{"dep": true}},
		{PackageName: "alpha", TransitiveCJSDeps: map[string]bool{"dep": true}},
	}
	r := Generate(analyses)
	if len(r.FauxESM.WithCommonJSDependencies) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(r.FauxESM.WithCommonJSDependencies))
	}
	if r.FauxESM.WithCommonJSDependencies[0].PackageName != "alpha" {
		t.Fatalf("expected alpha sorted first, got %v", r.FauxESM.WithCommonJSDependencies)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
