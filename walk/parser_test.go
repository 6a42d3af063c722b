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

import "testing"

func TestParseModuleExtractsStaticImportSpecifier(t *testing.T) {
	src := []byte(`import { foo } from "./foo.js";`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Specifiers) != 1 || parsed.Specifiers[0].Text != "./foo.js" {
		t.Fatalf("expected one specifier ./foo.js, got %v", parsed.Specifiers)
	}
	if parsed.HasCJSSyntax {
		t.Fatal("static import should not be flagged as CJS")
	}
}

func TestParseModuleExtractsReexportSpecifier(t *testing.T) {
	src := []byte(`export { foo } from "./foo.js";`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Specifiers) != 1 || parsed.Specifiers[0].Text != "./foo.js" {
		t.Fatalf("expected one re-export specifier ./foo.js, got %v", parsed.Specifiers)
	}
}

func TestParseModuleExtractsDynamicImport(t *testing.T) {
	src := []byte(`async function load() { return import("./lazy.js"); }`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Specifiers) != 1 || !parsed.Specifiers[0].IsDynamic || parsed.Specifiers[0].Text != "./lazy.js" {
		t.Fatalf("expected one dynamic specifier ./lazy.js, got %v", parsed.Specifiers)
	}
}

func TestParseModuleDetectsModuleExportsAssignment(t *testing.T) {
	src := []byte(`module.exports = { run() { return 1; } };`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if !parsed.HasCJSSyntax {
		t.Fatal("expected module.exports assignment to be detected as CJS")
	}
}

func TestParseModuleDetectsExportsPropertyAssignment(t *testing.T) {
	src := []byte(`exports.run = function () { return 1; };`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if !parsed.HasCJSSyntax {
		t.Fatal("expected exports.x assignment to be detected as CJS")
	}
}

func TestParseModuleDetectsRequireCall(t *testing.T) {
	src := []byte(`const fs = require("fs");`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if !parsed.HasCJSSyntax {
		t.Fatal("expected require() call to be detected as CJS")
	}
	if len(parsed.Specifiers) != 1 || !parsed.Specifiers[0].IsRequire || parsed.Specifiers[0].Text != "fs" {
		t.Fatalf("expected one require specifier fs, got %v", parsed.Specifiers)
	}
}

func TestParseModulePureESMHasNoCJSSyntax(t *testing.T) {
	src := []byte(`
export const value = 1;
export default function run() { return value; }
`)
	parsed, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if parsed.HasCJSSyntax {
		t.Fatal("pure ESM module should not be flagged as CJS")
	}
	if len(parsed.Specifiers) != 0 {
		t.Fatalf("expected no specifiers, got %v", parsed.Specifiers)
	}
}
