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
package resolve_test

import (
	"errors"
	"testing"

	"bennypowers.dev/esmaudit/internal/mapfs"
	"bennypowers.dev/esmaudit/resolve"
)

func newFS() *mapfs.MapFileSystem {
	mfs := mapfs.New()
	mfs.AddFile("/proj/node_modules/pkg/package.json", `{
		"name": "pkg",
		"exports": {
			".": "./index.js",
			"./button": "./lib/button.js",
			"./feature/*": "./dist/feature/*.js"
		}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/pkg/index.js", "export default 1;", 0644)
	mfs.AddFile("/proj/node_modules/pkg/lib/button.js", "export default 2;", 0644)
	mfs.AddFile("/proj/node_modules/pkg/dist/feature/one.js", "export default 3;", 0644)

	mfs.AddFile("/proj/node_modules/legacy/package.json", `{"name": "legacy", "main": "./main.js"}`, 0644)
	mfs.AddFile("/proj/node_modules/legacy/main.js", "module.exports = {};", 0644)

	mfs.AddFile("/proj/node_modules/noext/package.json", `{
		"name": "noext",
		"exports": {".": "./index"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/noext/index.js", "export default 1;", 0644)

	mfs.AddFile("/proj/src/index.js", "import 'pkg';", 0644)
	mfs.AddFile("/proj/src/utils.js", "export const x = 1;", 0644)
	return mfs
}

func TestResolveBarePackageRoot(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("pkg", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/pkg/index.js" {
		t.Errorf("got %q", got)
	}
}

func TestResolveSubpathExport(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("pkg/button", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/pkg/lib/button.js" {
		t.Errorf("got %q", got)
	}
}

func TestResolveWildcardExport(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("pkg/feature/one", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/pkg/dist/feature/one.js" {
		t.Errorf("got %q", got)
	}
}

func TestResolveMainFallback(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("legacy", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/legacy/main.js" {
		t.Errorf("got %q", got)
	}
}

func TestResolveRelativeImplicitExtension(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("./utils", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/src/utils.js" {
		t.Errorf("got %q", got)
	}
}

func TestResolveRelativeMissingExtensionStrict(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil).WithOptions(resolve.StrictESMPreset())

	_, err := r.Resolve("./utils", "/proj/src/index.js", nil)
	var missing *resolve.MissingExtensionError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingExtensionError, got %v", err)
	}
}

func TestResolvePackageNotFound(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	_, err := r.Resolve("nonexistent", "/proj/src/index.js", nil)
	var notFound *resolve.PackageNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PackageNotFoundError, got %v", err)
	}
}

func TestResolveRelativeRewritesToSiblingNamedPackage(t *testing.T) {
	fsys := newFS()
	fsys.AddFile("/proj/vendor/shared/package.json", `{"name":"shared-real"}`, 0644)
	fsys.AddFile("/proj/node_modules/shared-real/package.json", `{"name":"shared-real","main":"./index.js"}`, 0644)
	fsys.AddFile("/proj/node_modules/shared-real/index.js", "export default 4;", 0644)

	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("../vendor/shared", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/shared-real/index.js" {
		t.Errorf("expected the relative import to rewrite to the sibling directory's package name and resolve via node_modules, got %q", got)
	}
}

func TestResolveExportsWithNoExtensionInTarget(t *testing.T) {
	fsys := newFS()
	r := resolve.New(fsys, nil, nil)

	got, err := r.Resolve("noext", "/proj/src/index.js", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "/proj/node_modules/noext/index.js" {
		t.Errorf("got %q", got)
	}
}
