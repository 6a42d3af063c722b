//go:build js && wasm

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

// Package main provides the WASM entry point for mappa: a thin foreign
// binding around the same check pipeline the CLI uses, for embedding in a
// Node.js host.
package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"syscall/js"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/packagejson"
	"bennypowers.dev/esmaudit/report"
	"bennypowers.dev/esmaudit/resolve"
	"bennypowers.dev/esmaudit/walk"
)

// Version is the mappa WASM version.
const Version = "0.1.0"

func main() {
	mappa := make(map[string]any)
	mappa["check"] = js.FuncOf(check)
	mappa["version"] = Version

	js.Global().Set("mappa", js.ValueOf(mappa))

	select {}
}

// check is the WASM entry point for auditing a project's dependencies.
// Arguments:
//   - packageJSONLocation: string - directory containing the package.json
//     to audit, as seen by the host's filesystem
//
// Returns a Promise that resolves to the audit report as a JSON string.
func check(this js.Value, args []js.Value) any {
	handler := js.FuncOf(func(this js.Value, promiseArgs []js.Value) any {
		resolveFn := promiseArgs[0]
		reject := promiseArgs[1]

		go func() {
			result, err := doCheck(args)
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolveFn.Invoke(result)
		}()

		return nil
	})

	promise := js.Global().Get("Promise").New(handler)
	handler.Release()
	return promise
}

func doCheck(args []js.Value) (string, error) {
	if len(args) < 1 {
		return "", &jsError{message: "check requires the package.json directory as its first argument"}
	}

	absRoot := args[0].String()
	osfs := fs.NewOSFileSystem()

	pkg, err := packagejson.ParseFile(osfs, filepath.Join(absRoot, "package.json"))
	if err != nil {
		return "", &jsError{message: "failed to read package.json: " + err.Error()}
	}

	workspaceRoot := resolve.FindWorkspaceRoot(osfs, absRoot)
	nodeModulesDir := filepath.Join(workspaceRoot, "node_modules")

	names := make([]string, 0, len(pkg.Dependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var deps []walk.Dependency
	for _, name := range names {
		dir := filepath.Join(nodeModulesDir, name)
		if osfs.Exists(dir) {
			deps = append(deps, walk.Dependency{Name: name, Dir: dir})
		}
	}

	resolver := resolve.New(osfs, nil, nil)
	results, err := walk.Batch(context.Background(), osfs, resolver, deps, walk.BatchOptions{})
	if err != nil {
		return "", &jsError{message: "failed to walk dependencies: " + err.Error()}
	}

	rep := report.Generate(results)

	jsonBytes, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", &jsError{message: "failed to serialize report: " + err.Error()}
	}

	return string(jsonBytes), nil
}

// jsError represents an error to be returned to JavaScript.
type jsError struct {
	message string
}

func (e *jsError) Error() string {
	return e.message
}
