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

import "fmt"

// PackageNotFoundError is returned when a bare specifier's package cannot
// be located anywhere along the node_modules ancestor chain.
type PackageNotFoundError struct {
	PackageName string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found in any node_modules", e.PackageName)
}

// SubpathNotExportedError is returned when a package declares an exports
// field but the requested subpath is not listed in it.
type SubpathNotExportedError struct {
	PackageName string
	Subpath     string
}

func (e *SubpathNotExportedError) Error() string {
	return fmt.Sprintf("package %q does not export subpath %q", e.PackageName, e.Subpath)
}

// NoConditionMatchError is returned when a conditional exports/imports map
// has no entry for any condition in the caller's condition list.
type NoConditionMatchError struct {
	PackageName string
	Subpath     string
	Conditions  []string
}

func (e *NoConditionMatchError) Error() string {
	return fmt.Sprintf("package %q subpath %q matches none of conditions %v", e.PackageName, e.Subpath, e.Conditions)
}

// FileNotFoundError is returned when a resolved path (after trying implicit
// extensions and index files) does not exist on disk.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// PeerDependencyNotInstalledError is returned when a package imports an
// optional peer dependency that is not installed. Callers that recognize
// this error type (via errors.As) typically skip it rather than treat it
// as a hard resolve failure, since optional peers are allowed to be absent.
type PeerDependencyNotInstalledError struct {
	PackageName string
}

func (e *PeerDependencyNotInstalledError) Error() string {
	return fmt.Sprintf("optional peer dependency %q is not installed", e.PackageName)
}

// MissingExtensionError is returned when a relative specifier (or a package
// entry target) has no extension and implicit-extension probing is disabled,
// as in the strict-esm preset. The walker records extensionless relative
// specifiers itself under every preset, so it does not depend on this error.
type MissingExtensionError struct {
	Specifier string
}

func (e *MissingExtensionError) Error() string {
	return fmt.Sprintf("relative import %q has no file extension", e.Specifier)
}
