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

// DefaultPreset mirrors how Node.js itself resolves a package under the
// "import" condition: implicit extensions and index files are allowed,
// optional peer dependencies are tolerated, and packages without an
// exports field may expose pseudo-namespaced subpackages as plain files.
func DefaultPreset() Options {
	return Options{
		Conditions:       []string{"import", "module", "default"},
		Extensions:       DefaultExtensions,
		Indexes:          DefaultIndexes,
		ImplicitFiles:    true,
		OptionalPeerGate: true,
		PseudoNamespace:  true,
	}
}

// TypeScriptPreset extends DefaultPreset with TypeScript source and
// declaration extensions, a "types" condition consulted last (after
// "default", mirroring how tsc's own resolver treats "types" as a
// lowest-priority hint rather than a real runtime condition), and the
// dedicated "types" exports-like field as the last step of the fallback
// chain for packages without an exports field, consulted after
// module/browser/main. A package that declares exports never reaches it.
func TypeScriptPreset() Options {
	return Options{
		Conditions:       []string{"import", "module", "default", "types"},
		Extensions:       TypeScriptExtensions,
		Indexes:          TypeScriptIndexes,
		ImplicitFiles:    true,
		OptionalPeerGate: true,
		PseudoNamespace:  true,
		TypesField:       true,
	}
}

// StrictESMPreset disables every forgiving fallback: no implicit
// extensions, no implicit index files, no optional-peer tolerance, and no
// pseudo-namespace fallback. A package must publish exact, fully
// extensioned targets to resolve under this preset; an extensionless
// relative import fails with MissingExtensionError.
func StrictESMPreset() Options {
	return Options{
		Conditions:       []string{"import", "default"},
		Extensions:       nil,
		Indexes:          nil,
		ImplicitFiles:    false,
		OptionalPeerGate: false,
		PseudoNamespace:  false,
	}
}
