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
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Specifier is a single import/require specifier found in a module, with
// its source line for diagnostics.
type Specifier struct {
	Text      string
	Line      int
	IsDynamic bool
	IsRequire bool
}

// ParsedModule is the result of parsing a single source file: every
// specifier it references, and whether it contains syntactic evidence of
// CommonJS authoring (module.exports, exports.x, or a require call).
type ParsedModule struct {
	Specifiers []Specifier
	HasCJSSyntax bool
}

// ParseModule parses JavaScript/TypeScript source and extracts both its
// import/require specifiers and whether it exhibits CommonJS syntax.
// Detection is purely syntactic (no scope or binding analysis): any
// lexical match of module.exports, exports.<name>, require(...), or
// require.resolve(...) counts, matching how CommonJS interop shims
// themselves detect CJS modules at runtime.
func ParseModule(content []byte) (*ParsedModule, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getParser()
	defer putParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse module")
	}
	defer tree.Close()

	result := &ParsedModule{}

	importsQuery, err := qm.Query("imports")
	if err != nil {
		return nil, err
	}
	result.Specifiers = extractSpecifiers(importsQuery, tree.RootNode(), content)

	cjsQuery, err := qm.Query("cjs")
	if err != nil {
		return nil, err
	}
	result.HasCJSSyntax = matchesAny(cjsQuery, tree.RootNode(), content)

	return result, nil
}

func extractSpecifiers(query *ts.Query, root *ts.Node, content []byte) []Specifier {
	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	var specs []Specifier
	captureNames := query.CaptureNames()
	matches := cursor.Matches(query, root, content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			text := capture.Node.Utf8Text(content)
			line := int(capture.Node.StartPosition().Row) + 1

			switch name {
			case "import.spec":
				specs = append(specs, Specifier{Text: text, Line: line})
			case "reexport.spec":
				specs = append(specs, Specifier{Text: text, Line: line})
			case "dynamicImport.spec":
				specs = append(specs, Specifier{Text: text, Line: line, IsDynamic: true})
			case "require.spec":
				specs = append(specs, Specifier{Text: text, Line: line, IsRequire: true})
			}
		}
	}
	return specs
}

func matchesAny(query *ts.Query, root *ts.Node, content []byte) bool {
	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, content)
	return matches.Next() != nil
}
