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
	"strings"

	"bennypowers.dev/esmaudit/packagejson"
)

// matchExport finds the exports/imports subpath entry that matches
// requested, trying an exact match first, then wildcard ("./*"-style)
// keys. Multiple wildcard matches are broken by longest literal prefix
// (Node.js's own tie-break rule, adopted here since the matching algorithm
// this was ported from otherwise left the order unspecified), then by the
// longer key, then by the lexically smaller key, so the winner never
// depends on map iteration order.
//
// A wildcard key may contain more than one "*"; each "*" captures a
// substring of requested, and captures are substituted back into the
// target template left to right, one capture per "*", matching the
// semantics of repeatedly replacing the first remaining "*" in the target.
func matchExport(subpaths map[string]packagejson.ExportsLikeField, requested string) (packagejson.ExportsLikeField, bool) {
	if exact, ok := subpaths[requested]; ok {
		return exact, true
	}

	var bestKey string
	var bestCaptures []string
	found := false

	for key := range subpaths {
		if !strings.Contains(key, "*") {
			continue
		}
		captures, ok := matchWildcardKey(key, requested)
		if !ok {
			continue
		}
		prefix, bestPrefix := literalPrefixLen(key), literalPrefixLen(bestKey)
		if !found || prefix > bestPrefix ||
			(prefix == bestPrefix && (len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey))) {
			bestKey = key
			bestCaptures = captures
			found = true
		}
	}

	if !found {
		return packagejson.ExportsLikeField{}, false
	}

	return substituteCaptures(subpaths[bestKey], bestCaptures), true
}

// literalPrefixLen returns the length of the key's literal text before its
// first wildcard, used to break ties between multiple matching patterns.
func literalPrefixLen(key string) int {
	if idx := strings.Index(key, "*"); idx >= 0 {
		return idx
	}
	return len(key)
}

// matchWildcardKey checks whether requested matches a key containing one or
// more "*" wildcards, returning the captured substrings in order.
func matchWildcardKey(key, requested string) ([]string, bool) {
	parts := strings.Split(key, "*")
	var captures []string

	rest := requested
	for i, part := range parts {
		if i == len(parts)-1 {
			if part == "" {
				// Trailing "*": the whole remainder is the last capture.
				return append(captures, rest), true
			}
			// rest starts at this fragment's earliest occurrence; nothing
			// may follow it.
			if rest != part {
				return nil, false
			}
			return captures, true
		}

		if !strings.HasPrefix(rest, part) {
			return nil, false
		}
		rest = rest[len(part):]

		next := parts[i+1]
		if next == "" {
			continue
		}
		idx := strings.Index(rest, next)
		if idx < 0 {
			return nil, false
		}
		captures = append(captures, rest[:idx])
		rest = rest[idx:]
	}
	return captures, true
}

// substituteCaptures replaces each "*" in value's leaf strings with the
// corresponding capture, left to right, recursing into conditional maps.
func substituteCaptures(value packagejson.ExportsLikeField, captures []string) packagejson.ExportsLikeField {
	switch value.Kind {
	case packagejson.FieldFilename:
		return packagejson.ExportsLikeField{
			Kind:     packagejson.FieldFilename,
			Filename: substituteOne(value.Filename, captures),
		}
	case packagejson.FieldConditional:
		entries := make([]packagejson.ConditionEntry, len(value.Conditions))
		for i, c := range value.Conditions {
			entries[i] = packagejson.ConditionEntry{Name: c.Name, Value: substituteCaptures(c.Value, captures)}
		}
		return packagejson.ExportsLikeField{Kind: packagejson.FieldConditional, Conditions: entries}
	default:
		return value
	}
}

func substituteOne(template string, captures []string) string {
	result := template
	for _, c := range captures {
		result = strings.Replace(result, "*", c, 1)
	}
	return result
}
