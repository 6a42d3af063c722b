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

// Package report aggregates per-package walk.Analysis results into the
// final ESM-readiness Report, applying the classification precedence and
// sort rules used to present findings to a developer.
package report

import (
	"sort"

	"golang.org/x/text/cases"

	"bennypowers.dev/esmaudit/walk"
)

// WithCommonJSDependencies names a faux-ESM package whose own entry point is
// ESM but which pulls in one or more transitive CommonJS dependencies.
type WithCommonJSDependencies struct {
	PackageName                    string   `json:"packageName"`
	TransitiveCommonJSDependencies []string `json:"transitiveCommonjsDependencies"`
}

// WithMissingJSFileExtensions names a faux-ESM package whose own entry point
// is ESM but which uses relative imports missing a file extension -
// resolvable under bundler semantics, not under native ESM resolution.
type WithMissingJSFileExtensions struct {
	PackageName                                    string   `json:"packageName"`
	TransitiveDepsWithMissingJSFileExtensions       []string `json:"transitiveDepsWithMissingJsFileExtensions"`
}

// FauxESM holds the two faux-ESM sub-buckets. A package with both a
// transitive CommonJS dependency and a missing-extension import is reported
// only under WithCommonJSDependencies, per classification precedence.
type FauxESM struct {
	WithCommonJSDependencies     []WithCommonJSDependencies     `json:"withCommonjsDependencies"`
	WithMissingJSFileExtensions  []WithMissingJSFileExtensions  `json:"withMissingJsFileExtensions"`
}

// ResolveError records a package whose import graph contained an import
// specifier that could not be resolved at all.
type ResolveError struct {
	PackageName         string `json:"packageName"`
	From                string `json:"from"`
	ImportSpecifier     string `json:"importSpecifier"`
	OriginalErrorMessage string `json:"originalErrorMessage"`
}

// ParseError records a package whose import graph contained a source file
// that could not be parsed.
type ParseError struct {
	PackageName          string `json:"packageName"`
	Path                 string `json:"path"`
	OriginalErrorMessage string `json:"originalErrorMessage"`
}

// Report is the final classification of every audited top-level dependency.
type Report struct {
	Total         int            `json:"total"`
	ESM           []string       `json:"esm"`
	CJS           []string       `json:"cjs"`
	FauxESM       FauxESM        `json:"fauxEsm"`
	ResolveErrors []ResolveError `json:"resolveErrors"`
	ParseErrors   []ParseError   `json:"parseErrors"`
}

// caseFold is used for case-insensitive package-name sorting, matching
// npm's (and Node's) treatment of package names as ASCII-ish but not
// guaranteed-lowercase identifiers.
var caseFold = cases.Fold()

// Generate classifies each analysis into exactly one Report bucket and
// returns the fully sorted Report. Each *walk.Analysis must have been
// produced for a distinct top-level dependency; order of the input slice
// does not matter, the output is deterministically sorted.
func Generate(analyses []*walk.Analysis) Report {
	report := Report{
		Total:         len(analyses),
		ESM:           []string{},
		CJS:           []string{},
		ResolveErrors: []ResolveError{},
		ParseErrors:   []ParseError{},
		FauxESM: FauxESM{
			WithCommonJSDependencies:    []WithCommonJSDependencies{},
			WithMissingJSFileExtensions: []WithMissingJSFileExtensions{},
		},
	}

	for _, a := range analyses {
		classify(&report, a)
	}

	sortReport(&report)
	return report
}

func classify(report *Report, a *walk.Analysis) {
	if len(a.ResolveErrors) > 0 {
		for _, e := range a.ResolveErrors {
			report.ResolveErrors = append(report.ResolveErrors, ResolveError{
				PackageName:          a.PackageName,
				From:                 e.File,
				ImportSpecifier:      e.Specifier,
				OriginalErrorMessage: e.Err.Error(),
			})
		}
		return
	}

	if len(a.ParseErrors) > 0 {
		for _, e := range a.ParseErrors {
			report.ParseErrors = append(report.ParseErrors, ParseError{
				PackageName:          a.PackageName,
				Path:                 e.File,
				OriginalErrorMessage: e.Err.Error(),
			})
		}
		return
	}

	// A package can have both transitive CJS deps and missing-extension
	// imports; it is reported only under WithCommonJSDependencies so it
	// never appears twice in the output.
	if !a.EntryHasCJSSyntax && len(a.TransitiveCJSDeps) > 0 {
		report.FauxESM.WithCommonJSDependencies = append(report.FauxESM.WithCommonJSDependencies, WithCommonJSDependencies{
			PackageName:                    a.PackageName,
			TransitiveCommonJSDependencies: sortedKeys(a.TransitiveCJSDeps),
		})
		return
	}

	if !a.EntryHasCJSSyntax && len(a.MissingExtensionSpecifiers) > 0 {
		report.FauxESM.WithMissingJSFileExtensions = append(report.FauxESM.WithMissingJSFileExtensions, WithMissingJSFileExtensions{
			PackageName: a.PackageName,
			TransitiveDepsWithMissingJSFileExtensions: dedupeSorted(a.MissingExtensionSpecifiers),
		})
		return
	}

	if !a.EntryHasCJSSyntax {
		report.ESM = append(report.ESM, a.PackageName)
		return
	}

	report.CJS = append(report.CJS, a.PackageName)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func sortReport(report *Report) {
	sort.Strings(report.ESM)
	sort.Strings(report.CJS)

	sort.Slice(report.FauxESM.WithCommonJSDependencies, func(i, j int) bool {
		return caseFold.String(report.FauxESM.WithCommonJSDependencies[i].PackageName) <
			caseFold.String(report.FauxESM.WithCommonJSDependencies[j].PackageName)
	})
	sort.Slice(report.FauxESM.WithMissingJSFileExtensions, func(i, j int) bool {
		return caseFold.String(report.FauxESM.WithMissingJSFileExtensions[i].PackageName) <
			caseFold.String(report.FauxESM.WithMissingJSFileExtensions[j].PackageName)
	})
	sort.Slice(report.ParseErrors, func(i, j int) bool {
		return caseFold.String(report.ParseErrors[i].PackageName) <
			caseFold.String(report.ParseErrors[j].PackageName)
	})
}
