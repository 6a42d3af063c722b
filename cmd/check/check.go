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

// Package check provides the check command for mappa: auditing a project's
// installed dependency tree for ESM/CommonJS readiness.
package check

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/internal/output"
	"bennypowers.dev/esmaudit/packagejson"
	"bennypowers.dev/esmaudit/report"
	"bennypowers.dev/esmaudit/resolve"
	"bennypowers.dev/esmaudit/walk"
)

// Cmd is the check cobra command that audits a project's node_modules tree
// for ESM/CommonJS readiness.
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Audit installed dependencies for ESM/CommonJS readiness",
	Long: `Audit a project's installed node_modules dependency tree, classifying
each top-level dependency as true ESM, CommonJS, faux-ESM (an ESM entry
point with transitive CommonJS dependencies or missing-extension relative
imports), or a structured resolve/parse error.`,
	Example: `  # Audit the current project
  mappa check

  # Audit a different project, writing the report to a file
  mappa check --package-json-location ../other-project --outfile report.json

  # Fail the command (exit 1) if any dependency is not pure ESM
  mappa check --check '*'

  # Fail only if react-dom or any @scope/* package is not pure ESM
  mappa check --check 'react-dom,@scope/*'

  # Limit concurrency
  mappa check --jobs 4`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("package-json-location", ".", "Directory containing the package.json to audit")
	Cmd.Flags().String("outfile", "", "Write the report to this file instead of stdout")
	Cmd.Flags().String("check", "", "Comma-separated glob patterns of dependency names; exit non-zero if any matched dependency is not pure ESM")
	Cmd.Flags().Int("jobs", 0, "Maximum concurrent dependency walks (default: number of CPUs)")

	_ = viper.BindPFlag("package-json-location", Cmd.Flags().Lookup("package-json-location"))
	_ = viper.BindPFlag("outfile", Cmd.Flags().Lookup("outfile"))
	_ = viper.BindPFlag("check", Cmd.Flags().Lookup("check"))
	_ = viper.BindPFlag("jobs", Cmd.Flags().Lookup("jobs"))
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("package-json-location"))
	if err != nil {
		return fmt.Errorf("invalid package-json-location: %w", err)
	}

	pkg, err := packagejson.ParseFile(osfs, filepath.Join(absRoot, "package.json"))
	if err != nil {
		return fmt.Errorf("reading package.json: %w", err)
	}

	workspaceRoot := resolve.FindWorkspaceRoot(osfs, absRoot)
	nodeModulesDir := filepath.Join(workspaceRoot, "node_modules")

	deps := collectDependencies(osfs, nodeModulesDir, pkg)

	resolver := resolve.New(osfs, nil, nil)
	results, err := walk.Batch(context.Background(), osfs, resolver, deps.found, walk.BatchOptions{
		Jobs: viper.GetInt("jobs"),
	})
	if err != nil {
		return fmt.Errorf("walking dependencies: %w", err)
	}

	for _, missing := range deps.missing {
		results = append(results, &walk.Analysis{
			PackageName: missing,
			ResolveErrors: []walk.ResolveErrorRecord{{
				File:      nodeModulesDir,
				Specifier: missing,
				Err:       fmt.Errorf("declared dependency %q is not installed under node_modules", missing),
			}},
		})
	}

	rep := report.Generate(results)

	if outfile := viper.GetString("outfile"); outfile != "" {
		viper.Set("output", outfile)
	}
	if err := output.Report(osfs, rep); err != nil {
		return err
	}

	if checkFlag := viper.GetString("check"); checkFlag != "" {
		patterns := splitCheckPatterns(checkFlag)
		failing, err := nonESMMatching(rep, patterns)
		if err != nil {
			return fmt.Errorf("invalid --check pattern: %w", err)
		}
		if len(failing) > 0 {
			sort.Strings(failing)
			return fmt.Errorf("%d dependencies matching --check %q are not pure ESM: %s",
				len(failing), checkFlag, strings.Join(failing, ", "))
		}
	}
	return nil
}

// splitCheckPatterns splits a comma-separated --check flag value into
// trimmed, non-empty glob patterns.
func splitCheckPatterns(flag string) []string {
	parts := strings.Split(flag, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// nonESMMatching returns the names, among rep's non-pure-ESM dependencies,
// that match at least one of patterns (doublestar glob syntax, so "@scope/*"
// and "**" work as expected against scoped package names).
func nonESMMatching(rep report.Report, patterns []string) ([]string, error) {
	var failing []string
	for _, name := range allNonESMPackageNames(rep) {
		for _, pattern := range patterns {
			matched, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, err
			}
			if matched {
				failing = append(failing, name)
				break
			}
		}
	}
	return failing, nil
}

// allNonESMPackageNames collects the names of every dependency the report
// did not classify as pure ESM: CJS, both faux-ESM buckets, and both error
// buckets.
func allNonESMPackageNames(rep report.Report) []string {
	names := append([]string{}, rep.CJS...)
	for _, entry := range rep.FauxESM.WithCommonJSDependencies {
		names = append(names, entry.PackageName)
	}
	for _, entry := range rep.FauxESM.WithMissingJSFileExtensions {
		names = append(names, entry.PackageName)
	}
	for _, entry := range rep.ResolveErrors {
		names = append(names, entry.PackageName)
	}
	for _, entry := range rep.ParseErrors {
		names = append(names, entry.PackageName)
	}
	return names
}

type dependencySet struct {
	found   []walk.Dependency
	missing []string
}

// collectDependencies resolves each name in pkg.Dependencies to a directory
// under nodeModulesDir, in sorted order for deterministic walk scheduling.
func collectDependencies(fsys fs.FileSystem, nodeModulesDir string, pkg *packagejson.PackageJSON) dependencySet {
	names := make([]string, 0, len(pkg.Dependencies))
	for name := range pkg.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var set dependencySet
	for _, name := range names {
		dir := filepath.Join(nodeModulesDir, name)
		if stat, err := fsys.Stat(dir); err == nil && stat.IsDir() {
			set.found = append(set.found, walk.Dependency{Name: name, Dir: dir})
			continue
		}
		set.missing = append(set.missing, name)
	}
	return set
}
