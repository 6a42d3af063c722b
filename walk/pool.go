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
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"bennypowers.dev/esmaudit/fs"
	"bennypowers.dev/esmaudit/packagejson"
	"bennypowers.dev/esmaudit/resolve"
)

// Dependency identifies a single top-level dependency to audit: its
// declared name and the directory its package.json lives in.
type Dependency struct {
	Name string
	Dir  string
}

// BatchOptions configures a parallel batch walk.
type BatchOptions struct {
	// Jobs is the maximum number of dependencies walked concurrently.
	// Defaults to runtime.NumCPU() when <= 0.
	Jobs int
}

// Batch walks every dependency in deps concurrently, sharing a single
// package.json cache and module-parse cache across all workers so that
// common transitive dependencies are only parsed once. It returns one
// Analysis per input Dependency, in the same order, or the first error
// encountered resolving a top-level entry point (a configuration problem,
// not a per-package classification outcome - those are recorded inside
// each Analysis instead of failing the batch).
func Batch(ctx context.Context, fsys fs.FileSystem, resolver *resolve.Resolver, deps []Dependency, opts BatchOptions) ([]*Analysis, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	pkgCache := packagejson.NewMemoryCache()
	modCache := newModuleCache()

	results := make([]*Analysis, len(deps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, dep := range deps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			entry, err := resolver.ResolveEntry(dep.Dir)
			if err != nil {
				return fmt.Errorf("resolving entry point for %s: %w", dep.Name, err)
			}

			w := &Walker{fs: fsys, resolver: resolver, pkgCache: pkgCache, modCache: modCache}
			results[i] = w.WalkPackage(dep.Name, dep.Dir, entry)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
