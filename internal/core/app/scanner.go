package app

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"routelens/internal/shared/util"
)

// uniqueScanRoots normalizes, absolutizes and dedupes the configured scan
// paths. Roots nested under another root are dropped so each tree is
// walked once.
func uniqueScanRoots(paths []string) []string {
	roots := make([]string, 0, len(paths))
	seen := make(map[string]struct{})
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		roots = append(roots, abs)
	}
	sort.Strings(roots)

	// Ancestors sort before their descendants, so one pass suffices.
	pruned := make([]string, 0, len(roots))
	for _, root := range roots {
		nested := false
		for _, kept := range pruned {
			if util.HasPathPrefix(root, kept) {
				nested = true
				break
			}
		}
		if !nested {
			pruned = append(pruned, root)
		}
	}
	return pruned
}

func compileGlobs(patterns []string, kind string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// ScanWorkspace lists every supported source file under the configured
// scan paths.
func (a *App) ScanWorkspace() ([]string, error) {
	return a.ScanDirectories(a.Config.ScanPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
}

// ScanDirectories walks the given roots, prunes excluded directories,
// skips excluded files and returns the supported source files found,
// sorted and deduplicated across overlapping roots.
func (a *App) ScanDirectories(paths, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs, err := compileGlobs(excludeDirs, "exclude_dirs")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude_files")
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]struct{})
	for _, root := range uniqueScanRoots(paths) {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			base := filepath.Base(path)

			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}
			if !a.Parser.IsSupportedPath(path) {
				return nil
			}
			if _, ok := seen[path]; ok {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, path)
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("scan %s: %w", root, walkErr)
		}
	}

	sort.Strings(files)
	return files, nil
}
