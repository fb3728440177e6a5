package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"laerad/internal/core/errors"
)

// ExpandPaths turns scan roots into the Ruby files to analyze. Directories are
// walked recursively with the exclude globs applied; explicit files are kept
// when they look like Ruby. Each root's files are sorted and duplicates across
// roots dropped.
func (a *App) ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			code := errors.CodeInternal
			if os.IsNotExist(err) {
				code = errors.CodeNotFound
			}
			return nil, errors.AddContext(errors.Wrap(err, code, "scan root"), errors.CtxPath, root)
		}

		if !info.IsDir() {
			clean := filepath.Clean(root)
			if a.analyzerRef().IsSupportedPath(clean) && !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
			continue
		}

		found, err := a.walk(root)
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

func (a *App) walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && a.excludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !a.analyzerRef().IsSupportedPath(path) || a.excludedFile(path) {
			return nil
		}
		files = append(files, filepath.Clean(path))
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk scan root"), errors.CtxPath, root)
	}
	return files, nil
}

func (a *App) excludedDir(path string) bool {
	for _, g := range a.excludeDirs {
		if g.match(path) {
			return true
		}
	}
	return false
}

func (a *App) excludedFile(path string) bool {
	for _, g := range a.excludeFiles {
		if g.match(path) {
			return true
		}
	}
	return false
}
