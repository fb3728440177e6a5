package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	ProjectName string
	HistoryPath string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := strings.TrimSpace(cfg.ProjectRoot)
	if projectRoot != "" {
		projectRoot = ResolveRelative(cwd, projectRoot)
	} else {
		root, err := DetectProjectRoot(append(append([]string(nil), cfg.Paths...), cwd))
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	name := cfg.History.Project
	if name == "" {
		name = filepath.Base(projectRoot)
	}

	return ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		ProjectName: name,
		HistoryPath: ResolveRelative(projectRoot, cfg.History.Path),
	}, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate to the first directory that
// looks like a Ruby project root, falling back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		"Gemfile",
		".git",
		DefaultFile,
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
