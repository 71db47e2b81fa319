// Package batch runs tidy over many files with bounded concurrency.
package batch

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DirPattern is the glob applied below directory arguments.
const DirPattern = "**/*.yaml"

// Expand resolves paths, directories and glob patterns on fsys into a sorted,
// de-duplicated list of files. Literal paths are kept even when they do not
// exist so the caller reports them as missing.
func Expand(fsys afero.Fs, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, pattern := range patterns {
		info, err := fsys.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			matches, err := glob(fsys, filepath.Join(pattern, DirPattern))
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
		case err == nil:
			add(pattern)
		case hasMeta(pattern):
			matches, err := glob(fsys, pattern)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
		default:
			add(pattern)
		}
	}
	slices.Sort(files)
	return files, nil
}

// glob matches pattern below its static base directory. io/fs only accepts
// unrooted slash paths, so the base is mounted with a BasePathFs and joined
// back onto every match.
func glob(fsys afero.Fs, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	base, rel := doublestar.SplitPattern(pattern)
	root := fsys
	if base != "." {
		root = afero.NewBasePathFs(fsys, filepath.FromSlash(base))
	}
	matches, err := doublestar.Glob(afero.NewIOFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
