package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/JonMunkholm/lasfile/internal/las"
	"github.com/JonMunkholm/lasfile/internal/lasio"
)

// expandPatterns resolves file arguments. Patterns may use ** for recursive
// matches; arguments without glob characters are kept as given so a missing
// file surfaces as an open error.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// isLASFile reports whether path has a .las extension.
func isLASFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".las")
}

// openFile loads path, treating open and read failures as errors.
func (a *app) openFile(path string) (*las.File, error) {
	opts, err := a.loadOptions()
	if err != nil {
		return nil, err
	}
	f := lasio.Open(path, opts)
	if err := f.OpenError(); err != nil {
		return nil, err
	}
	if err := f.ReadError(); err != nil {
		return nil, err
	}
	return f, nil
}
