// Package selector discovers candidate pricing files and resolves explicit
// file lists against the filesystem.
package selector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Options configures candidate discovery
type Options struct {
	// Dir is the directory to scan (non-recursive)
	Dir string
	// Extensions is a list of file extensions to include (e.g., ".json", ".yaml")
	Extensions []string
	// Keywords are substrings matched against filenames; empty matches every file
	Keywords []string
}

// Discover lists the regular files directly inside opts.Dir whose extension
// is recognized and whose name contains at least one keyword. Matching is a
// case-sensitive substring test, OR across keywords. Results are sorted
// lexicographically.
func Discover(opts Options) ([]string, error) {
	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", opts.Dir)
	}

	// Extension map for fast lookup, extensions normalized to .lower
	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if len(opts.Keywords) > 0 && !matchesAnyKeyword(name, opts.Keywords) {
			continue
		}
		files = append(files, filepath.Join(opts.Dir, name))
	}

	// Sort for consistent output
	sort.Strings(files)

	return files, nil
}

func matchesAnyKeyword(name string, keywords []string) bool {
	return lo.SomeBy(keywords, func(keyword string) bool {
		return strings.Contains(name, keyword)
	})
}

// FilterExisting splits paths into those present on disk and those that do
// not exist. Order is preserved within each list.
func FilterExisting(paths []string) (existing, missing []string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
			continue
		}
		existing = append(existing, path)
	}
	return existing, missing
}
