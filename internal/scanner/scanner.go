// Package scanner is the file orchestrator: it discovers mapper files under
// a root directory, runs the rewrite engine over each one and writes
// changed files back in place, collecting every modified line into a
// report.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Discover walks root and returns every file whose lower-cased name ends in
// one of exts (e.g. ".xml"). Directories whose base name appears in exclude
// are pruned at any depth, matching build-output conventions like target/
// and build/. The walk is lexical, so the result order is deterministic.
func Discover(root string, exclude []string, exts []string) ([]string, error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		if name = strings.TrimSpace(name); name != "" {
			excluded[name] = struct{}{}
		}
	}
	suffixes := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		suffixes = append(suffixes, ext)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				if _, skip := excluded[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}
