package indexer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// alwaysSkipped directories are never descended into
var alwaysSkipped = []string{".git", "node_modules", "dist", "build"}

// DefaultIgnoreDirs are site-generator directories that hold no prose
var DefaultIgnoreDirs = []string{
	"themes",
	"exampleSite",
	"archetypes",
	".github",
	".devcontainer",
	"static",
	"resources",
	"public",
}

var docExtensions = map[string]bool{".md": true, ".mdx": true}

// Discover walks root and returns every markdown or MDX file in lexical
// order. Entries whose name starts with an underscore are skipped, as are
// the always-skipped directories and those named in ignore.
func Discover(root string, ignore []string) ([]string, error) {
	skip := make(map[string]bool, len(alwaysSkipped)+len(ignore))
	for _, name := range alwaysSkipped {
		skip[name] = true
	}
	for _, name := range ignore {
		skip[name] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (skip[name] || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, "_") {
			return nil
		}
		if docExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return files, nil
}
