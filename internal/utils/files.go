package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GeneratedFileName is the catalog file written by the generator
const GeneratedFileName = "autogen_catalog.go"

// IsSourceFile reports whether name is a Go compilation unit the scanner reads:
// .go files excluding tests and generated catalogs.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!IsGeneratedFile(name)
}

// IsGeneratedFile reports whether name is a generated catalog file
func IsGeneratedFile(name string) bool {
	return strings.HasPrefix(name, "autogen_") && strings.HasSuffix(name, ".go")
}

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
	"build":        true,
	"dist":         true,
	"target":       true,
}

// SkipDirectory reports whether a directory never contains scannable source
func SkipDirectory(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	return skipDirs[name]
}

// CleanGeneratedFiles removes every generated catalog below root and returns the removed paths
func CleanGeneratedFiles(root string) ([]string, error) {
	var removed []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped
			return nil
		}
		if d.IsDir() {
			if path != root && SkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsGeneratedFile(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed = append(removed, path)
		return nil
	})

	return removed, err
}
