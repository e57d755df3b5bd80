package utils

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ParseModuleName extracts the module path from a go.mod file
func ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	return ModulePathFromContent(cleanPath, content)
}

// ModulePathFromContent parses go.mod content with the official modfile parser
func ModulePathFromContent(name string, content []byte) (string, error) {
	modFile, err := modfile.ParseLax(name, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod starting from startDir and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// ResolveImportPath returns the Go import path of dir, which must live
// inside the module that owns the nearest go.mod above it.
func ResolveImportPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	goModPath, err := FindGoModFile(absDir)
	if err != nil {
		return "", err
	}

	modulePath, err := ParseModuleName(goModPath)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(filepath.Dir(goModPath), absDir)
	if err != nil {
		return "", err
	}

	return JoinImportPath(modulePath, filepath.ToSlash(rel)), nil
}

// JoinImportPath appends a slash-separated relative directory to a module path
func JoinImportPath(modulePath, rel string) string {
	rel = strings.Trim(path.Clean("/"+rel), "/")
	if rel == "" {
		return modulePath
	}
	return modulePath + "/" + rel
}

// ReadPackageName parses only the package clause of a Go file
func ReadPackageName(filename string) (string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return f.Name.Name, nil
}
