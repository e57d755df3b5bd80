package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toyz/handspring/internal/utils"
)

// ModuleResolver resolves the import path of the scanned root
type ModuleResolver struct{}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{}
}

// ResolveImportPath returns the import path of dir. customModule, when set,
// is taken as the import path of dir itself.
func (r *ModuleResolver) ResolveImportPath(customModule, dir string) (string, error) {
	if customModule != "" {
		return customModule, nil
	}

	importPath, err := utils.ResolveImportPath(dir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module path: %w (consider using -module)", err)
	}
	return importPath, nil
}

// PackageName returns the package clause shared by the Go files in dir, or
// fallback when the directory holds none
func (r *ModuleResolver) PackageName(dir, fallback string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() || !utils.IsSourceFile(entry.Name()) {
			continue
		}
		name, err := utils.ReadPackageName(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		return name, nil
	}
	return fallback, nil
}
