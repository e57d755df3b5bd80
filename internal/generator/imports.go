package generator

import (
	"fmt"
	"go/token"
	"path"
	"sort"
	"strings"
	"unicode"
)

// Import is one aliased import of the generated file
type Import struct {
	Alias string
	Path  string
}

// ImportManager hands out collision-free aliases for import paths
type ImportManager struct {
	byPath  map[string]string // path -> alias
	taken   map[string]bool
	imports []Import
}

// NewImportManager creates an import manager with the given aliases reserved
func NewImportManager(reserved ...string) *ImportManager {
	im := &ImportManager{
		byPath: make(map[string]string),
		taken:  make(map[string]bool),
	}
	for _, r := range reserved {
		im.taken[r] = true
	}
	return im
}

// Alias returns the alias for importPath, registering it on first use.
// Paths sharing a last element get numbered aliases: service, service2.
func (im *ImportManager) Alias(importPath string) string {
	if alias, ok := im.byPath[importPath]; ok {
		return alias
	}

	base := sanitizeIdent(path.Base(importPath))
	alias := base
	for n := 2; im.taken[alias]; n++ {
		alias = fmt.Sprintf("%s%d", base, n)
	}

	im.taken[alias] = true
	im.byPath[importPath] = alias
	im.imports = append(im.imports, Import{Alias: alias, Path: importPath})
	return alias
}

// Imports returns the registered imports sorted by path
func (im *ImportManager) Imports() []Import {
	out := append([]Import(nil), im.imports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// sanitizeIdent turns a path element such as "my-pkg.v2" into "mypkgv2"
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "pkg" + id
	}
	id = strings.ToLower(id)
	if token.IsKeyword(id) {
		id += "pkg"
	}
	return id
}
