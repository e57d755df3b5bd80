package utils

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"

	"golang.org/x/tools/imports"
)

// FormatGoCode gofmts source and fixes its import block
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		// Report the syntax error rather than the formatter's summary
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
		}
		return source, err
	}
	return formatted, nil
}

// FormatAndWriteGoFile formats Go code and writes it to a file
func FormatAndWriteGoFile(filename string, code []byte) error {
	formatted, err := FormatGoCode(filename, code)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, formatted, 0644)
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
