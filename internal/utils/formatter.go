package utils

import (
	"fmt"
	"go/parser"
	"go/token"

	"golang.org/x/tools/imports"
)

// FormatGoCode gofmt-formats source and prunes unused imports. filename is
// used for error messages and to resolve the package's own imports.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return nil, describeFormatError(filename, source, err)
	}
	return formatted, nil
}

// FormatGoCodeString is FormatGoCode for strings. On failure the
// unformatted source is returned along with the error.
func FormatGoCodeString(filename, source string) (string, error) {
	formatted, err := FormatGoCode(filename, []byte(source))
	if err != nil {
		return source, err
	}
	return string(formatted), nil
}

func describeFormatError(filename string, source []byte, err error) error {
	if _, parseErr := parser.ParseFile(token.NewFileSet(), filename, source, parser.AllErrors); parseErr != nil {
		return fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
	}
	return err
}
