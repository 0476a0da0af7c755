package cli

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// fileRefPrefix marks a value that should be replaced by the contents of
// the named file.
const fileRefPrefix = "@"

// resolveFileValue substitutes @path values for file-loadable fields with
// the named file's contents, decoded as UTF-8 text. Values without the
// prefix pass through untouched, as do values for fields that are not
// marked file-loadable.
func resolveFileValue(a *arg, value string) (string, error) {
	if !a.fileLoad || !strings.HasPrefix(value, fileRefPrefix) {
		return value, nil
	}
	path := strings.TrimPrefix(value, fileRefPrefix)
	if path == "" {
		return "", ValueError{
			Field: a.displayName(),
			Value: value,
			Cause: fmt.Errorf("empty file path after %q", fileRefPrefix),
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", FileError{Path: path, Cause: err}
	}
	if !utf8.Valid(content) {
		return "", FileError{Path: path, Cause: fmt.Errorf("content is not valid UTF-8 text")}
	}
	return string(content), nil
}
