package template

import (
	"errors"
	"fmt"
	"os"
)

// ErrTemplateNotFound is returned by LoadTemplateStrict
var ErrTemplateNotFound = errors.New("template not found")

// LoadTemplate reads template text from path. Missing or unreadable files
// yield an empty template rather than an error.
func LoadTemplate(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// LoadTemplateStrict reads template text from path and reports missing or
// unreadable files as ErrTemplateNotFound.
func LoadTemplateStrict(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, path, err)
	}
	return string(data), nil
}
