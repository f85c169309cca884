package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks a line that could not be turned into a record.
	ErrParse = errors.New("parse failure")

	// ErrFieldCount marks a tabular row whose width differs from the layout.
	ErrFieldCount = errors.New("field count does not match column layout")

	// ErrLayout marks an unusable column layout.
	ErrLayout = errors.New("invalid column layout")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown data format")
)

// Format selects how input lines are parsed
type Format string

const (
	// FormatJSON parses each line as a JSON value
	FormatJSON Format = "json"

	// FormatXSV parses each line as delimited fields
	FormatXSV Format = "xsv"
)

// String returns the format name.
func (f Format) String() string { return string(f) }

// ParseFormat parses a format name. "csv" is accepted as an alias of xsv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "xsv", "csv", "tsv", "delimited":
		return FormatXSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParseJSON parses a line as a single JSON value. Objects decode to
// map[string]any, numbers to float64.
func ParseJSON(line string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(line), &value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return value, nil
}
