package record

import (
	"fmt"
	"strings"
)

// Tabular parses delimited rows against a column layout.
type Tabular struct {
	delimiter string
	layout    Layout
}

// NewTabular creates a parser. The layout may be nil when it will be read
// from the first line of the stream with InferLayout.
func NewTabular(delimiter string, layout Layout) (*Tabular, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("%w: delimiter is required", ErrLayout)
	}
	if strings.ContainsAny(delimiter, "\"\r\n") {
		return nil, fmt.Errorf("%w: delimiter %q cannot contain quotes or newlines", ErrLayout, delimiter)
	}
	return &Tabular{delimiter: delimiter, layout: layout}, nil
}

// Layout returns the current column layout.
func (t *Tabular) Layout() Layout {
	return t.layout
}

// InferLayout reads column names from a header line and installs them.
func (t *Tabular) InferLayout(header string) (Layout, error) {
	names, err := t.Split(header)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrLayout, err)
	}
	layout, err := NewLayout(names)
	if err != nil {
		return nil, err
	}
	t.layout = layout
	return layout, nil
}

// Parse splits line and zips the values against the layout.
func (t *Tabular) Parse(line string) (map[string]any, error) {
	if len(t.layout) == 0 {
		return nil, fmt.Errorf("%w: no column layout", ErrParse)
	}

	values, err := t.Split(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(values) != len(t.layout) {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", ErrParse, ErrFieldCount, len(values), len(t.layout))
	}

	rec := make(map[string]any, len(values))
	for i, name := range t.layout {
		rec[name] = values[i]
	}
	return rec, nil
}

// Split breaks a single line into trimmed field values, honoring quotes.
func (t *Tabular) Split(line string) ([]string, error) {
	fields, err := split(line, t.delimiter)
	if err != nil {
		return nil, err
	}

	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields, nil
}

// split cuts line at every delim outside quotes. A quoted field may contain
// the delimiter and "" as an escaped quote; blanks around the quotes are kept
// outside the value so they can be trimmed. A quote inside an unquoted field
// is literal.
func split(line, delim string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
	)

	i := 0
	for {
		// skip leading blanks before a possible opening quote
		start := i
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') && !strings.HasPrefix(line[i:], delim) {
			i++
		}

		if i < len(line) && line[i] == '"' {
			i++
			closed := false
			for i < len(line) {
				if line[i] == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						current.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				current.WriteByte(line[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted field %d", len(fields)+1)
			}
			// anything up to the next delimiter is kept verbatim
			next := strings.Index(line[i:], delim)
			if next < 0 {
				current.WriteString(line[i:])
				i = len(line)
			} else {
				current.WriteString(line[i : i+next])
				i += next
			}
		} else {
			i = start
			next := strings.Index(line[i:], delim)
			if next < 0 {
				current.WriteString(line[i:])
				i = len(line)
			} else {
				current.WriteString(line[i : i+next])
				i += next
			}
		}

		fields = append(fields, current.String())
		current.Reset()

		if i >= len(line) {
			return fields, nil
		}
		i += len(delim)
	}
}
