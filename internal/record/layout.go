package record

import (
	"fmt"
	"strings"
)

// Layout is the ordered list of column names used to read tabular rows.
type Layout []string

// ParseLayout splits a comma separated list of column names, trimming the
// whitespace around each name.
func ParseLayout(columns string) (Layout, error) {
	if strings.TrimSpace(columns) == "" {
		return nil, fmt.Errorf("%w: no columns given", ErrLayout)
	}

	names := strings.Split(columns, ",")
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
	}
	return NewLayout(names)
}

// NewLayout validates that names are non-empty and unique.
func NewLayout(names []string) (Layout, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no columns given", ErrLayout)
	}

	seen := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", ErrLayout, i+1)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: column %q repeated at positions %d and %d", ErrLayout, name, prev+1, i+1)
		}
		seen[name] = i
	}

	return Layout(names), nil
}

// String renders the layout the way ParseLayout reads it.
func (l Layout) String() string {
	return strings.Join(l, ", ")
}
