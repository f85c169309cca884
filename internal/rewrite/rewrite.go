// Package rewrite applies a global, case-insensitive regular expression
// replacement to raw input lines before they are parsed.
//
// Replacement text uses $1, $&, $$ and $<name> references, translated to
// Go's expansion syntax when the rewriter is compiled.
package rewrite

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrPattern is returned when a match pattern is not a valid expression.
var ErrPattern = errors.New("invalid match pattern")

// Rewriter replaces every match of a compiled pattern in a line.
// A nil *Rewriter leaves lines unchanged.
type Rewriter struct {
	re          *regexp.Regexp
	replacement string
}

// Compile builds a Rewriter. An empty pattern yields a nil Rewriter.
func Compile(pattern, replacement string) (*Rewriter, error) {
	if pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPattern, err)
	}

	return &Rewriter{
		re:          re,
		replacement: translate(replacement, re.NumSubexp()),
	}, nil
}

// Apply returns line with all non-overlapping matches replaced.
func (r *Rewriter) Apply(line string) string {
	if r == nil {
		return line
	}
	return r.re.ReplaceAllString(line, r.replacement)
}

// Pattern returns the source pattern, without the case-insensitivity flag.
func (r *Rewriter) Pattern() string {
	if r == nil {
		return ""
	}
	return strings.TrimPrefix(r.re.String(), "(?i)")
}

// Replace compiles pattern and applies it to line in one step.
func Replace(pattern, replacement, line string) (string, error) {
	r, err := Compile(pattern, replacement)
	if err != nil {
		return "", err
	}
	return r.Apply(line), nil
}

// translate converts a $-style replacement into regexp.Expand syntax.
// Group numbers are wrapped in braces so "$1x" keeps meaning group 1.
func translate(replacement string, groups int) string {
	var b strings.Builder
	b.Grow(len(replacement) + 8)

	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '$' || i+1 == len(replacement) {
			if c == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte(c)
			}
			continue
		}

		next := replacement[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case isDigit(next):
			n, width := groupRef(replacement[i+1:], groups)
			if n == 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString("${" + strconv.Itoa(n) + "}")
			i += width
		case next == '<':
			end := strings.IndexByte(replacement[i+2:], '>')
			if end < 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString("${" + replacement[i+2:i+2+end] + "}")
			i += end + 2
		default:
			b.WriteString("$$")
		}
	}

	return b.String()
}

// groupRef reads a one or two digit group reference, preferring two digits
// when that group exists.
func groupRef(s string, groups int) (int, int) {
	if len(s) >= 2 && isDigit(s[1]) {
		if n, _ := strconv.Atoi(s[:2]); n >= 1 && n <= groups {
			return n, 2
		}
	}
	n := int(s[0] - '0')
	if n < 1 || n > groups {
		return 0, 0
	}
	return n, 1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
