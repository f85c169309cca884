package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	tests := map[string]struct {
		pattern     string
		replacement string
		input       string
		want        string
	}{
		"global": {
			pattern: "a", replacement: "b",
			input: "banana", want: "bbnbnb",
		},
		"case insensitive": {
			pattern: "john", replacement: "Jane",
			input: `{"name":"JOHN","alt":"john"}`, want: `{"name":"Jane","alt":"Jane"}`,
		},
		"capture groups": {
			pattern: `"rv(\d\d)".*?:`, replacement: `"rv":$1,"rvdata":`,
			input: `{"rvs":{"rv18":{"RvVgs":{}}}}`, want: `{"rvs":{"rv":18,"rvdata":{"RvVgs":{}}}}`,
		},
		"group followed by letters": {
			pattern: `(\d+)`, replacement: "$1px",
			input: "width 10", want: "width 10px",
		},
		"whole match": {
			pattern: `\d+`, replacement: "[$&]",
			input: "a1b22", want: "a[1]b[22]",
		},
		"escaped dollar": {
			pattern: "usd", replacement: "$$",
			input: "10 usd", want: "10 $",
		},
		"named group": {
			pattern: `(?P<word>\w+)@`, replacement: "$<word> at ",
			input: "joe@host", want: "joe at host",
		},
		"unknown group stays literal": {
			pattern: "x", replacement: "$9",
			input: "x", want: "$9",
		},
		"trailing dollar": {
			pattern: "x", replacement: "y$",
			input: "x", want: "y$",
		},
		"no match": {
			pattern: "zzz", replacement: "y",
			input: "abc", want: "abc",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Replace(tt.pattern, tt.replacement, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileEmptyPattern(t *testing.T) {
	r, err := Compile("", "ignored")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, "unchanged", r.Apply("unchanged"))
	assert.Empty(t, r.Pattern())
}

func TestCompileInvalidPattern(t *testing.T) {
	_, err := Compile("(unclosed", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPattern)
}

func TestPattern(t *testing.T) {
	r, err := Compile(`a+`, "b")
	require.NoError(t, err)
	assert.Equal(t, "a+", r.Pattern())
}

func TestTwoDigitGroups(t *testing.T) {
	pattern := `(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)(k)`
	got, err := Replace(pattern, "$11-$10-$1", "abcdefghijk")
	require.NoError(t, err)
	assert.Equal(t, "k-j-a", got)
}
