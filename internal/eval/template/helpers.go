package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingValue is raised by the required helper
	ErrMissingValue = errors.New("required value is missing")

	// ErrHelperFile is returned for unreadable or invalid helper files
	ErrHelperFile = errors.New("invalid helper file")
)

var sanitizePolicy = bluemonday.UGCPolicy()

// stringHelpers can be chained from a helper file
var stringHelpers = map[string]func(string) string{
	"uppercase": strings.ToUpper,
	"lowercase": strings.ToLower,
	"trim":      strings.TrimSpace,
	"sanitize":  sanitizePolicy.Sanitize,
}

// builtinHelpers returns the helpers every engine starts with
func builtinHelpers() map[string]interface{} {
	return map[string]interface{}{
		"uppercase": func(value interface{}) string {
			return strings.ToUpper(str(value))
		},
		"lowercase": func(value interface{}) string {
			return strings.ToLower(str(value))
		},
		"trim": func(value interface{}) string {
			return strings.TrimSpace(str(value))
		},
		"yell": func(value interface{}) string {
			return strings.ToUpper(str(value))
		},
		"whisper": func(value interface{}) string {
			return strings.ToLower(str(value))
		},

		// default helper - return default value if first arg is empty
		"default": func(value interface{}, defaultValue interface{}) interface{} {
			if value == nil || value == "" {
				return defaultValue
			}
			return value
		},

		// required helper - abort the render when the value is absent
		"required": func(value interface{}) interface{} {
			if value == nil || value == "" {
				panic(ErrMissingValue)
			}
			return value
		},

		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"ne": func(a, b interface{}) bool {
			return a != b
		},
		// gt and lt compare numerically; tabular fields arrive as strings.
		// A non-numeric operand compares false.
		"gt": func(a, b interface{}) bool {
			x, okX := number(a)
			y, okY := number(b)
			return okX && okY && x > y
		},
		"lt": func(a, b interface{}) bool {
			x, okX := number(a)
			y, okY := number(b)
			return okX && okY && x < y
		},

		"contains": func(s, substr string) bool {
			return strings.Contains(s, substr)
		},

		// join helper - join array elements with separator
		"join": func(arr []interface{}, sep string) string {
			strs := make([]string, len(arr))
			for i, v := range arr {
				strs[i] = str(v)
			}
			return strings.Join(strs, sep)
		},

		"len": func(value interface{}) int {
			switch v := value.(type) {
			case string:
				return len(v)
			case []interface{}:
				return len(v)
			case map[string]interface{}:
				return len(v)
			default:
				return 0
			}
		},

		// json helper - embed a value as JSON, unescaped
		"json": func(value interface{}) raymond.SafeString {
			data, err := json.Marshal(value)
			if err != nil {
				panic(fmt.Errorf("json helper: %w", err))
			}
			return raymond.SafeString(data)
		},

		"sanitize": func(value interface{}) raymond.SafeString {
			return raymond.SafeString(sanitizePolicy.Sanitize(str(value)))
		},
	}
}

// number converts a helper argument to float64
func number(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// validateHelper mirrors raymond's own checks so a bad helper is reported
// as an error instead of a panic at compile time
func validateHelper(name string, helper interface{}) error {
	if name == "" {
		return fmt.Errorf("helper name is required")
	}
	val := reflect.ValueOf(helper)
	if val.Kind() != reflect.Func {
		return fmt.Errorf("helper %s must be a function, got %T", name, helper)
	}
	if val.Type().NumOut() != 1 {
		return fmt.Errorf("helper %s must return exactly one value", name)
	}
	return nil
}

// helperFile is the YAML layout of a helper definition file
type helperFile struct {
	Helpers map[string][]string `yaml:"helpers"`
}

// LoadHelperFile reads named helper chains from a YAML file
func LoadHelperFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHelperFile, err)
	}
	return ParseHelperFile(data)
}

// ParseHelperFile builds helpers from YAML helper definitions. Each helper
// applies the listed string helpers in order.
func ParseHelperFile(data []byte) (map[string]interface{}, error) {
	var file helperFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHelperFile, err)
	}

	helpers := make(map[string]interface{}, len(file.Helpers))
	for name, chain := range file.Helpers {
		if len(chain) == 0 {
			return nil, fmt.Errorf("%w: helper %s has no steps", ErrHelperFile, name)
		}

		steps := make([]func(string) string, len(chain))
		for i, step := range chain {
			fn, ok := stringHelpers[step]
			if !ok {
				return nil, fmt.Errorf("%w: helper %s uses unknown step %q", ErrHelperFile, name, step)
			}
			steps[i] = fn
		}

		helpers[name] = func(value interface{}) string {
			s := str(value)
			for _, step := range steps {
				s = step(s)
			}
			return s
		}
	}

	return helpers, nil
}
