package template

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aymerick/raymond"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

var (
	// ErrCompile is returned when template source cannot be parsed
	ErrCompile = errors.New("template compile failed")

	// ErrRender is returned when a record cannot be rendered
	ErrRender = errors.New("template render failed")

	// ErrHelpersFrozen is returned when a helper is registered after the
	// first template was compiled
	ErrHelpersFrozen = errors.New("helpers cannot be registered after compilation")
)

var newlineRemover = strings.NewReplacer("\r\n", "", "\n", "")

// Template is a compiled, reusable renderer
type Template struct {
	source string
	hash   uint64
	tpl    *raymond.Template
}

// Render applies the template to data. With removeNewlines set, line breaks
// in the output are dropped so each record renders to a single line.
func (t *Template) Render(data interface{}, removeNewlines bool) (string, error) {
	if t.tpl == nil {
		return "", nil
	}

	result, err := t.tpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	if removeNewlines {
		result = newlineRemover.Replace(result)
	}
	return result, nil
}

// Source returns the template text
func (t *Template) Source() string {
	return t.source
}

// Fingerprint returns a short hash of the template text for logs
func (t *Template) Fingerprint() string {
	return fmt.Sprintf("%016x", t.hash)
}

// Engine compiles and caches Handlebars templates
type Engine struct {
	cache    Cache
	helpers  map[string]interface{}
	frozen   bool
	compiles atomic.Int64
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewEngine creates a new template engine with the built-in helpers. A nil
// cache selects a fresh MemoryCache.
func NewEngine(cache Cache, logger *zap.Logger) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		cache:   cache,
		helpers: make(map[string]interface{}),
		logger:  logger,
	}

	for name, helper := range builtinHelpers() {
		engine.helpers[name] = helper
	}

	return engine
}

// Compile returns the template for source, compiling it on first use
func (e *Engine) Compile(source string) (*Template, error) {
	// Check cache first
	if tpl, ok := e.cache.Get(source); ok {
		return tpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tpl, ok := e.cache.Get(source); ok {
		return tpl, nil
	}

	e.frozen = true
	e.compiles.Add(1)

	tpl := &Template{
		source: source,
		hash:   xxhash.Sum64String(source),
	}

	if source != "" {
		parsed, err := raymond.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompile, err)
		}
		parsed.RegisterHelpers(e.helpers)
		tpl.tpl = parsed
	}

	e.cache.Put(source, tpl)

	e.logger.Debug("template compiled",
		zap.String("template_hash", tpl.Fingerprint()),
		zap.Int("template_bytes", len(source)),
	)

	return tpl, nil
}

// Render compiles source (cached) and applies it to data
func (e *Engine) Render(source string, data interface{}, removeNewlines bool) (string, error) {
	tpl, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return tpl.Render(data, removeNewlines)
}

// ValidateTemplate validates a template without caching it
func (e *Engine) ValidateTemplate(source string) error {
	_, err := raymond.Parse(source)
	return err
}

// Compilations returns how many times template source was compiled
func (e *Engine) Compilations() int64 {
	return e.compiles.Load()
}

// RegisterHelper adds a named helper. Helpers must be functions with a
// single return value and can only be added before the first compilation.
func (e *Engine) RegisterHelper(name string, helper interface{}) error {
	if err := validateHelper(name, helper); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen {
		return fmt.Errorf("%w: %s", ErrHelpersFrozen, name)
	}
	e.helpers[name] = helper
	return nil
}

// RegisterHelpers adds several helpers, stopping at the first failure
func (e *Engine) RegisterHelpers(helpers map[string]interface{}) error {
	for name, helper := range helpers {
		if err := e.RegisterHelper(name, helper); err != nil {
			return err
		}
	}
	return nil
}

// HelperNames returns the registered helper names
func (e *Engine) HelperNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.helpers))
	for name := range e.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// str renders a helper argument the way raymond prints values
func str(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return raymond.Str(v)
	}
}
