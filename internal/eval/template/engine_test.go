package template

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const customerTemplate = "{\n  \"customerName\": \"{{customer.name}}\"\n}"

func customer(name string) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{"name": name},
	}
}

func TestRenderRemovesNewlines(t *testing.T) {
	engine := NewEngine(nil, zaptest.NewLogger(t))

	out, err := engine.Render(`{ "customerName": "{{customer.name}}" }`, customer("John"), true)
	require.NoError(t, err)
	assert.Equal(t, `{ "customerName": "John" }`, out)
	assert.NotContains(t, out, "{{")
}

func TestRenderKeepsNewlines(t *testing.T) {
	engine := NewEngine(nil, nil)

	out, err := engine.Render(customerTemplate, customer("John"), false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"customerName\": \"John\"\n}", out)

	out, err = engine.Render(customerTemplate, customer("John"), true)
	require.NoError(t, err)
	assert.Equal(t, `{  "customerName": "John"}`, out)
}

func TestCompileIsCached(t *testing.T) {
	engine := NewEngine(nil, nil)

	first, err := engine.Render(customerTemplate, customer("John"), true)
	require.NoError(t, err)
	second, err := engine.Render(customerTemplate, customer("John"), true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), engine.Compilations())

	a, err := engine.Compile(customerTemplate)
	require.NoError(t, err)
	b, err := engine.Compile(customerTemplate)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, int64(1), engine.Compilations())

	_, err = engine.Compile(customerTemplate + " ")
	require.NoError(t, err)
	assert.Equal(t, int64(2), engine.Compilations())
}

func TestCacheKeyedByTextNotOrigin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customer.hbs")
	require.NoError(t, os.WriteFile(path, []byte(customerTemplate), 0o600))

	cache := NewMemoryCache()
	engine := NewEngine(cache, nil)

	fromFile, err := engine.Compile(LoadTemplate(path))
	require.NoError(t, err)
	inline, err := engine.Compile(customerTemplate)
	require.NoError(t, err)

	assert.Same(t, fromFile, inline)
	assert.Equal(t, 1, cache.Len())
}

func TestCompileConcurrentOnce(t *testing.T) {
	engine := NewEngine(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Render(customerTemplate, customer("John"), true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), engine.Compilations())
}

func TestCompileError(t *testing.T) {
	engine := NewEngine(nil, nil)

	_, err := engine.Compile("{{#if customer}}unclosed")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompile)
	assert.Error(t, engine.ValidateTemplate("{{#if customer}}unclosed"))
	assert.NoError(t, engine.ValidateTemplate(customerTemplate))
}

func TestEmptyTemplateRendersEmpty(t *testing.T) {
	engine := NewEngine(nil, nil)

	for _, data := range []interface{}{nil, customer("John"), []interface{}{1, 2}, "text"} {
		out, err := engine.Render("", data, true)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestMissingFieldRendersEmpty(t *testing.T) {
	engine := NewEngine(nil, nil)

	out, err := engine.Render("[{{customer.email}}]", customer("John"), true)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestRequiredHelperRenderError(t *testing.T) {
	engine := NewEngine(nil, nil)

	_, err := engine.Render("{{required customer.email}}", customer("John"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	assert.ErrorIs(t, err, ErrMissingValue)

	out, err := engine.Render("{{required customer.name}}", customer("John"), true)
	require.NoError(t, err)
	assert.Equal(t, "John", out)
}

func TestBuiltinHelpers(t *testing.T) {
	data := map[string]interface{}{
		"name":  " Mary ",
		"tags":  []interface{}{"a", "b", 3.0},
		"score": 0.9,
		"age":   "30",
		"html":  `<b>bold</b><script>alert(1)</script>`,
		"obj":   map[string]interface{}{"k": "v"},
	}
	tests := map[string]struct {
		template string
		want     string
	}{
		"uppercase": {template: "{{uppercase name}}", want: " MARY "},
		"lowercase": {template: "{{lowercase name}}", want: " mary "},
		"trim":      {template: "[{{trim name}}]", want: "[Mary]"},
		"yell":      {template: "{{yell (trim name)}}", want: "MARY"},
		"whisper":   {template: "{{whisper name}}", want: " mary "},
		"default":   {template: `{{default missing "N/A"}}`, want: "N/A"},
		"join":      {template: `{{join tags "-"}}`, want: "a-b-3"},
		"len":       {template: "{{len tags}}", want: "3"},
		"gt":        {template: "{{#if (gt score 0.8)}}high{{else}}low{{/if}}", want: "high"},
		"gt string": {template: "{{#if (gt age 18)}}adult{{/if}}", want: "adult"},
		"lt string": {template: "{{#if (lt age 18)}}minor{{else}}adult{{/if}}", want: "adult"},
		"gt nan":    {template: "{{#if (gt name 1)}}yes{{else}}no{{/if}}", want: "no"},
		"eq":        {template: `{{#if (eq name " Mary ")}}yes{{/if}}`, want: "yes"},
		"contains":  {template: `{{#if (contains name "ar")}}yes{{/if}}`, want: "yes"},
		"json":      {template: "{{json obj}}", want: `{"k":"v"}`},
		"sanitize":  {template: "{{sanitize html}}", want: "<b>bold</b>"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			engine := NewEngine(nil, nil)
			out, err := engine.Render(tt.template, data, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRegisterHelper(t *testing.T) {
	engine := NewEngine(nil, nil)

	require.NoError(t, engine.RegisterHelper("reverse", func(s string) string {
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return string(r)
	}))
	assert.Contains(t, engine.HelperNames(), "reverse")

	out, err := engine.Render("{{reverse customer.name}}", customer("John"), true)
	require.NoError(t, err)
	assert.Equal(t, "nhoJ", out)

	err = engine.RegisterHelper("late", func(s string) string { return s })
	assert.ErrorIs(t, err, ErrHelpersFrozen)
}

func TestRegisterHelperInvalid(t *testing.T) {
	engine := NewEngine(nil, nil)

	assert.Error(t, engine.RegisterHelper("notfunc", "text"))
	assert.Error(t, engine.RegisterHelper("twoout", func() (string, error) { return "", nil }))
	assert.Error(t, engine.RegisterHelper("", func() string { return "" }))
}

func TestEnginesDoNotShareHelpers(t *testing.T) {
	a := NewEngine(nil, nil)
	b := NewEngine(nil, nil)
	require.NoError(t, a.RegisterHelper("only_a", func() string { return "a" }))

	assert.Contains(t, a.HelperNames(), "only_a")
	assert.NotContains(t, b.HelperNames(), "only_a")
}

func TestFingerprint(t *testing.T) {
	engine := NewEngine(nil, nil)

	tpl, err := engine.Compile(customerTemplate)
	require.NoError(t, err)
	assert.Len(t, tpl.Fingerprint(), 16)
	assert.Equal(t, customerTemplate, tpl.Source())
}
