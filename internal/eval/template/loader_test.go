package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo-simple.json")
	require.NoError(t, os.WriteFile(path, []byte(customerTemplate), 0o600))

	assert.Equal(t, customerTemplate, LoadTemplate(path))
}

func TestLoadTemplateMissing(t *testing.T) {
	assert.Equal(t, "", LoadTemplate(filepath.Join(t.TempDir(), "junk-does-not-exist.json")))
}

func TestLoadTemplateStrict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo-simple.json")
	require.NoError(t, os.WriteFile(path, []byte(customerTemplate), 0o600))

	text, err := LoadTemplateStrict(path)
	require.NoError(t, err)
	assert.Equal(t, customerTemplate, text)

	_, err = LoadTemplateStrict(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
