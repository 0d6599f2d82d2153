package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeConfig struct {
	Name     string        `koanf:"name"`
	Lifetime time.Duration `koanf:"lifetime"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "store.yaml", "store:\n  name: sessions\n  lifetime: 30ms\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "sessions", cfg.Client().String("store.name"))

	var sc storeConfig
	require.NoError(t, cfg.Unmarshal("store", &sc))
	assert.Equal(t, storeConfig{Name: "sessions", Lifetime: 30 * time.Millisecond}, sc)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "store.json", `{"store":{"name":"j","lifetime":"1s"}}`)

	var sc storeConfig
	require.NoError(t, Decode(path, "store", &sc))
	assert.Equal(t, storeConfig{Name: "j", Lifetime: time.Second}, sc)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Load("store.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = Load(writeFile(t, "bad.json", "{"))
	assert.ErrorIs(t, err, ErrParseFailed)

	err = Decode(writeFile(t, "bad.yaml", "store:\n  lifetime: soon\n"), "store", &storeConfig{})
	assert.ErrorIs(t, err, ErrUnmarshalFailed)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("a:\n  b: 1\n"), FormatYAML, WithDelim("/"), WithTag(""), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Client().Int("a/b"))
	assert.Empty(t, cfg.Path())
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := Parse(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, empty.Client().Keys())

	_, err = Parse([]byte("x"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReload(t *testing.T) {
	path := writeFile(t, "app.yml", "v: 1\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	old := cfg.Client()

	require.NoError(t, os.WriteFile(path, []byte("v: 2\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 2, cfg.Client().Int("v"))
	assert.Equal(t, 1, old.Int("v"), "old snapshot stays readable")

	require.NoError(t, os.WriteFile(path, []byte("v: [\n"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 2, cfg.Client().Int("v"), "failed reload keeps the previous config")
}
