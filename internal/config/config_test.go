package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("VCS_AUTHOR", "")
	dir := t.TempDir()

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, DefaultAuthor, cfg.Author)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
		assert.True(t, cfg.UseColor())
	})

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"author":"alice","log_level":"debug","color":false}`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "alice", cfg.Author)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.False(t, cfg.UseColor())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"color":true}`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultAuthor, cfg.Author)
		assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"author":`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("env author wins", func(t *testing.T) {
		t.Setenv("VCS_AUTHOR", "bob")
		cfg, err := Load(filepath.Join(dir, "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, "bob", cfg.Author)
	})
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("VCS_CONFIG", "/etc/vcs.json")
	assert.Equal(t, "/etc/vcs.json", DefaultPath())

	t.Setenv("VCS_CONFIG", "")
	assert.Equal(t, filepath.Join("vcs", "config.json"), filepath.Join(filepath.Base(filepath.Dir(DefaultPath())), filepath.Base(DefaultPath())))
}
