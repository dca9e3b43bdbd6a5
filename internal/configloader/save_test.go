package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUserValue_CreatesFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "gocharset")

	path, err := SaveUserValue(context.Background(), dir, "last_charset", "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# gocharset configuration"))
	assert.Contains(t, string(content), "last_charset: windows-1252")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir:          t.TempDir(),
		UserConfigDir:       dir,
		IgnoreSystemConfig:  true,
		IgnoreProjectConfig: true,
		LookupEnv:           noEnv,
	})
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", result.Config.LastCharset)
}

func TestSaveUserValue_PreservesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	writeConfig(t, path, "# my settings\njobs: 4 # fixed\nlast_charset: UTF-8\n")

	got, err := SaveUserValue(context.Background(), dir, "last_charset", "Shift_JIS")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = SaveUserValue(context.Background(), dir, "cache.path", "/var/cache/gocharset.db")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "# my settings")
	assert.Contains(t, text, "jobs: 4 # fixed")
	assert.Contains(t, text, "last_charset: Shift_JIS")
	assert.NotContains(t, text, "UTF-8")
	assert.Contains(t, text, "path: /var/cache/gocharset.db")
}

func TestSaveUserValue_RejectsUnknownKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := SaveUserValue(context.Background(), dir, "no_such_key", "x")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr), "nothing should be written")
}
