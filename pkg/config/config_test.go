package config_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocharset/pkg/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, 0, cfg.Jobs)
	assert.Equal(t, config.DefaultMaxBytes, cfg.MaxBytes)
	assert.Equal(t, "ISO-8859-1", cfg.Fallback)
	assert.Equal(t, "UTF-8", cfg.LastCharset)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.BackupsEnabled())
	assert.Equal(t, config.FormatText, cfg.Format)
}

func TestConfig_RunToggles(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.NoCache = true
	cfg.NoBackups = true
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.BackupsEnabled())

	cfg = config.NewConfig()
	cfg.Backups.Mode = "none"
	assert.False(t, cfg.BackupsEnabled())
}

func TestOutputFormat_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, config.FormatJSON.IsValid())
	assert.True(t, config.FormatSummary.IsValid())
	assert.False(t, config.OutputFormat("sarif").IsValid())
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Jobs = 4
	cfg.Include = []string{"*.txt"}
	cfg.Cache.Path = "/tmp/cache.db"
	cfg.DryRun = true

	data, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_bytes: 262144")
	assert.NotContains(t, string(data), "dry_run")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 4, parsed.Jobs)
	assert.Equal(t, []string{"*.txt"}, parsed.Include)
	assert.Equal(t, "/tmp/cache.db", parsed.Cache.Path)
	assert.False(t, parsed.DryRun, "CLI-only fields are not persisted")
}

func TestDecodeInto_OverlaysPresentKeys(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Exclude = []string{"old"}

	err := config.DecodeInto(cfg, []byte("skip_hidden: true\nexclude: [vendor]\ncache:\n  enabled: false\n"))
	require.NoError(t, err)

	assert.True(t, cfg.SkipHidden)
	assert.Equal(t, []string{"vendor"}, cfg.Exclude)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "UTF-8", cfg.LastCharset, "absent keys keep their value")
	assert.True(t, cfg.Backups.Enabled)
}

func TestDecodeInto_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	require.NoError(t, config.DecodeInto(cfg, nil))
	assert.Equal(t, config.DefaultMaxBytes, cfg.MaxBytes)

	require.Error(t, config.DecodeInto(cfg, []byte("jobs: [not, a, number]")))
	require.Error(t, config.DecodeInto(cfg, []byte("unknown_key: 1")))
}

func TestToYAMLWithHeader(t *testing.T) {
	t.Parallel()

	data, err := config.NewConfig().ToYAMLWithHeader("# header")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# header\n\n"))
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Include = []string{"*.txt"}
	cfg.NoCache = true

	clone := cfg.Clone()
	clone.Include[0] = "*.csv"

	assert.Equal(t, "*.txt", cfg.Include[0])
	assert.True(t, clone.NoCache)

	var nilCfg *config.Config
	assert.Nil(t, nilCfg.Clone())
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	minimal, err := config.GenerateTemplate(config.TemplateOptions{})
	require.NoError(t, err)
	parsed, err := config.FromYAML(minimal)
	require.NoError(t, err, "minimal template must parse")
	assert.Equal(t, 0, parsed.MaxBytes, "minimal template sets nothing")

	full, err := config.GenerateTemplate(config.TemplateOptions{Full: true})
	require.NoError(t, err)
	parsed, err = config.FromYAML(full)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxBytes, parsed.MaxBytes)
	assert.Equal(t, "sidecar", parsed.Backups.Mode)

	asJSON, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(asJSON, &decoded))
	assert.Equal(t, "UTF-8", decoded["last_charset"])
}
