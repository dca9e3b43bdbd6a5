package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/gocharset/pkg/config"
)

func noEnv(string) (string, bool) { return "", false }

func mapEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func isolated(workDir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         workDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		LookupEnv:          noEnv,
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Stop the upward search here.
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(dir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.MaxBytes != config.DefaultMaxBytes {
		t.Errorf("max_bytes = %d, want default", result.Config.MaxBytes)
	}
	if result.Config.LastCharset != "UTF-8" {
		t.Errorf("last_charset = %q, want UTF-8", result.Config.LastCharset)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("LoadedFrom = %v, want none", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfigUpwardSearch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(root, ".gocharset.yml"), "jobs: 3\nskip_hidden: true\nexclude: [vendor]\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Jobs != 3 || !cfg.SkipHidden || len(cfg.Exclude) != 1 {
		t.Errorf("project config not applied: %+v", cfg)
	}
	if result.Paths.Project != filepath.Join(root, ".gocharset.yml") {
		t.Errorf("Paths.Project = %q", result.Paths.Project)
	}
}

func TestLoad_ProjectSearchStopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeConfig(t, filepath.Join(outer, ".gocharset.yml"), "jobs: 9\n")

	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(repo))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Jobs == 9 {
		t.Error("config above the VCS root should not be loaded")
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	userDir := filepath.Join(root, "user")
	writeConfig(t, filepath.Join(userDir, "config.yaml"),
		"jobs: 1\nmax_bytes: 1000000\nfallback: windows-1252\ncache:\n  enabled: true\n")
	writeConfig(t, filepath.Join(root, ".gocharset.yml"), "jobs: 2\ncache:\n  enabled: false\n")
	explicit := filepath.Join(root, "explicit.yml")
	writeConfig(t, explicit, "jobs: 3\nmin_confidence: 40\n")

	opts := LoadOptions{
		WorkingDir:         root,
		ExplicitPath:       explicit,
		UserConfigDir:      userDir,
		IgnoreSystemConfig: true,
		LookupEnv:          mapEnv(map[string]string{"GOCHARSET_MIN_CONFIDENCE": "55", "GOCHARSET_EXCLUDE": "a, b"}),
		CLIConfig:          &config.Config{MaxBytes: 4096},
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := result.Config

	if cfg.Jobs != 3 {
		t.Errorf("jobs = %d, want explicit file value 3", cfg.Jobs)
	}
	if cfg.Fallback != "windows-1252" {
		t.Errorf("fallback = %q, want user value", cfg.Fallback)
	}
	if cfg.Cache.Enabled {
		t.Error("project file should switch the cache off")
	}
	if cfg.MinConfidence != 55 {
		t.Errorf("min_confidence = %d, want env value 55", cfg.MinConfidence)
	}
	if cfg.MaxBytes != 4096 {
		t.Errorf("max_bytes = %d, want CLI value 4096", cfg.MaxBytes)
	}
	if strings.Join(cfg.Exclude, "|") != "a|b" {
		t.Errorf("exclude = %v, want [a b]", cfg.Exclude)
	}
	if len(result.LoadedFrom) != 3 {
		t.Errorf("LoadedFrom = %v, want user, project and explicit", result.LoadedFrom)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "negative jobs", content: "jobs: -1\n", field: "jobs"},
		{name: "zero max bytes", content: "max_bytes: 0\n", field: "max_bytes"},
		{name: "unknown fallback", content: "fallback: klingon-8\n", field: "fallback"},
		{name: "bad backup mode", content: "backups:\n  mode: cloud\n", field: "backups.mode"},
		{name: "bad glob", content: "include: ['[oops']\n", field: "include[0]"},
		{name: "confidence too high", content: "min_confidence: 101\n", field: "min_confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "cfg.yml")
			writeConfig(t, path, tt.content)

			opts := isolated(dir)
			opts.ExplicitPath = path
			opts.IgnoreProjectConfig = true

			_, err := Load(context.Background(), opts)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yml")
	writeConfig(t, path, "jobs: [1\n")

	opts := isolated(dir)
	opts.ExplicitPath = path

	_, err := Load(context.Background(), opts)
	if err == nil || !strings.Contains(err.Error(), "explicit") {
		t.Errorf("error = %v, want explicit config parse error", err)
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := isolated(dir)
	opts.IgnoreProjectConfig = true
	opts.CLIConfig = &config.Config{MaxBytes: 100}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "max_bytes") {
		t.Errorf("Warnings = %v, want one max_bytes warning", result.Warnings)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	err := loadFromEnv(cfg, mapEnv(map[string]string{
		"GOCHARSET_JOBS":            "8",
		"GOCHARSET_SKIP_HIDDEN":     "true",
		"GOCHARSET_BACKUPS_ENABLED": "0",
		"GOCHARSET_FORMAT":          "json",
		"GOCHARSET_INCLUDE":         "*.txt,,*.csv ",
		"GOCHARSET_LAST_CHARSET":    " Shift_JIS ",
	}))
	if err != nil {
		t.Fatalf("loadFromEnv() error = %v", err)
	}

	if cfg.Jobs != 8 || !cfg.SkipHidden || cfg.Backups.Enabled || cfg.Format != config.FormatJSON {
		t.Errorf("env not applied: %+v", cfg)
	}
	if strings.Join(cfg.Include, "|") != "*.txt|*.csv" {
		t.Errorf("include = %v", cfg.Include)
	}
	if cfg.LastCharset != "Shift_JIS" {
		t.Errorf("last_charset = %q", cfg.LastCharset)
	}

	bad := loadFromEnv(config.NewConfig(), mapEnv(map[string]string{"GOCHARSET_JOBS": "many"}))
	if bad == nil || !strings.Contains(bad.Error(), "GOCHARSET_JOBS") {
		t.Errorf("error = %v, want invalid integer error", bad)
	}
}

func TestEnvVarHelpers(t *testing.T) {
	t.Parallel()

	if got := GetEnvVarName("cache.path"); got != "GOCHARSET_CACHE_PATH" {
		t.Errorf("GetEnvVarName = %q", got)
	}
	if got := GetEnvVarName("nope"); got != "" {
		t.Errorf("GetEnvVarName(nope) = %q", got)
	}
	if len(ListEnvVars()) != len(envMappings) {
		t.Error("ListEnvVars should describe every mapping")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Include = []string{"*.txt"}

	merged := MergeAll(base, &config.Config{Jobs: 2, DryRun: true}, &config.Config{Exclude: []string{"x"}})
	if merged.Jobs != 2 || !merged.DryRun || merged.Include[0] != "*.txt" || merged.Exclude[0] != "x" {
		t.Errorf("unexpected merge result: %+v", merged)
	}

	merged.Include[0] = "changed"
	if base.Include[0] != "*.txt" {
		t.Error("merge must not alias base slices")
	}

	if MergeAll() != nil {
		t.Error("MergeAll() of nothing should be nil")
	}
}
