package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Port is 3001", func(t *testing.T) {
		t.Parallel()
		if cfg.Port != 3001 {
			t.Errorf("expected Port to be 3001, got %d", cfg.Port)
		}
	})

	t.Run("default Environment is development", func(t *testing.T) {
		t.Parallel()
		if cfg.Environment != "development" || cfg.IsProduction() {
			t.Errorf("expected development, got %q", cfg.Environment)
		}
	})

	t.Run("default AllowedOrigins are the local frontend", func(t *testing.T) {
		t.Parallel()
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
			t.Errorf("unexpected AllowedOrigins %v", cfg.AllowedOrigins)
		}
	})

	t.Run("default timeouts", func(t *testing.T) {
		t.Parallel()
		if cfg.AnalysisTimeout != 60*time.Second {
			t.Errorf("expected AnalysisTimeout to be 60s, got %v", cfg.AnalysisTimeout)
		}
		if cfg.RecommendationTimeout != 45*time.Second {
			t.Errorf("expected RecommendationTimeout to be 45s, got %v", cfg.RecommendationTimeout)
		}
		if cfg.GeneratorCallTimeout != 30*time.Second {
			t.Errorf("expected GeneratorCallTimeout to be 30s, got %v", cfg.GeneratorCallTimeout)
		}
		if cfg.NavigationTimeout != 30*time.Second {
			t.Errorf("expected NavigationTimeout to be 30s, got %v", cfg.NavigationTimeout)
		}
	})

	t.Run("default rate limit is 20 per hour", func(t *testing.T) {
		t.Parallel()
		if cfg.CheckRateLimit != 20 || cfg.CheckRateWindow != time.Hour {
			t.Errorf("expected 20/hour, got %d/%v", cfg.CheckRateLimit, cfg.CheckRateWindow)
		}
	})

	t.Run("default StrictDial is false", func(t *testing.T) {
		t.Parallel()
		if cfg.StrictDial {
			t.Error("expected StrictDial to be false")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "port zero", modify: func(c *Config) { c.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "port too large", modify: func(c *Config) { c.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "unknown environment", modify: func(c *Config) { c.Environment = "staging" }, wantErr: ErrInvalidEnvironment},
		{name: "zero analysis timeout", modify: func(c *Config) { c.AnalysisTimeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative navigation timeout", modify: func(c *Config) { c.NavigationTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "negative rate limit", modify: func(c *Config) { c.CheckRateLimit = -1 }, wantErr: ErrInvalidRateLimit},
		{name: "rate limit without window", modify: func(c *Config) { c.CheckRateWindow = 0 }, wantErr: ErrInvalidRateLimit},
		{name: "disabled rate limit without window", modify: func(c *Config) { c.CheckRateLimit = 0; c.CheckRateWindow = 0 }},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "json and markdown together", modify: func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, wantErr: ErrConflictingReportFormats},
		{name: "unknown provider", modify: func(c *Config) { c.Provider = "bard" }, wantErr: ErrInvalidProvider},
		{name: "production environment", modify: func(c *Config) { c.Environment = EnvProduction }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("ValidateTargets requires a target", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
		cfg.Targets = []string{"https://example.com"}
		if err := cfg.ValidateTargets(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	got := SplitList(" https://a.example , ,https://b.example,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected list %q", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Errorf("expected empty list, got %q", got)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.a11yscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads and applies valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yscan")
		content := `server:
  port: 8080
  environment: production
  allowedOrigins:
    - https://checker.example.com
  rateLimit: 0
analysis:
  timeout: 90s
  strictDial: true
  userAgent: custom-agent
recommendations:
  provider: none
  callTimeout: 10s
history:
  enabled: false
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		f.Apply(cfg)

		if cfg.Port != 8080 || !cfg.IsProduction() {
			t.Errorf("unexpected server settings: port=%d env=%s", cfg.Port, cfg.Environment)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://checker.example.com" {
			t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.CheckRateLimit != 0 {
			t.Errorf("expected explicit rate limit 0, got %d", cfg.CheckRateLimit)
		}
		if cfg.AnalysisTimeout != 90*time.Second || cfg.GeneratorCallTimeout != 10*time.Second {
			t.Errorf("unexpected timeouts %v %v", cfg.AnalysisTimeout, cfg.GeneratorCallTimeout)
		}
		if !cfg.StrictDial || cfg.UserAgent != "custom-agent" {
			t.Errorf("unexpected analysis settings %v %q", cfg.StrictDial, cfg.UserAgent)
		}
		if cfg.Provider != "none" || cfg.SaveToDB {
			t.Errorf("unexpected provider/history %q %v", cfg.Provider, cfg.SaveToDB)
		}
		if cfg.NavigationTimeout != DefaultNavigationTimeout {
			t.Error("unset values must keep their defaults")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".a11yscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("server: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(values map[string]string) func(string) string {
		return func(k string) string { return values[k] }
	}

	t.Run("overrides configured values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := ApplyEnv(cfg, env(map[string]string{
			EnvPort:           "9000",
			EnvNodeEnv:        "Production",
			EnvAllowedOrigins: "https://a.example,https://b.example",
			EnvCheckRateLimit: "5",
			EnvReplicateToken: "r8_token",
			EnvOpenAIKey:      "sk-key",
			EnvStrictDial:     "true",
			EnvDBDir:          "/tmp/a11yscan",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != 9000 || !cfg.IsProduction() || cfg.CheckRateLimit != 5 {
			t.Errorf("unexpected config %+v", cfg)
		}
		if len(cfg.AllowedOrigins) != 2 {
			t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
		}
		if cfg.ReplicateToken != "r8_token" || cfg.OpenAIKey != "sk-key" {
			t.Error("expected tokens from the environment")
		}
		if !cfg.StrictDial || cfg.DBDir != "/tmp/a11yscan" {
			t.Errorf("unexpected strict dial/db dir %v %q", cfg.StrictDial, cfg.DBDir)
		}
	})

	t.Run("empty environment keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := ApplyEnv(cfg, env(nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != DefaultPort || cfg.Environment != DefaultEnvironment {
			t.Errorf("expected defaults, got %d %q", cfg.Port, cfg.Environment)
		}
	})

	for _, key := range []string{EnvPort, EnvCheckRateLimit, EnvStrictDial} {
		t.Run("invalid "+key, func(t *testing.T) {
			t.Parallel()

			err := ApplyEnv(NewConfig(), env(map[string]string{key: "not-a-number"}))
			if !errors.Is(err, ErrInvalidEnv) {
				t.Errorf("expected ErrInvalidEnv, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), func(string) string { return "" })
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("environment wins over the file", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "a11yscan.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 8080\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := Load(configPath, func(k string) string {
			if k == EnvPort {
				return "9090"
			}
			return ""
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.Port)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("expected config path %q, got %q", configPath, cfg.ConfigFilePath)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		t.Run(name+" dir ends with the app name", func(t *testing.T) {
			t.Parallel()
			if filepath.Base(dir) != AppName {
				t.Errorf("expected %q to end with %q", dir, AppName)
			}
		})
	}
}
