package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"socket_timeout"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Client        testClientConfig `mapstructure:"client"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "restclient"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging level info, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "restclient", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected logging level debug, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "restclient.yml")

	yamlContent := `
name: restclient
environment: staging
client:
  base_url: http://localhost:8080
  socket_timeout: 5s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("restclient-test", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "restclient" {
		t.Errorf("expected name 'restclient', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Client.BaseURL != "http://localhost:8080" {
		t.Errorf("expected base url, got %q", cfg.Client.BaseURL)
	}
	if cfg.Client.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Client.Timeout)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "restclient.yml")
	if err := os.WriteFile(configPath, []byte("client:\n  base_url: http://file\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("RCTEST_CLIENT__BASE_URL", "http://env")

	var cfg testConfig
	if err := LoadConfig("rctest", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Client.BaseURL != "http://env" {
		t.Errorf("expected env override, got %q", cfg.Client.BaseURL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigBrokenFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "broken.yml")
	if err := os.WriteFile(configPath, []byte("client: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("broken", &cfg, WithConfigFile(configPath)); err == nil {
		t.Fatal("expected an error for an unparsable config file")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool        { return m.files[path] }
func (m *mockFS) LoadEnv(string) error           { return nil }
func (m *mockFS) UserConfigDir() (string, error) { return "/home/u/.config", nil }

func TestResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]bool
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "local yml",
			files:      map[string]bool{"./restclient.yml": true, ".env": true},
			wantConfig: "./restclient.yml",
			wantEnv:    ".env",
		},
		{
			name:       "config dir toml",
			files:      map[string]bool{"./config/restclient.toml": true, ".env.restclient": true},
			wantConfig: "./config/restclient.toml",
			wantEnv:    ".env.restclient",
		},
		{
			name:       "user config dir",
			files:      map[string]bool{filepath.Join("/home/u/.config", "restclient", "config.yml"): true},
			wantConfig: filepath.Join("/home/u/.config", "restclient", "config.yml"),
		},
		{
			name: "nothing found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &mockFS{files: tt.files}}
			got := r.ResolveFiles("restclient", LoaderConfig{})
			if got.ConfigFile != tt.wantConfig {
				t.Errorf("config: expected %q, got %q", tt.wantConfig, got.ConfigFile)
			}
			if got.EnvFile != tt.wantEnv {
				t.Errorf("env: expected %q, got %q", tt.wantEnv, got.EnvFile)
			}
		})
	}
}

func TestEnvKeyAndPrefix(t *testing.T) {
	if got := EnvPrefix("rest-client"); got != "REST_CLIENT_" {
		t.Errorf("expected REST_CLIENT_, got %q", got)
	}
	if got := EnvKey("CLIENT__CIRCUIT_BREAKER__MAX_FAILURES"); got != "client.circuit_breaker.max_failures" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("X_")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" || lc.EnvPrefix != "X_" {
		t.Errorf("unexpected loader config: %+v", lc)
	}
}
