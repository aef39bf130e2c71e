package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"IRIS_BACKEND", "IRIS_FETCH_TIMEOUT", "IRIS_MAX_IMAGE_BYTES",
		"IRIS_REJECT_THRESHOLD", "IRIS_ACCEPT_THRESHOLD",
		"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY", "AZURE_BLOB_ENDPOINT",
		"IRIS_ALLOWED_HOSTS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got: %v", err)
	}

	if cfg.Backend != BackendNative {
		t.Errorf("Expected backend %q, got %q", BackendNative, cfg.Backend)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected 15s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.RejectThreshold != 30.0 || cfg.AcceptThreshold != 75.0 {
		t.Errorf("Expected thresholds 30/75, got %.1f/%.1f", cfg.RejectThreshold, cfg.AcceptThreshold)
	}
	if cfg.AzureEnabled() {
		t.Error("Expected Azure to be disabled without credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("IRIS_BACKEND", " OpenCV ")
	t.Setenv("IRIS_FETCH_TIMEOUT", "3s")
	t.Setenv("IRIS_REJECT_THRESHOLD", "25")
	t.Setenv("IRIS_ACCEPT_THRESHOLD", "80.5")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "irisdb")
	t.Setenv("AZURE_STORAGE_KEY", "c2VjcmV0")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected overrides to load, got: %v", err)
	}
	if cfg.Backend != BackendOpenCV {
		t.Errorf("Expected backend %q, got %q", BackendOpenCV, cfg.Backend)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.FetchTimeout)
	}
	if cfg.RejectThreshold != 25 || cfg.AcceptThreshold != 80.5 {
		t.Errorf("Expected 25/80.5, got %.1f/%.1f", cfg.RejectThreshold, cfg.AcceptThreshold)
	}
	if !cfg.AzureEnabled() {
		t.Error("Expected Azure to be enabled")
	}
}

func TestLoadFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("IRIS_FETCH_TIMEOUT", "soon")
	t.Setenv("IRIS_ACCEPT_THRESHOLD", "high")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected unparsable values to fall back to defaults, got: %v", err)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected default timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.AcceptThreshold != 75.0 {
		t.Errorf("Expected default accept threshold, got %.1f", cfg.AcceptThreshold)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Backend:         BackendNative,
			FetchTimeout:    time.Second,
			MaxImageBytes:   1024,
			RejectThreshold: 30,
			AcceptThreshold: 75,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Backend = "cuda" }, "invalid IRIS_BACKEND"},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, "IRIS_FETCH_TIMEOUT"},
		{"zero size", func(c *Config) { c.MaxImageBytes = 0 }, "IRIS_MAX_IMAGE_BYTES"},
		{"reject above accept", func(c *Config) { c.RejectThreshold = 80 }, "thresholds"},
		{"accept above 100", func(c *Config) { c.AcceptThreshold = 101 }, "thresholds"},
		{"negative reject", func(c *Config) { c.RejectThreshold = -1 }, "thresholds"},
		{"equal thresholds", func(c *Config) { c.RejectThreshold = 75 }, ""},
		{"account without key", func(c *Config) { c.AzureAccountName = "irisdb" }, "AZURE_STORAGE_ACCOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromEnv_OptionsApplyBeforeValidation(t *testing.T) {
	t.Setenv("IRIS_BACKEND", "cuda")
	t.Setenv("LOG_LEVEL", "error")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("Expected an invalid backend to fail without an override")
	}

	cfg, err := LoadFromEnv(WithBackend(" OPENCV "), WithLogLevel("debug"))
	if err != nil {
		t.Fatalf("Expected the override to fix the backend, got: %v", err)
	}
	if cfg.Backend != BackendOpenCV || cfg.LogLevel != "debug" {
		t.Errorf("Expected opencv/debug, got %s/%s", cfg.Backend, cfg.LogLevel)
	}

	t.Setenv("IRIS_BACKEND", "native")
	cfg, err = LoadFromEnv(WithBackend(""), WithLogLevel(""))
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Backend != BackendNative || cfg.LogLevel != "error" {
		t.Errorf("Expected empty overrides to keep native/error, got %s/%s", cfg.Backend, cfg.LogLevel)
	}
}

func TestLoadFromEnv_AllowedHosts(t *testing.T) {
	t.Setenv("IRIS_ALLOWED_HOSTS", " images.example.com, ,CDN.Example.com ")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	want := []string{"images.example.com", "cdn.example.com"}
	if strings.Join(cfg.AllowedHosts, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, cfg.AllowedHosts)
	}

	for _, bad := range []string{"https://images.example.com", "images.example.com:8080", "a/b"} {
		t.Setenv("IRIS_ALLOWED_HOSTS", bad)
		if _, err := LoadFromEnv(); err == nil || !strings.Contains(err.Error(), "IRIS_ALLOWED_HOSTS") {
			t.Errorf("Expected %q to be rejected, got: %v", bad, err)
		}
	}
}
