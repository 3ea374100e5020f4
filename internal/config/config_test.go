package config

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// CONFIG FILE TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected Format=console, got %s", cfg.Logging.Format)
	}
	if len(cfg.Engines) != 0 {
		t.Errorf("expected no engine overrides, got %d", len(cfg.Engines))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SURVKIT_LOG_LEVEL", "")
	t.Setenv("SURVKIT_LOG_FORMAT", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "survkit.yaml")

	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Engines = []EngineConfig{{
		ID:        "aorsf",
		Package:   "aorsf",
		Strata:    "unsupported",
		Params:    map[string]string{"n_tree": "n_tree"},
		Predicts:  []string{"crank", "distr"},
		PathParam: "",
	}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", loaded.Logging.Level)
	}
	if len(loaded.Engines) != 1 || loaded.Engines[0].ID != "aorsf" {
		t.Fatalf("expected one engine aorsf, got %+v", loaded.Engines)
	}
	if loaded.Engines[0].Params["n_tree"] != "n_tree" {
		t.Errorf("params not round-tripped: %+v", loaded.Engines[0].Params)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("SURVKIT_LOG_LEVEL", "")
	t.Setenv("SURVKIT_LOG_FORMAT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got level %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging: [unclosed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"missing id", func(c *Config) { c.Engines = []EngineConfig{{Package: "x"}} }, true},
		{"duplicate id", func(c *Config) {
			c.Engines = []EngineConfig{{ID: "a"}, {ID: "a"}}
		}, true},
		{"bad strata", func(c *Config) { c.Engines = []EngineConfig{{ID: "a", Strata: "maybe"}} }, true},
		{"bad predict", func(c *Config) { c.Engines = []EngineConfig{{ID: "a", Predicts: []string{"risk"}}} }, true},
		{"valid engine", func(c *Config) {
			c.Engines = []EngineConfig{{ID: "a", Strata: "argument", Predicts: []string{"lp", "crank"}}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	if !lc.IsCategoryEnabled("formula") {
		t.Error("expected all categories enabled when no filter is set")
	}

	lc.Categories = map[string]bool{"formula": false, "engine": true}
	if lc.IsCategoryEnabled("formula") {
		t.Error("expected formula disabled")
	}
	if !lc.IsCategoryEnabled("engine") {
		t.Error("expected engine enabled")
	}
	if !lc.IsCategoryEnabled("config") {
		t.Error("expected unlisted category enabled")
	}
}
