package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultModel == "" {
		t.Error("DefaultModel is empty")
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.EngineURL != DefaultEngineURL {
		t.Errorf("EngineURL = %s, want %s", cfg.EngineURL, DefaultEngineURL)
	}
	if cfg.SystemPrompt != "" {
		t.Errorf("SystemPrompt = %q, want empty", cfg.SystemPrompt)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("GetConfigDir() returned relative path: %s", dir)
	}
	if filepath.Base(dir) != ".localchat" {
		t.Errorf("config dir = %s, want a .localchat directory", dir)
	}
}

func TestSaveLoadConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.DefaultModel = "m1"
	cfg.Temperature = 0.7
	cfg.SystemPrompt = "Be terse"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.DefaultModel != "m1" {
		t.Errorf("DefaultModel = %s, want m1", loaded.DefaultModel)
	}
	if loaded.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", loaded.Temperature)
	}
	if loaded.SystemPrompt != "Be terse" {
		t.Errorf("SystemPrompt = %q, want %q", loaded.SystemPrompt, "Be terse")
	}
}

func TestSaveConfig_ReplacesNotMerges(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	first := DefaultConfig()
	first.DefaultModel = "m1"
	first.Temperature = 0.7
	first.SystemPrompt = "Be terse"
	if err := SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	second := DefaultConfig()
	second.DefaultModel = "m2"
	second.Temperature = 1.2
	if err := SaveConfig(second); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.DefaultModel != "m2" {
		t.Errorf("DefaultModel = %s, want m2", loaded.DefaultModel)
	}
	if loaded.Temperature != 1.2 {
		t.Errorf("Temperature = %v, want 1.2", loaded.Temperature)
	}
	if loaded.SystemPrompt != "" {
		t.Errorf("SystemPrompt = %q, want empty (record replaced wholesale)", loaded.SystemPrompt)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DefaultModel != DefaultConfig().DefaultModel {
		t.Errorf("missing file should yield defaults, got model %s", cfg.DefaultModel)
	}
}

func TestLoadConfig_CorruptFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("corrupt config should be discarded silently, got error: %v", err)
	}
	if cfg.DefaultModel != DefaultConfig().DefaultModel {
		t.Errorf("corrupt file should yield defaults, got model %s", cfg.DefaultModel)
	}
}
