package commands

import (
	"testing"

	"github.com/diogo/localchat/internal/config"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := rootCmd
	if cmd.Use != "localchat [prompt]" {
		t.Errorf("Expected use 'localchat [prompt]', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCommand_Args(t *testing.T) {
	// Argument validation (cobra.MaximumNArgs(1)) is handled by Cobra,
	// here we only check it is configured
	if rootCmd.Args == nil {
		t.Error("Args validation should be configured")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	expected := []string{"chat", "config", "models", "history", "persona"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Subcommand %s not found", name)
		}
	}
}

func TestGetModel_FlagTakesPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	oldFlag := modelFlag
	defer func() { modelFlag = oldFlag }()

	modelFlag = "qwen2.5-7b-instruct"
	if got := getModel(); got != "qwen2.5-7b-instruct" {
		t.Errorf("getModel() = %q, want flag value", got)
	}
}

func TestGetModel_FallsBackToConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	oldFlag := modelFlag
	defer func() { modelFlag = oldFlag }()
	modelFlag = ""

	cfg := config.DefaultConfig()
	cfg.DefaultModel = "phi-4-mini"
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if got := getModel(); got != "phi-4-mini" {
		t.Errorf("getModel() = %q, want config value", got)
	}
}

func TestGetTemperature(t *testing.T) {
	oldFlag := temperatureFlag
	defer func() { temperatureFlag = oldFlag }()

	cfg := config.DefaultConfig()
	cfg.Temperature = 0.7

	temperatureFlag = -1
	if got := getTemperature(cfg); got != 0.7 {
		t.Errorf("getTemperature() = %v, want config value 0.7", got)
	}

	temperatureFlag = 0.2
	if got := getTemperature(cfg); got != 0.2 {
		t.Errorf("getTemperature() = %v, want flag value 0.2", got)
	}

	// Zero is a valid explicit temperature
	temperatureFlag = 0
	if got := getTemperature(cfg); got != 0 {
		t.Errorf("getTemperature() = %v, want explicit 0", got)
	}
}

func TestNewEngineClient_DefaultURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EngineURL = ""

	client := newEngineClient(cfg)
	if client.BaseURL() == "" {
		t.Error("client should fall back to the default engine URL")
	}
}

func TestNewEngineClient_ConfigURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EngineURL = "http://localhost:9999"

	client := newEngineClient(cfg)
	if client.BaseURL() != "http://localhost:9999" {
		t.Errorf("BaseURL() = %q, want config value", client.BaseURL())
	}
}
