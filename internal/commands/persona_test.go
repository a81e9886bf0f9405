package commands

import (
	"testing"

	"github.com/diogo/localchat/internal/config"
)

func TestPersonaCommand_Subcommands(t *testing.T) {
	if personaCmd.Use != "persona" {
		t.Errorf("Expected use 'persona', got %s", personaCmd.Use)
	}

	expected := []string{"list", "show", "add", "delete", "default"}
	for _, sub := range expected {
		found := false
		for _, cmd := range personaCmd.Commands() {
			if cmd.Name() == sub {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Subcommand %s not found", sub)
		}
	}
}

func TestPersonaList(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := runPersonaList(personaListCmd, nil); err != nil {
		t.Fatalf("runPersonaList failed: %v", err)
	}
}

func TestPersonaShowAndDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := config.Persona{
		Name:         "reviewer",
		Description:  "Code review assistant",
		SystemPrompt: "You review Go code for correctness.",
	}
	if err := config.AddPersona(p); err != nil {
		t.Fatalf("AddPersona failed: %v", err)
	}

	if err := runPersonaShow(personaShowCmd, []string{"reviewer"}); err != nil {
		t.Fatalf("runPersonaShow failed: %v", err)
	}

	if err := runPersonaDelete(personaDeleteCmd, []string{"reviewer"}); err != nil {
		t.Fatalf("runPersonaDelete failed: %v", err)
	}

	if err := runPersonaShow(personaShowCmd, []string{"reviewer"}); err == nil {
		t.Error("expected error showing deleted persona")
	}
}

func TestPersonaSetDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := config.Persona{Name: "terse", Description: "Short answers", SystemPrompt: "Be terse."}
	if err := config.AddPersona(p); err != nil {
		t.Fatalf("AddPersona failed: %v", err)
	}

	if err := runPersonaSetDefault(personaSetDefaultCmd, []string{"terse"}); err != nil {
		t.Fatalf("runPersonaSetDefault failed: %v", err)
	}

	got, err := config.GetDefaultPersona()
	if err != nil {
		t.Fatalf("GetDefaultPersona failed: %v", err)
	}
	if got.Name != "terse" {
		t.Errorf("default persona = %q, want terse", got.Name)
	}
}
