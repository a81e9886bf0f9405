package render

import (
	"strings"
	"testing"

	"github.com/diogo/localchat/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != StyleDark {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
	if !opts.PreserveNewLines {
		t.Error("expected PreserveNewLines=true")
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle(StyleLight).
		WithEmoji(false).
		WithPreserveNewLines(false)

	if opts.Width != 100 {
		t.Errorf("expected Width=100, got %d", opts.Width)
	}
	if opts.Style != StyleLight {
		t.Errorf("expected Style='light', got %s", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("expected EnableEmoji=false")
	}
	if opts.PreserveNewLines {
		t.Error("expected PreserveNewLines=false")
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Heading\n\nSome *styled* text.", DefaultOptions())
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(out, "Heading") {
		t.Errorf("rendered output missing heading: %q", out)
	}
	if !strings.Contains(out, "styled") {
		t.Errorf("rendered output missing body text: %q", out)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	out, err := MarkdownWithWidth("plain text", 40)
	if err != nil {
		t.Fatalf("MarkdownWithWidth failed: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 80 {
			t.Errorf("line exceeds sane width: %q", line)
		}
	}
}

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{StyleTokyoNight, "tokyo-night"},
		{StyleDark, "dark"},
		{StyleDracula, "dracula"},
		{"/tmp/custom.json", "/tmp/custom.json"},
	}

	for _, tt := range tests {
		if got := resolveStyle(tt.in); got != tt.want {
			t.Errorf("resolveStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsBuiltinStyle(t *testing.T) {
	for _, name := range StyleNames() {
		if !IsBuiltinStyle(name) {
			t.Errorf("listed style %q not recognized as builtin", name)
		}
	}
	if IsBuiltinStyle("nonexistent") {
		t.Error("unknown style reported as builtin")
	}
}

func TestPoolReuse(t *testing.T) {
	ClearCache()

	opts := DefaultOptions().WithStyle(StyleNotty)
	if _, err := Markdown("one", opts); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if _, err := Markdown("two", opts); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("got %d pooled configurations, want 1", CacheSize())
	}

	if _, err := Markdown("three", opts.WithWidth(40)); err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("got %d pooled configurations, want 2", CacheSize())
	}
}

func TestTranscript(t *testing.T) {
	msgs := []models.Message{
		{Role: models.RoleSystem, Content: "be terse"},
		{Role: models.RoleUser, Content: "What is Go?"},
		{Role: models.RoleAssistant, Content: "A **programming** language."},
	}

	out := Transcript(msgs, DefaultOptions().WithStyle(StyleNotty))

	if !strings.Contains(out, "You:") {
		t.Error("missing user label")
	}
	if !strings.Contains(out, "What is Go?") {
		t.Error("missing user content")
	}
	if !strings.Contains(out, "Assistant:") {
		t.Error("missing assistant label")
	}
	if !strings.Contains(out, "programming") {
		t.Error("missing assistant content")
	}
	if strings.Contains(out, "be terse") {
		t.Error("system prompt leaked into transcript view")
	}
}

func TestLoadOptionsFromConfigEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GLAMOUR_STYLE", "notty")

	opts := LoadOptionsFromConfig()
	if opts.Style != "notty" {
		t.Errorf("got style %q, want env override 'notty'", opts.Style)
	}
}
