package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/render"
)

func newTestConfigModel(t *testing.T) ConfigModel {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	m := NewConfigModel()
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return sized.(ConfigModel)
}

func TestConfigNavigationWraps(t *testing.T) {
	m := newTestConfigModel(t)

	updated, _ := m.Update(keyMsg("k"))
	m = updated.(ConfigModel)
	if m.cursor != menuItemCount-1 {
		t.Errorf("cursor = %d, want wrap to %d", m.cursor, menuItemCount-1)
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(ConfigModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestConfigToggleClipboard(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuClipboard

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	if !m.config.CopyToClipboard {
		t.Error("toggle did not enable clipboard copy")
	}

	saved, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !saved.CopyToClipboard {
		t.Error("toggle not persisted")
	}
}

func TestConfigEditModel(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuDefaultModel

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)
	if !m.editing {
		t.Fatal("enter did not start editing")
	}

	// clear the prefilled value, then type a new one
	for range m.editValue {
		u, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		m = u.(ConfigModel)
	}
	for _, r := range "phi-4-mini" {
		u, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = u.(ConfigModel)
	}

	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	if m.editing {
		t.Error("editing not finished after commit")
	}
	if m.config.DefaultModel != "phi-4-mini" {
		t.Errorf("model = %q, want phi-4-mini", m.config.DefaultModel)
	}

	saved, _ := config.LoadConfig()
	if saved.DefaultModel != "phi-4-mini" {
		t.Error("edited model not persisted")
	}
}

func TestConfigEditTemperatureRejectsInvalid(t *testing.T) {
	m := newTestConfigModel(t)
	before := m.config.Temperature

	m.cursor = menuTemperature
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	for range m.editValue {
		u, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		m = u.(ConfigModel)
	}
	for _, r := range "hot" {
		u, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = u.(ConfigModel)
	}
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	if m.config.Temperature != before {
		t.Errorf("invalid temperature accepted: %v", m.config.Temperature)
	}
	if m.feedback == "" {
		t.Error("no feedback for invalid temperature")
	}
}

func TestConfigEscDiscardsEdit(t *testing.T) {
	m := newTestConfigModel(t)
	before := m.config.DefaultModel

	m.cursor = menuDefaultModel
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	for _, r := range "junk" {
		u, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = u.(ConfigModel)
	}
	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(ConfigModel)

	if m.editing {
		t.Error("editing not cancelled")
	}
	if m.config.DefaultModel != before {
		t.Error("discarded edit changed the config")
	}
}

func TestConfigStyleSelect(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuMarkdownStyle

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)
	if m.view != viewStyleSelect {
		t.Fatal("style menu did not open")
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(ConfigModel)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	if m.view != viewMain {
		t.Error("style select did not return to main view")
	}
	want := render.StyleNames()[1]
	if m.config.Markdown.Style != want {
		t.Errorf("style = %q, want %q", m.config.Markdown.Style, want)
	}
}

func TestConfigTUIThemeSelect(t *testing.T) {
	m := newTestConfigModel(t)
	m.cursor = menuTUITheme

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)
	if m.view != viewTUIThemeSelect {
		t.Fatal("theme menu did not open")
	}

	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(ConfigModel)

	if m.config.TUITheme != render.TUIThemeNames()[m.tuiThemeCursor] {
		t.Errorf("theme not applied: %q", m.config.TUITheme)
	}
}

func TestConfigViewShowsValues(t *testing.T) {
	m := newTestConfigModel(t)
	m.config.DefaultModel = "shown-model"

	view := m.View()
	if !strings.Contains(view, "shown-model") {
		t.Error("view missing default model value")
	}
	if !strings.Contains(view, "Engine URL") {
		t.Error("view missing engine URL entry")
	}
}
