package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/render"
)

// configView represents the current view in the settings menu
type configView int

const (
	viewMain configView = iota
	viewStyleSelect    // markdown style
	viewTUIThemeSelect // TUI color theme
)

// Menu item indices for the main view
const (
	menuDefaultModel = iota
	menuTemperature
	menuSystemPrompt
	menuEngineURL
	menuMarkdownStyle
	menuTUITheme
	menuClipboard
	menuVerbose
	menuExit
	menuItemCount
)

// feedbackClearMsg clears transient feedback text
type feedbackClearMsg struct{}

// ConfigModel represents the settings TUI state
type ConfigModel struct {
	config    config.Config
	configDir string

	// Navigation
	view           configView
	cursor         int
	styleCursor    int
	tuiThemeCursor int

	// Inline text editing
	editing   bool
	editField int
	editValue string

	// Feedback
	feedback        string
	feedbackTimeout time.Duration

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewConfigModel creates a new settings TUI model
func NewConfigModel() ConfigModel {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	configDir, _ := config.GetConfigDir()

	styleCursor := 0
	currentStyle := cfg.Markdown.Style
	if currentStyle == "" {
		currentStyle = render.StyleDark
	}
	for i, s := range render.StyleNames() {
		if s == currentStyle {
			styleCursor = i
			break
		}
	}

	tuiThemeCursor := 0
	currentTUITheme := cfg.TUITheme
	if currentTUITheme == "" {
		currentTUITheme = "tokyonight"
	}
	for i, t := range render.TUIThemeNames() {
		if t == currentTUITheme {
			tuiThemeCursor = i
			break
		}
	}

	render.SetTUITheme(currentTUITheme)
	UpdateTheme()

	return ConfigModel{
		config:          cfg,
		configDir:       configDir,
		view:            viewMain,
		styleCursor:     styleCursor,
		tuiThemeCursor:  tuiThemeCursor,
		feedbackTimeout: 2 * time.Second,
	}
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
			} else {
				return m, tea.Quit
			}

		case "up", "k":
			switch m.view {
			case viewMain:
				m.cursor--
				if m.cursor < 0 {
					m.cursor = menuItemCount - 1
				}
			case viewStyleSelect:
				m.styleCursor--
				if m.styleCursor < 0 {
					m.styleCursor = len(render.StyleNames()) - 1
				}
			case viewTUIThemeSelect:
				m.tuiThemeCursor--
				if m.tuiThemeCursor < 0 {
					m.tuiThemeCursor = len(render.TUIThemeNames()) - 1
				}
			}

		case "down", "j":
			switch m.view {
			case viewMain:
				m.cursor++
				if m.cursor >= menuItemCount {
					m.cursor = 0
				}
			case viewStyleSelect:
				m.styleCursor++
				if m.styleCursor >= len(render.StyleNames()) {
					m.styleCursor = 0
				}
			case viewTUIThemeSelect:
				m.tuiThemeCursor++
				if m.tuiThemeCursor >= len(render.TUIThemeNames()) {
					m.tuiThemeCursor = 0
				}
			}

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// updateEditing handles keys while a text field is being edited
func (m ConfigModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.editing = false
		m.editValue = ""

	case "enter":
		return m.commitEdit()

	case "backspace":
		if len(m.editValue) > 0 {
			m.editValue = m.editValue[:len(m.editValue)-1]
		}

	default:
		if msg.Type == tea.KeyRunes || msg.String() == " " {
			m.editValue += msg.String()
		}
	}

	return m, nil
}

// commitEdit validates and saves the edited field
func (m ConfigModel) commitEdit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.editValue)
	m.editing = false
	m.editValue = ""

	switch m.editField {
	case menuDefaultModel:
		if value == "" {
			m.feedback = "Model name cannot be empty"
			return m, clearFeedback(m.feedbackTimeout)
		}
		m.config.DefaultModel = value

	case menuTemperature:
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil || temp < 0 || temp > 2 {
			m.feedback = "Temperature must be a number between 0 and 2"
			return m, clearFeedback(m.feedbackTimeout)
		}
		m.config.Temperature = temp

	case menuSystemPrompt:
		// empty clears the system prompt
		m.config.SystemPrompt = value

	case menuEngineURL:
		if value == "" {
			value = config.DefaultEngineURL
		}
		m.config.EngineURL = value
	}

	return m.save("Saved")
}

// save persists the config and reports feedback
func (m ConfigModel) save(okFeedback string) (tea.Model, tea.Cmd) {
	if err := config.SaveConfig(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = okFeedback
	}
	return m, clearFeedback(m.feedbackTimeout)
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewStyleSelect:
		style := render.StyleNames()[m.styleCursor]
		m.config.Markdown.Style = style
		m.view = viewMain
		return m.save(fmt.Sprintf("Markdown style set to %s", style))

	case viewTUIThemeSelect:
		theme := render.TUIThemeNames()[m.tuiThemeCursor]
		m.config.TUITheme = theme
		render.SetTUITheme(theme)
		UpdateTheme()
		m.view = viewMain
		return m.save(fmt.Sprintf("Theme set to %s", theme))
	}

	switch m.cursor {
	case menuDefaultModel:
		m.editing = true
		m.editField = menuDefaultModel
		m.editValue = m.config.DefaultModel

	case menuTemperature:
		m.editing = true
		m.editField = menuTemperature
		m.editValue = strconv.FormatFloat(m.config.Temperature, 'f', -1, 64)

	case menuSystemPrompt:
		m.editing = true
		m.editField = menuSystemPrompt
		m.editValue = m.config.SystemPrompt

	case menuEngineURL:
		m.editing = true
		m.editField = menuEngineURL
		m.editValue = m.config.EngineURL

	case menuMarkdownStyle:
		m.view = viewStyleSelect

	case menuTUITheme:
		m.view = viewTUIThemeSelect

	case menuClipboard:
		m.config.CopyToClipboard = !m.config.CopyToClipboard
		return m.save(fmt.Sprintf("Copy to clipboard %s", onOff(m.config.CopyToClipboard)))

	case menuVerbose:
		m.config.Verbose = !m.config.Verbose
		return m.save(fmt.Sprintf("Verbose output %s", onOff(m.config.Verbose)))

	case menuExit:
		return m, tea.Quit
	}

	return m, nil
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// View renders the settings menu
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Loading settings...")
	}

	switch m.view {
	case viewStyleSelect:
		return m.renderStyleSelect()
	case viewTUIThemeSelect:
		return m.renderTUIThemeSelect()
	default:
		return m.renderMain()
	}
}

func (m ConfigModel) renderMain() string {
	var content strings.Builder

	content.WriteString(configTitleStyle.Render("◆ localchat settings"))
	content.WriteString("\n")
	content.WriteString(hintStyle.Render("  " + m.configDir))
	content.WriteString("\n\n")

	systemPrompt := m.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "(none)"
	} else if len(systemPrompt) > 40 {
		systemPrompt = systemPrompt[:37] + "..."
	}

	items := []struct {
		label string
		value string
	}{
		{"Default model", m.config.DefaultModel},
		{"Temperature", strconv.FormatFloat(m.config.Temperature, 'f', -1, 64)},
		{"System prompt", systemPrompt},
		{"Engine URL", m.config.EngineURL},
		{"Markdown style", m.config.Markdown.Style},
		{"TUI theme", m.config.TUITheme},
		{"Copy to clipboard", onOff(m.config.CopyToClipboard)},
		{"Verbose", onOff(m.config.Verbose)},
		{"Exit", ""},
	}

	for i, item := range items {
		cursor := "  "
		labelStyle := configMenuItemStyle
		if i == m.cursor {
			cursor = configCursorStyle.Render("▸ ")
			labelStyle = configMenuSelectedStyle
		}

		line := cursor + labelStyle.Render(item.label)
		if m.editing && m.editField == i && i == m.cursor {
			line += configValueStyle.Render(": ") + m.editValue + "_"
		} else if item.value != "" {
			line += configValueStyle.Render(": " + item.value)
		}

		content.WriteString(line)
		content.WriteString("\n")
	}

	if m.feedback != "" {
		content.WriteString(configFeedbackStyle.Render("\n" + m.feedback))
	}

	var shortcuts []string
	if m.editing {
		shortcuts = []string{
			statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Save"),
			statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Discard"),
		}
	} else {
		shortcuts = []string{
			statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
			statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
			statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Quit"),
		}
	}
	content.WriteString(configStatusBarStyle.Render("\n" + strings.Join(shortcuts, "  │  ")))

	return configPanelStyle.Render(content.String())
}

func (m ConfigModel) renderStyleSelect() string {
	var content strings.Builder
	content.WriteString(configTitleStyle.Render("◆ Markdown style"))
	content.WriteString("\n\n")

	for i, style := range render.AvailableStyles() {
		cursor := "  "
		nameStyle := configMenuItemStyle
		if i == m.styleCursor {
			cursor = configCursorStyle.Render("▸ ")
			nameStyle = configMenuSelectedStyle
		}
		marker := ""
		if style.Name == m.config.Markdown.Style {
			marker = configValueStyle.Render("  (current)")
		}
		content.WriteString(fmt.Sprintf("%s%s%s\n  %s\n",
			cursor,
			nameStyle.Render(style.Name),
			marker,
			hintStyle.Render(style.Description),
		))
	}

	content.WriteString(configStatusBarStyle.Render("\nEnter Select  │  Esc Back"))
	return configPanelStyle.Render(content.String())
}

func (m ConfigModel) renderTUIThemeSelect() string {
	var content strings.Builder
	content.WriteString(configTitleStyle.Render("◆ TUI theme"))
	content.WriteString("\n\n")

	for i, theme := range render.AvailableTUIThemes() {
		cursor := "  "
		nameStyle := configMenuItemStyle
		if i == m.tuiThemeCursor {
			cursor = configCursorStyle.Render("▸ ")
			nameStyle = configMenuSelectedStyle
		}
		marker := ""
		if theme.Name == m.config.TUITheme {
			marker = configValueStyle.Render("  (current)")
		}
		swatch := lipgloss.NewStyle().Foreground(theme.Primary).Render("●") +
			lipgloss.NewStyle().Foreground(theme.Secondary).Render("●") +
			lipgloss.NewStyle().Foreground(theme.Accent).Render("●")
		content.WriteString(fmt.Sprintf("%s%s %s%s\n  %s\n",
			cursor,
			nameStyle.Render(theme.Name),
			swatch,
			marker,
			hintStyle.Render(theme.Description),
		))
	}

	content.WriteString(configStatusBarStyle.Render("\nEnter Select  │  Esc Back"))
	return configPanelStyle.Render(content.String())
}

// RunConfig starts the settings TUI
func RunConfig() error {
	p := tea.NewProgram(NewConfigModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
