package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/localchat/internal/chat"
	"github.com/diogo/localchat/internal/config"
	"github.com/diogo/localchat/internal/engine"
	"github.com/diogo/localchat/internal/history"
	"github.com/diogo/localchat/internal/models"
	"github.com/diogo/localchat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// transcriptMsg carries the full transcript after a mutation
	transcriptMsg []models.Message

	// progressMsg carries one model load progress report
	progressMsg engine.Progress

	// sendDoneMsg is emitted when a send finishes, whatever the outcome
	sendDoneMsg struct {
		err error
	}

	// modelsLoadedMsg is sent when the engine's model list arrives
	modelsLoadedMsg struct {
		models []engine.ModelStatus
		err    error
	}
)

// ChatSession is the session surface the TUI drives
type ChatSession interface {
	Send(ctx context.Context, input string) error
	Stop()
	Clear() error
	Messages() []models.Message
	Busy() bool
}

// modelLister fetches the engine's model inventory
type modelLister interface {
	ListModels(ctx context.Context) ([]engine.ModelStatus, error)
}

// modelSwitcher resets the lifecycle so the next send loads a new model
type modelSwitcher interface {
	Reset()
}

// Model represents the chat TUI state
type Model struct {
	session  ChatSession
	lister   modelLister
	switcher modelSwitcher
	// session callbacks push transcript and progress events here
	events chan tea.Msg

	modelName string

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages       []models.Message
	loading        bool
	loadStatus     string
	ready          bool
	err            error
	animationFrame int

	// Model selection state
	selectingModel bool
	modelList      []engine.ModelStatus
	modelCursor    int
	modelsLoading  bool

	// Dimensions
	width  int
	height int
}

// NewChatModel wires a session to a fresh chat TUI. Transcript changes and
// load progress flow through the event channel into the update loop.
func NewChatModel(client *engine.Client, manager *engine.Manager, store *history.Store, conversationID, modelName string) Model {
	events := make(chan tea.Msg, 128)

	session := chat.NewSession(client, manager, store, conversationID,
		chat.WithUpdateFunc(func(msgs []models.Message) {
			events <- transcriptMsg(msgs)
		}),
		chat.WithProgressFunc(func(p engine.Progress) {
			events <- progressMsg(p)
		}),
	)

	return newChatModel(session, client, manager, modelName, events)
}

func newChatModel(session ChatSession, lister modelLister, switcher modelSwitcher, modelName string, events chan tea.Msg) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		session:   session,
		lister:    lister,
		switcher:  switcher,
		events:    events,
		modelName: modelName,
		textarea:  ta,
		spinner:   s,
		messages:  session.Messages(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.waitForEvent(),
	)
}

// waitForEvent blocks on the session event channel
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// startSend runs the generation in the command goroutine; transcript
// updates arrive through the event channel while it runs
func (m Model) startSend(input string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.session.Send(context.Background(), input)}
	}
}

// loadModelList fetches the engine's models for the selector overlay
func (m Model) loadModelList() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		list, err := m.lister.ListModels(ctx)
		return modelsLoadedMsg{models: list, err: err}
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.selectingModel {
		return m.updateModelSelection(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.loading {
				// fires the one-shot cancellation token; the send
				// finishes with the interruption marker in place
				m.session.Stop()
			} else {
				return m, tea.Quit
			}

		case "enter":
			if !m.loading {
				input := strings.TrimSpace(m.textarea.Value())
				if input == "" {
					break
				}

				switch input {
				case "exit", "quit", "/exit", "/quit":
					return m, tea.Quit
				case "/clear":
					m.textarea.Reset()
					m.err = m.session.Clear()
					return m, nil
				case "/models", "/model":
					m.textarea.Reset()
					m.selectingModel = true
					m.modelsLoading = true
					m.modelCursor = 0
					return m, m.loadModelList()
				}

				m.loading = true
				m.err = nil
				m.loadStatus = ""
				m.animationFrame = 0
				m.textarea.Reset()

				return m, tea.Batch(
					m.startSend(input),
					m.spinner.Tick,
					animationTick(),
				)
			}
		}

	case transcriptMsg:
		m.messages = msg
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForEvent())

	case progressMsg:
		m.loadStatus = formatProgress(engine.Progress(msg))
		cmds = append(cmds, m.waitForEvent())

	case sendDoneMsg:
		m.loading = false
		m.loadStatus = ""
		if msg.err != nil {
			m.err = msg.err
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// only pass KeyMsg to the textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.selectingModel {
		return m.renderModelSelector()
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{
		titleStyle.Render("◆ localchat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	header := headerStyle.Width(contentWidth).Render(headerContent)
	sections = append(sections, header)

	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
		if m.loadStatus != "" {
			inputContent += "\n" + progressStyle.Render("  "+m.loadStatus)
		}
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}

	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)
	sections = append(sections, inputPanel)

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("◆")
	title := welcomeTitleStyle.Width(width).Render("Welcome to localchat")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated activity indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render("█"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" generating ")
	hint := hintStyle.Render("(Esc to cancel)")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, hint)
}

// gradientColors for the animated activity bar
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Cancel/Quit"},
		{"/models", "Switch model"},
		{"/clear", "Clear"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("◆ " + m.modelName)

			rendered, err := render.MarkdownWithWidth(msg.Content, bubbleWidth-4)
			if err != nil {
				rendered = msg.Content
			}
			rendered = strings.TrimRight(rendered, "\n")

			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// formatProgress renders one load progress report as a status line
func formatProgress(p engine.Progress) string {
	if p.Failed {
		return "load failed: " + p.Status
	}
	if p.Fraction > 0 && p.Fraction < 1 {
		return fmt.Sprintf("loading model %3.0f%% %s", p.Fraction*100, p.Status)
	}
	return "loading model: " + p.Status
}

// updateModelSelection handles updates while the model selector is open
func (m Model) updateModelSelection(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case modelsLoadedMsg:
		m.modelsLoading = false
		if msg.err != nil {
			m.selectingModel = false
			m.err = msg.err
		} else {
			m.modelList = msg.models
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			m.selectingModel = false
			m.modelList = nil
			m.modelCursor = 0

		case "up", "k":
			if len(m.modelList) > 0 {
				m.modelCursor--
				if m.modelCursor < 0 {
					m.modelCursor = len(m.modelList) - 1
				}
			}

		case "down", "j":
			if len(m.modelList) > 0 {
				m.modelCursor++
				if m.modelCursor >= len(m.modelList) {
					m.modelCursor = 0
				}
			}

		case "enter":
			if len(m.modelList) > 0 && m.modelCursor < len(m.modelList) {
				selected := m.modelList[m.modelCursor]
				m.err = m.selectModel(selected.ID)
				m.selectingModel = false
				m.modelList = nil
				m.modelCursor = 0
			}
		}
	}

	return m, nil
}

// selectModel persists the choice and resets the lifecycle so the next
// send loads the newly selected model
func (m *Model) selectModel(modelID string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg.DefaultModel = modelID
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	m.modelName = modelID
	m.switcher.Reset()
	return nil
}

// renderModelSelector renders the model selection overlay
func (m Model) renderModelSelector() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder

	title := configTitleStyle.Render("◆ Select a model")
	if m.modelName != "" {
		title += hintStyle.Render(fmt.Sprintf("  (current: %s)", m.modelName))
	}
	content.WriteString(title)
	content.WriteString("\n\n")

	switch {
	case m.modelsLoading:
		content.WriteString(loadingStyle.Render("  Loading models..."))
	case len(m.modelList) == 0:
		content.WriteString(hintStyle.Render("  No models available"))
	default:
		for i, model := range m.modelList {
			cursor := "  "
			nameStyle := configMenuItemStyle
			if i == m.modelCursor {
				cursor = configCursorStyle.Render("▸ ")
				nameStyle = configMenuSelectedStyle
			}

			state := configValueStyle.Render("[" + model.Status + "]")
			if model.Loaded {
				state = configValueStyle.Render("[loaded]")
			}

			content.WriteString(fmt.Sprintf("%s%s %s\n", cursor, nameStyle.Render(model.ID), state))
		}
	}

	content.WriteString("\n")

	shortcuts := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Cancel"),
	}
	content.WriteString(strings.Join(shortcuts, "  │  "))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Width(width)

	return boxStyle.Render(content.String())
}

// RunChat starts the chat TUI
func RunChat(client *engine.Client, manager *engine.Manager, store *history.Store, conversationID, modelName string) error {
	m := NewChatModel(client, manager, store, conversationID, modelName)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
