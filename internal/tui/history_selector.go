package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/localchat/internal/history"
)

// HistoryStore is the store surface the selector needs
type HistoryStore interface {
	ListConversations() ([]*history.Conversation, error)
	DeleteConversation(id string) error
}

// historyLoadedMsg is sent when conversations are loaded
type historyLoadedMsg struct {
	conversations []*history.Conversation
	err           error
}

// HistorySelectorModel lets the user resume a saved conversation or start
// a new one
type HistorySelectorModel struct {
	store     HistoryStore
	modelName string

	conversations []*history.Conversation
	cursor        int

	loading   bool
	err       error
	confirmed bool

	// Result
	selectedConv *history.Conversation // nil means new conversation
	isNewConv    bool

	width  int
	height int
	ready  bool
}

// NewHistorySelectorModel creates a new history selector model
func NewHistorySelectorModel(store HistoryStore, modelName string) HistorySelectorModel {
	return HistorySelectorModel{
		store:     store,
		modelName: modelName,
		loading:   true,
	}
}

// Init starts loading conversations
func (m HistorySelectorModel) Init() tea.Cmd {
	return m.loadConversations()
}

func (m HistorySelectorModel) loadConversations() tea.Cmd {
	return func() tea.Msg {
		conversations, err := m.store.ListConversations()
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		return historyLoadedMsg{conversations: conversations}
	}
}

// Update handles messages and updates the model
func (m HistorySelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.conversations = msg.conversations
			if m.cursor > len(m.conversations) {
				m.cursor = len(m.conversations)
			}
		}

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				// wrap past the leading "New Conversation" entry
				m.cursor = len(m.conversations)
			}

		case "down", "j":
			m.cursor++
			if m.cursor > len(m.conversations) {
				m.cursor = 0
			}

		case "enter":
			m.confirmed = true
			if m.cursor == 0 {
				m.isNewConv = true
				m.selectedConv = nil
			} else {
				m.isNewConv = false
				m.selectedConv = m.conversations[m.cursor-1]
			}
			return m, tea.Quit

		case "d":
			if m.cursor > 0 {
				conv := m.conversations[m.cursor-1]
				if err := m.store.DeleteConversation(conv.ID); err != nil {
					m.err = err
				} else {
					m.loading = true
					return m, m.loadConversations()
				}
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.conversations)
		}
	}

	return m, nil
}

// View renders the selector
func (m HistorySelectorModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.loading {
		return loadingStyle.Render("  Loading conversations...")
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	}

	var sections []string
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	title := configTitleStyle.Render("Select Conversation")
	subtitle := hintStyle.Render(fmt.Sprintf("  Model: %s", m.modelName))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center, title, subtitle))

	sections = append(sections, m.renderList(contentWidth))
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HistorySelectorModel) renderList(width int) string {
	var items []string

	items = append(items, m.renderItem(0, "+ New Conversation", "", time.Time{}, true))

	if len(m.conversations) == 0 {
		items = append(items, hintStyle.Render("  No saved conversations"))
	} else {
		availableHeight := m.height - 12
		maxItems := max(5, availableHeight/2)

		scrollOffset := 0
		if m.cursor >= maxItems {
			scrollOffset = m.cursor - maxItems + 1
		}

		endIdx := min(scrollOffset+maxItems, len(m.conversations)+1)

		for i := scrollOffset; i < endIdx; i++ {
			if i == 0 {
				continue
			}
			conv := m.conversations[i-1]
			items = append(items, m.renderItem(i, conv.Title, conv.Model, conv.UpdatedAt, false))
		}

		if scrollOffset > 0 {
			items = append([]string{hintStyle.Render("  ...")}, items...)
		}
		if endIdx < len(m.conversations)+1 {
			items = append(items, hintStyle.Render("  ..."))
		}
	}

	header := configSectionTitleStyle.Render("Conversations")
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{header, ""}, items...)...)
	return configPanelStyle.Width(width).Render(content)
}

func (m HistorySelectorModel) renderItem(index int, title, model string, updatedAt time.Time, isNew bool) string {
	cursor := "  "
	style := configMenuItemStyle
	if index == m.cursor {
		cursor = configCursorStyle.Render("> ")
		style = configMenuSelectedStyle
	}

	titleText := style.Render(title)
	if isNew {
		return cursor + titleText
	}

	timeStr := ""
	if !updatedAt.IsZero() {
		diff := time.Since(updatedAt)
		switch {
		case diff < time.Hour:
			timeStr = fmt.Sprintf("%dm ago", int(diff.Minutes()))
		case diff < 24*time.Hour:
			timeStr = fmt.Sprintf("%dh ago", int(diff.Hours()))
		case diff < 7*24*time.Hour:
			timeStr = fmt.Sprintf("%dd ago", int(diff.Hours()/24))
		default:
			timeStr = updatedAt.Format("Jan 2")
		}
	}

	modelInfo := ""
	if model != "" {
		modelInfo = hintStyle.Render(fmt.Sprintf(" [%s]", model))
	}

	timeInfo := ""
	if timeStr != "" {
		timeInfo = configValueStyle.Render(" - " + timeStr)
	}

	return cursor + titleText + modelInfo + timeInfo
}

func (m HistorySelectorModel) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"d", "Delete"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return configStatusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// Result returns the selected conversation (nil for new) and whether the
// user confirmed a selection
func (m HistorySelectorModel) Result() (*history.Conversation, bool, bool) {
	return m.selectedConv, m.isNewConv, m.confirmed
}

// HistorySelectorResult is the outcome of running the selector
type HistorySelectorResult struct {
	Conversation *history.Conversation // nil for new conversation
	IsNew        bool
	Confirmed    bool
}

// RunHistorySelector starts the selector TUI and returns the result
func RunHistorySelector(store HistoryStore, modelName string) (HistorySelectorResult, error) {
	m := NewHistorySelectorModel(store, modelName)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return HistorySelectorResult{}, err
	}

	if hm, ok := finalModel.(HistorySelectorModel); ok {
		conv, isNew, confirmed := hm.Result()
		return HistorySelectorResult{
			Conversation: conv,
			IsNew:        isNew,
			Confirmed:    confirmed,
		}, nil
	}

	return HistorySelectorResult{}, nil
}
