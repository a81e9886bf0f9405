package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/localchat/internal/history"
	"github.com/diogo/localchat/internal/models"
)

func newSelectorWithConversations(t *testing.T, titles ...string) (HistorySelectorModel, *history.Store) {
	t.Helper()

	store, err := history.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	for _, title := range titles {
		conv, err := store.CreateConversation("test-model")
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		if err := store.AddMessage(conv.ID, models.RoleUser, title); err != nil {
			t.Fatalf("AddMessage failed: %v", err)
		}
	}

	m := NewHistorySelectorModel(store, "test-model")
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = sized.(HistorySelectorModel)

	loaded := m.loadConversations()()
	updated, _ := m.Update(loaded)
	return updated.(HistorySelectorModel), store
}

func TestSelectorSelectNew(t *testing.T) {
	m, _ := newSelectorWithConversations(t, "first chat")

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(HistorySelectorModel)

	conv, isNew, confirmed := m.Result()
	if !confirmed {
		t.Error("selection not confirmed")
	}
	if !isNew || conv != nil {
		t.Error("cursor 0 should select a new conversation")
	}
}

func TestSelectorSelectExisting(t *testing.T) {
	m, _ := newSelectorWithConversations(t, "first chat")

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(HistorySelectorModel)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(HistorySelectorModel)

	conv, isNew, confirmed := m.Result()
	if !confirmed || isNew {
		t.Fatal("existing conversation not selected")
	}
	if conv == nil || conv.Title != "first chat" {
		t.Errorf("unexpected selection: %+v", conv)
	}
}

func TestSelectorNavigationWraps(t *testing.T) {
	m, _ := newSelectorWithConversations(t, "a", "b")

	updated, _ := m.Update(keyMsg("k"))
	m = updated.(HistorySelectorModel)
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want wrap to 2", m.cursor)
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(HistorySelectorModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestSelectorDelete(t *testing.T) {
	m, store := newSelectorWithConversations(t, "doomed")

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(HistorySelectorModel)
	updated, cmd := m.Update(keyMsg("d"))
	m = updated.(HistorySelectorModel)

	if cmd == nil {
		t.Fatal("delete should trigger a reload")
	}
	updated, _ = m.Update(cmd())
	m = updated.(HistorySelectorModel)

	if len(m.conversations) != 0 {
		t.Errorf("conversation not deleted: %d remain", len(m.conversations))
	}

	remaining, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Error("conversation still on disk")
	}
}

func TestSelectorQuitWithoutSelection(t *testing.T) {
	m, _ := newSelectorWithConversations(t)

	_, cmd := m.Update(keyMsg("esc"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	_, _, confirmed := m.Result()
	if confirmed {
		t.Error("quit should not confirm a selection")
	}
}
