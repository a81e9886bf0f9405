package commands

import (
	"os"
	"testing"

	"github.com/diogo/localchat/internal/history"
)

func TestHistoryCommand_Subcommands(t *testing.T) {
	expected := []string{"list", "show", "delete", "clear", "export", "search"}
	for _, sub := range expected {
		found := false
		for _, cmd := range historyCmd.Commands() {
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

func seedConversation(t *testing.T) *history.Conversation {
	t.Helper()

	store, err := history.DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore failed: %v", err)
	}

	conv, err := store.CreateConversation("qwen2.5-7b-instruct")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if err := store.AddMessage(conv.ID, "user", "what is a goroutine?"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if err := store.AddMessage(conv.ID, "assistant", "A lightweight thread managed by the Go runtime."); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	return conv
}

func TestHistoryListAndClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	seedConversation(t)

	if err := runHistoryList(historyListCmd, nil); err != nil {
		t.Fatalf("runHistoryList failed: %v", err)
	}

	if err := runHistoryClear(historyClearCmd, nil); err != nil {
		t.Fatalf("runHistoryClear failed: %v", err)
	}

	store, err := history.DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore failed: %v", err)
	}
	convs, err := store.ListConversations()
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 0 {
		t.Errorf("expected empty history after clear, got %d conversations", len(convs))
	}
}

func TestHistoryShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	conv := seedConversation(t)

	if err := runHistoryShow(historyShowCmd, []string{conv.ID}); err != nil {
		t.Fatalf("runHistoryShow failed: %v", err)
	}

	if err := runHistoryShow(historyShowCmd, []string{"missing"}); err == nil {
		t.Error("expected error for unknown conversation")
	}
}

func TestHistoryDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	conv := seedConversation(t)

	if err := runHistoryDelete(historyDeleteCmd, []string{conv.ID}); err != nil {
		t.Fatalf("runHistoryDelete failed: %v", err)
	}

	store, _ := history.DefaultStore()
	if _, err := store.GetConversation(conv.ID); err == nil {
		t.Error("conversation should be gone after delete")
	}
}

func TestHistoryExportToFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	conv := seedConversation(t)

	oldFormat, oldOutput := exportFormatFlag, exportOutputFlag
	defer func() { exportFormatFlag, exportOutputFlag = oldFormat, oldOutput }()

	exportFormatFlag = "markdown"
	exportOutputFlag = t.TempDir() + "/export.md"

	if err := runHistoryExport(historyExportCmd, []string{conv.ID}); err != nil {
		t.Fatalf("runHistoryExport failed: %v", err)
	}

	data, err := os.ReadFile(exportOutputFlag)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("export file is empty")
	}
}

func TestHistoryExportRejectsUnknownFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	conv := seedConversation(t)

	oldFormat := exportFormatFlag
	defer func() { exportFormatFlag = oldFormat }()

	exportFormatFlag = "pdf"
	if err := runHistoryExport(historyExportCmd, []string{conv.ID}); err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestHistorySearch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	seedConversation(t)

	oldContent := searchContentFlag
	defer func() { searchContentFlag = oldContent }()
	searchContentFlag = true

	if err := runHistorySearch(historySearchCmd, []string{"goroutine"}); err != nil {
		t.Fatalf("runHistorySearch failed: %v", err)
	}
}
