package history

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/localchat/internal/models"
)

func seededStore(t *testing.T) (*Store, string) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	conv, err := store.CreateConversation("llama-3.2-3b-instruct")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	_ = store.AddMessage(conv.ID, models.RoleUser, "What is Go?")
	_ = store.AddMessage(conv.ID, models.RoleAssistant, "A programming language.")
	return store, conv.ID
}

func TestExportToText(t *testing.T) {
	store, id := seededStore(t)

	out, err := store.ExportToText(id)
	if err != nil {
		t.Fatalf("ExportToText failed: %v", err)
	}

	want := "USER:\nWhat is Go?\n\nASSISTANT:\nA programming language.\n\n"
	if out != want {
		t.Errorf("ExportToText = %q, want %q", out, want)
	}
}

func TestExportToJSON(t *testing.T) {
	store, id := seededStore(t)

	data, err := store.ExportToJSON(id)
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	var records []models.Message
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Role != models.RoleUser || records[0].Content != "What is Go?" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Role != models.RoleAssistant || records[1].Content != "A programming language." {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	store, id := seededStore(t)

	out, err := store.ExportToMarkdown(id)
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}

	for _, want := range []string{"## User", "## Assistant", "What is Go?", "**Model:** llama-3.2-3b-instruct"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown export missing %q", want)
		}
	}
}

func TestExport_UnknownConversation(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if _, err := store.ExportToText("missing"); err == nil {
		t.Error("expected error for unknown conversation")
	}
	if _, err := store.ExportToJSON("missing"); err == nil {
		t.Error("expected error for unknown conversation")
	}
}

func TestParseExportFormat(t *testing.T) {
	for _, valid := range []string{"text", "json", "markdown"} {
		if _, err := ParseExportFormat(valid); err != nil {
			t.Errorf("ParseExportFormat(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseExportFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSearchConversations(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	conv1, _ := store.CreateConversation("m")
	_ = store.AddMessage(conv1.ID, models.RoleUser, "Tell me about goroutines")

	conv2, _ := store.CreateConversation("m")
	_ = store.AddMessage(conv2.ID, models.RoleUser, "Recipe ideas")
	_ = store.AddMessage(conv2.ID, models.RoleAssistant, "Try making goulash with paprika")

	// Title match
	results, err := store.SearchConversations("goroutines", false)
	if err != nil {
		t.Fatalf("SearchConversations failed: %v", err)
	}
	if len(results) != 1 || results[0].MatchField != "title" {
		t.Errorf("title search results = %+v", results)
	}

	// Content match
	results, err = store.SearchConversations("paprika", true)
	if err != nil {
		t.Fatalf("SearchConversations failed: %v", err)
	}
	if len(results) != 1 || results[0].MatchField != "content" || results[0].MatchIndex != 1 {
		t.Errorf("content search results = %+v", results)
	}
}
