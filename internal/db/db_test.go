package db

import (
	"context"
	"testing"
	"time"

	"github.com/clauselens/clauselens/internal/memory"
)

func mustOpen(t *testing.T) *DB {
	t.Helper()
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSaveAndLoadConversation(t *testing.T) {
	d := mustOpen(t)
	ctx := context.Background()

	turns := []memory.Turn{
		{
			Timestamp:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			UserInput:     "what does the termination clause say?",
			AgentResponse: "thirty days written notice",
			Context:       map[string]any{"action_taken": "retrieve"},
		},
		{
			Timestamp:     time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC),
			UserInput:     "and the payment terms?",
			AgentResponse: "invoices due in thirty days",
		},
	}

	if err := d.SaveConversation(ctx, "sess-1", "contract.pdf", turns); err != nil {
		t.Fatalf("SaveConversation() error: %v", err)
	}

	loaded, err := d.LoadConversation(ctx, "sess-1")
	if err != nil {
		t.Fatalf("LoadConversation() error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d turns, want 2", len(loaded))
	}
	if loaded[0].UserInput != turns[0].UserInput {
		t.Errorf("turn 0 input = %q", loaded[0].UserInput)
	}
	if !loaded[0].Timestamp.Equal(turns[0].Timestamp) {
		t.Errorf("turn 0 timestamp = %v, want %v", loaded[0].Timestamp, turns[0].Timestamp)
	}
	if loaded[0].Context["action_taken"] != "retrieve" {
		t.Errorf("turn 0 context = %v", loaded[0].Context)
	}
	if loaded[1].Context != nil {
		t.Errorf("turn 1 context = %v, want nil", loaded[1].Context)
	}
}

func TestSaveConversation_ReplacesPriorTurns(t *testing.T) {
	d := mustOpen(t)
	ctx := context.Background()

	first := []memory.Turn{{Timestamp: time.Now(), UserInput: "a", AgentResponse: "b"}}
	if err := d.SaveConversation(ctx, "sess-1", "doc.txt", first); err != nil {
		t.Fatal(err)
	}

	second := []memory.Turn{
		{Timestamp: time.Now(), UserInput: "c", AgentResponse: "d"},
		{Timestamp: time.Now(), UserInput: "e", AgentResponse: "f"},
	}
	if err := d.SaveConversation(ctx, "sess-1", "doc.txt", second); err != nil {
		t.Fatal(err)
	}

	loaded, err := d.LoadConversation(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].UserInput != "c" {
		t.Errorf("loaded = %+v, want the replacement turns", loaded)
	}
}

func TestLoadConversation_UnknownSession(t *testing.T) {
	d := mustOpen(t)

	loaded, err := d.LoadConversation(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadConversation() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d turns, want 0", len(loaded))
	}
}

func TestListSessions(t *testing.T) {
	d := mustOpen(t)
	ctx := context.Background()

	if err := d.SaveConversation(ctx, "sess-1", "a.pdf", nil); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveConversation(ctx, "sess-2", "b.pdf", nil); err != nil {
		t.Fatal(err)
	}

	records, err := d.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("listed %d sessions, want 2", len(records))
	}
	seen := map[string]string{}
	for _, rec := range records {
		seen[rec.ID] = rec.DocumentSource
	}
	if seen["sess-1"] != "a.pdf" || seen["sess-2"] != "b.pdf" {
		t.Errorf("sessions = %v", seen)
	}
}

func TestDeleteSession_CascadesTurns(t *testing.T) {
	d := mustOpen(t)
	ctx := context.Background()

	turns := []memory.Turn{{Timestamp: time.Now(), UserInput: "q", AgentResponse: "a"}}
	if err := d.SaveConversation(ctx, "sess-1", "doc.txt", turns); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}

	loaded, err := d.LoadConversation(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Errorf("turns survived session deletion: %d", len(loaded))
	}

	records, err := d.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("session survived deletion: %v", records)
	}
}
