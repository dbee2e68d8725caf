package session_test

import (
	"fmt"
	"testing"

	"chat-relay/internal/model/chat"
	"chat-relay/internal/service/session"
)

func TestStoreAppendAndHistory(t *testing.T) {
	store := session.NewStore(0)

	store.Append("a", chat.RoleUser, "hello")
	store.Append("a", chat.RoleAssistant, "hi")
	store.Append("b", chat.RoleUser, "foo")

	turnsA := store.History("a")
	if len(turnsA) != 2 {
		t.Fatalf("unexpected history length: got %d want 2", len(turnsA))
	}
	if turnsA[0].Role != chat.RoleUser || turnsA[0].Content != "hello" {
		t.Fatalf("unexpected first turn: %+v", turnsA[0])
	}
	if turnsA[1].Role != chat.RoleAssistant || turnsA[1].Content != "hi" {
		t.Fatalf("unexpected second turn: %+v", turnsA[1])
	}

	if got := len(store.History("b")); got != 1 {
		t.Fatalf("session b history length: got %d want 1", got)
	}
	if store.Len() != 2 {
		t.Fatalf("unexpected session count: got %d want 2", store.Len())
	}
}

func TestStoreHistoryUnknownSession(t *testing.T) {
	store := session.NewStore(0)
	if turns := store.History("missing"); turns != nil {
		t.Fatalf("expected nil history for unknown session, got %v", turns)
	}
}

func TestStoreHistoryCopySemantics(t *testing.T) {
	store := session.NewStore(0)
	store.Append("a", chat.RoleUser, "original")

	turns := store.History("a")
	turns[0].Content = "mutated"

	if got := store.History("a")[0].Content; got != "original" {
		t.Fatalf("internal state mutated via returned slice: %q", got)
	}
}

func TestStoreEvictsOldestBeyondLimit(t *testing.T) {
	store := session.NewStore(0)

	for i := 0; i < 21; i++ {
		store.Append("s", chat.RoleUser, fmt.Sprintf("message %d", i))
	}

	turns := store.History("s")
	if len(turns) != session.DefaultLimit {
		t.Fatalf("history length: got %d want %d", len(turns), session.DefaultLimit)
	}
	// 21 appends against a cap of 20 drop exactly the first message.
	if turns[0].Content != "message 1" {
		t.Fatalf("oldest turn not evicted first: got %q", turns[0].Content)
	}
	if turns[len(turns)-1].Content != "message 20" {
		t.Fatalf("newest turn missing: got %q", turns[len(turns)-1].Content)
	}
}

func TestStoreCustomLimit(t *testing.T) {
	store := session.NewStore(3)

	for i := 0; i < 5; i++ {
		store.Append("s", chat.RoleUser, fmt.Sprintf("m%d", i))
	}

	turns := store.History("s")
	if len(turns) != 3 {
		t.Fatalf("history length: got %d want 3", len(turns))
	}
	if turns[0].Content != "m2" {
		t.Fatalf("unexpected oldest turn after eviction: %q", turns[0].Content)
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	store := session.NewStore(0)
	store.Append("a", chat.RoleUser, "hello")

	store.Clear("a")
	if store.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d sessions", store.Len())
	}

	// Clearing again, or clearing a session that never existed, must not fail.
	store.Clear("a")
	store.Clear("never-existed")
}
