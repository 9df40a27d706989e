package repository

import (
	"context"
	"testing"
	"time"

	"github.com/turinglabs/kbchat/chatbot/domain"
)

func TestMemoryConversationStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationStore()

	msg := domain.Message{Role: domain.RoleUser, Content: "hello"}
	if err := store.AppendMessage(ctx, "conv-1", msg, time.Millisecond); err != nil {
		t.Fatalf("AppendMessage() error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	history, err := store.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected expired conversation, got %d messages", len(history))
	}
}

func TestMemoryConversationStore_SlidingTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationStore()

	msg := domain.Message{Role: domain.RoleUser, Content: "hello"}
	if err := store.AppendMessage(ctx, "conv-1", msg, 50*time.Millisecond); err != nil {
		t.Fatalf("AppendMessage() error: %v", err)
	}

	// Each write refreshes the expiry window.
	time.Sleep(30 * time.Millisecond)
	if err := store.AppendMessage(ctx, "conv-1", msg, 50*time.Millisecond); err != nil {
		t.Fatalf("AppendMessage() error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	history, err := store.History(ctx, "conv-1")
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages after TTL refresh, got %d", len(history))
	}
}

func TestMemoryConversationStore_ClearMessagesKeepsSummary(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryConversationStore()

	msg := domain.Message{Role: domain.RoleUser, Content: "hello"}
	if err := store.AppendMessage(ctx, "conv-1", msg, time.Hour); err != nil {
		t.Fatalf("AppendMessage() error: %v", err)
	}
	if err := store.StoreSummary(ctx, "conv-1", "a summary", time.Hour); err != nil {
		t.Fatalf("StoreSummary() error: %v", err)
	}

	if err := store.ClearMessages(ctx, "conv-1"); err != nil {
		t.Fatalf("ClearMessages() error: %v", err)
	}

	history, _ := store.History(ctx, "conv-1")
	if len(history) != 0 {
		t.Fatalf("expected empty log, got %d messages", len(history))
	}
	summary, ok, err := store.Summary(ctx, "conv-1")
	if err != nil || !ok || summary != "a summary" {
		t.Fatalf("summary lost after ClearMessages: %q ok=%v err=%v", summary, ok, err)
	}
}
