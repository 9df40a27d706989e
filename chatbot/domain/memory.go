package domain

import (
	"context"
	"time"
)

// IConversationMemoryRepository is the raw backing store for per-conversation
// message logs and summaries. Both the log and the summary slide their TTL on
// every write; the memory service layers compaction semantics on top.
type IConversationMemoryRepository interface {
	// AppendMessage pushes a message onto the conversation log and
	// refreshes the log's TTL.
	AppendMessage(ctx context.Context, conversationID string, msg Message, ttl time.Duration) error

	// History returns the full log, oldest first. Empty slice if none.
	History(ctx context.Context, conversationID string) ([]Message, error)

	// Summary returns the stored summary and whether one exists.
	Summary(ctx context.Context, conversationID string) (string, bool, error)

	StoreSummary(ctx context.Context, conversationID, summary string, ttl time.Duration) error

	// ClearMessages deletes only the raw log, leaving any summary behind.
	ClearMessages(ctx context.Context, conversationID string) error

	// Clear deletes both the log and the summary.
	Clear(ctx context.Context, conversationID string) error
}
