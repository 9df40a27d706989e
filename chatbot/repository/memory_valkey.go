package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/turinglabs/kbchat/chatbot/domain"
	"github.com/turinglabs/kbchat/infrastructure/valkey"
)

// ValkeyConversationMemory implements domain.IConversationMemoryRepository
// using a Valkey list for the raw log and a string key for the summary.
type ValkeyConversationMemory struct {
	client *valkey.Client
}

func NewValkeyConversationMemory(client *valkey.Client) *ValkeyConversationMemory {
	return &ValkeyConversationMemory{client: client}
}

func (r *ValkeyConversationMemory) messagesKey(conversationID string) string {
	return r.client.Key("conversation", conversationID, "messages")
}

func (r *ValkeyConversationMemory) summaryKey(conversationID string) string {
	return r.client.Key("conversation", conversationID, "summary")
}

// AppendMessage pushes the message onto the log and slides the TTL.
func (r *ValkeyConversationMemory) AppendMessage(ctx context.Context, conversationID string, msg domain.Message, ttl time.Duration) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := r.messagesKey(conversationID)
	inner := r.client.Inner()

	if err := inner.Do(ctx, inner.B().Rpush().Key(key).Element(string(data)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if err := inner.Do(ctx, inner.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()).Error(); err != nil {
		return fmt.Errorf("failed to refresh conversation ttl: %w", err)
	}
	return nil
}

func (r *ValkeyConversationMemory) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	inner := r.client.Inner()
	cmd := inner.B().Lrange().Key(r.messagesKey(conversationID)).Start(0).Stop(-1).Build()

	raw, err := inner.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conversation history: %w", err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip malformed entries rather than failing the read
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (r *ValkeyConversationMemory) Summary(ctx context.Context, conversationID string) (string, bool, error) {
	inner := r.client.Inner()
	cmd := inner.B().Get().Key(r.summaryKey(conversationID)).Build()

	summary, err := inner.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read conversation summary: %w", err)
	}
	return summary, summary != "", nil
}

func (r *ValkeyConversationMemory) StoreSummary(ctx context.Context, conversationID, summary string, ttl time.Duration) error {
	inner := r.client.Inner()
	cmd := inner.B().Set().Key(r.summaryKey(conversationID)).Value(summary).Ex(ttl).Build()

	if err := inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store conversation summary: %w", err)
	}
	return nil
}

func (r *ValkeyConversationMemory) ClearMessages(ctx context.Context, conversationID string) error {
	inner := r.client.Inner()
	return inner.Do(ctx, inner.B().Del().Key(r.messagesKey(conversationID)).Build()).Error()
}

func (r *ValkeyConversationMemory) Clear(ctx context.Context, conversationID string) error {
	inner := r.client.Inner()
	cmd := inner.B().Del().Key(r.messagesKey(conversationID)).Key(r.summaryKey(conversationID)).Build()
	return inner.Do(ctx, cmd).Error()
}
