package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// summaryMarker prefixes the stored summary when it is injected as
// conversation context.
const summaryMarker = "Summary of earlier conversation: "

// ConversationMemoryService maintains the rolling conversation memory: an
// append-only message log per conversation that is compacted into a summary
// once it grows past the user-message threshold. A fresh log then accumulates
// next to the summary and both are combined at read time.
type ConversationMemoryService struct {
	repo      domain.IConversationMemoryRepository
	ttl       time.Duration
	threshold int
}

func NewConversationMemoryService(repo domain.IConversationMemoryRepository, ttl time.Duration, threshold int) *ConversationMemoryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if threshold <= 0 {
		threshold = 5
	}
	return &ConversationMemoryService{repo: repo, ttl: ttl, threshold: threshold}
}

// Threshold returns the user-message count that triggers compaction.
func (s *ConversationMemoryService) Threshold() int {
	return s.threshold
}

// AppendMessage appends to the raw log, sliding the conversation TTL.
func (s *ConversationMemoryService) AppendMessage(ctx context.Context, conversationID, role, content string) {
	msg := domain.Message{Role: role, Content: content}
	if err := s.repo.AppendMessage(ctx, conversationID, msg, s.ttl); err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to store conversation message")
	}
}

// GetHistory returns the raw log, oldest first.
func (s *ConversationMemoryService) GetHistory(ctx context.Context, conversationID string) []domain.Message {
	history, err := s.repo.History(ctx, conversationID)
	if err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to read conversation history")
		return nil
	}
	return history
}

// GetUserMessageCount counts messages with role=user in the raw log.
func (s *ConversationMemoryService) GetUserMessageCount(ctx context.Context, conversationID string) int {
	count := 0
	for _, msg := range s.GetHistory(ctx, conversationID) {
		if msg.Role == domain.RoleUser {
			count++
		}
	}
	return count
}

// GetSummary returns the stored summary, if any.
func (s *ConversationMemoryService) GetSummary(ctx context.Context, conversationID string) (string, bool) {
	summary, ok, err := s.repo.Summary(ctx, conversationID)
	if err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to read conversation summary")
		return "", false
	}
	return summary, ok
}

// SummarizeAndCompact replaces the raw log with a summary produced by the
// summarizer. The log is cleared only after the summary write succeeds; if
// summarization or the summary write fails, the raw log is kept unchanged so
// the conversation stays recoverable. A prior summary is folded into the
// transcript handed to the summarizer, so the new summary covers the whole
// conversation.
func (s *ConversationMemoryService) SummarizeAndCompact(ctx context.Context, conversationID string, summarizer domain.ISummarizer) {
	history := s.GetHistory(ctx, conversationID)
	if len(history) == 0 {
		return
	}

	transcript := formatTranscript(history)
	if prior, ok := s.GetSummary(ctx, conversationID); ok {
		transcript = summaryMarker + prior + "\n\n" + transcript
	}

	summary, err := summarizer.Summarize(ctx, transcript)
	if err != nil || strings.TrimSpace(summary) == "" {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Summarization failed, keeping raw log")
		return
	}

	if err := s.repo.StoreSummary(ctx, conversationID, summary, s.ttl); err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to store summary, keeping raw log")
		return
	}

	if err := s.repo.ClearMessages(ctx, conversationID); err != nil {
		// Summary is already persisted; the stale log is harmless and will
		// be dropped by the next successful compaction or TTL expiry.
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to clear raw log after compaction")
		return
	}

	logrus.WithField("conversation_id", conversationID).Info("[MEMORY] Conversation compacted into summary")
}

// GetContext builds the conversation context for generation: the summary
// (marker-prefixed) when one exists, followed by the recent raw transcript
// excluding the most recent entry, which is the just-appended current query.
// Empty string when the conversation has no usable history.
func (s *ConversationMemoryService) GetContext(ctx context.Context, conversationID string) string {
	var parts []string

	if summary, ok := s.GetSummary(ctx, conversationID); ok {
		parts = append(parts, summaryMarker+summary)
	}

	history := s.GetHistory(ctx, conversationID)
	if len(history) > 1 {
		parts = append(parts, formatTranscript(history[:len(history)-1]))
	}

	return strings.Join(parts, "\n\n")
}

// Clear removes both the raw log and the summary.
func (s *ConversationMemoryService) Clear(ctx context.Context, conversationID string) {
	if err := s.repo.Clear(ctx, conversationID); err != nil {
		logrus.WithError(err).WithField("conversation_id", conversationID).
			Warn("[MEMORY] Failed to clear conversation")
	}
}

func formatTranscript(messages []domain.Message) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", msg.Role, msg.Content)
	}
	return b.String()
}
