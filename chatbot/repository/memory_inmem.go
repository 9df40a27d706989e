package repository

import (
	"context"
	"sync"
	"time"

	"github.com/turinglabs/kbchat/chatbot/domain"
)

type conversationState struct {
	messages  []domain.Message
	summary   string
	hasSum    bool
	expiresAt time.Time
}

// MemoryConversationStore is an in-memory implementation of
// domain.IConversationMemoryRepository. Used as fallback when Valkey is not
// enabled, and in tests.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversationState
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations: make(map[string]*conversationState),
	}
}

func (s *MemoryConversationStore) state(conversationID string) *conversationState {
	st, ok := s.conversations[conversationID]
	if !ok || time.Now().After(st.expiresAt) {
		st = &conversationState{}
		s.conversations[conversationID] = st
	}
	return st
}

func (s *MemoryConversationStore) AppendMessage(ctx context.Context, conversationID string, msg domain.Message, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(conversationID)
	st.messages = append(st.messages, msg)
	st.expiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryConversationStore) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.conversations[conversationID]
	if !ok || time.Now().After(st.expiresAt) {
		return nil, nil
	}
	out := make([]domain.Message, len(st.messages))
	copy(out, st.messages)
	return out, nil
}

func (s *MemoryConversationStore) Summary(ctx context.Context, conversationID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.conversations[conversationID]
	if !ok || time.Now().After(st.expiresAt) {
		return "", false, nil
	}
	return st.summary, st.hasSum, nil
}

func (s *MemoryConversationStore) StoreSummary(ctx context.Context, conversationID, summary string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(conversationID)
	st.summary = summary
	st.hasSum = true
	st.expiresAt = time.Now().Add(ttl)
	return nil
}

func (s *MemoryConversationStore) ClearMessages(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.conversations[conversationID]; ok {
		st.messages = nil
	}
	return nil
}

func (s *MemoryConversationStore) Clear(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, conversationID)
	return nil
}
