package vectorstore

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// ChromemStore is an embedded vector index backed by chromem-go. Embeddings
// are computed upstream, so the collection carries no embedding function.
type ChromemStore struct {
	db  *chromem.DB
	col *chromem.Collection
	mu  sync.RWMutex
}

func NewChromemStore(collection string) (*ChromemStore, error) {
	db := chromem.NewDB()

	col, err := db.CreateCollection(collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &ChromemStore{db: db, col: col}, nil
}

// AddChunks indexes the chunks. Chunks without an embedding are skipped.
func (s *ChromemStore) AddChunks(ctx context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			logrus.WithField("chunk", chunk.ID).Warn("[VECTOR] Skipping chunk without embedding")
			continue
		}

		doc := chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Embedding: chunk.Embedding,
			Metadata:  chunk.Metadata,
		}
		if err := s.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add document %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// Search returns chunks with cosine similarity at or above threshold,
// most similar first, at most limit entries.
func (s *ChromemStore) Search(ctx context.Context, embedding []float32, threshold float32, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem rejects nResults larger than the collection size.
	n := limit
	if count := s.col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := s.col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(results))
	for _, result := range results {
		if result.Similarity < threshold {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         result.ID,
			Content:    result.Content,
			Metadata:   result.Metadata,
			Similarity: result.Similarity,
		})
	}

	logrus.WithFields(logrus.Fields{
		"matches":   len(chunks),
		"threshold": threshold,
	}).Debug("[VECTOR] Similarity search completed")

	return chunks, nil
}
