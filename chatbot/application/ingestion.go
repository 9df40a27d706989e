package application

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"github.com/turinglabs/kbchat/pkg/textsplit"
)

// IDocumentRepository is the metadata store behind the ingestion pipeline.
type IDocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) (domain.Document, error)
	GetByID(ctx context.Context, id string) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// IngestionService turns a stored document into embedded chunks in the vector
// index. Unlike the chat pipeline, ingestion reports errors: a half-indexed
// document is worth surfacing to the operator.
type IngestionService struct {
	documents IDocumentRepository
	embedder  domain.IEmbeddingProvider
	index     domain.IVectorIndex
	splitter  *textsplit.Splitter
}

func NewIngestionService(documents IDocumentRepository, embedder domain.IEmbeddingProvider, index domain.IVectorIndex, chunkSize, chunkOverlap int) *IngestionService {
	return &IngestionService{
		documents: documents,
		embedder:  embedder,
		index:     index,
		splitter:  textsplit.NewSplitter(chunkSize, chunkOverlap),
	}
}

// IngestDocument loads, chunks, embeds and indexes one document. When content
// is empty the document's source_path is read from disk. Returns the number of
// chunks processed.
func (s *IngestionService) IngestDocument(ctx context.Context, docID, content string) (int, error) {
	doc, err := s.documents.GetByID(ctx, docID)
	if err != nil {
		return 0, err
	}

	if content == "" {
		data, err := os.ReadFile(doc.SourcePath)
		if err != nil {
			return 0, fmt.Errorf("failed to load document content: %w", err)
		}
		content = string(data)
	}

	logrus.WithFields(logrus.Fields{
		"document_id": docID,
		"title":       doc.Title,
		"size":        humanize.Bytes(uint64(len(content))),
	}).Info("[INGEST] Chunking document")

	pieces := s.splitter.Split(content)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("document %s produced no chunks", docID)
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		// Title prefix keeps chunk provenance visible to the model.
		text := fmt.Sprintf("[This content is from the %s] - %s", doc.Title, piece)

		embedding, err := s.embedder.Embed(ctx, text)
		if err != nil {
			logrus.WithError(err).WithField("chunk_index", i).
				Warn("[INGEST] Failed to embed chunk, skipping")
			continue
		}

		chunks = append(chunks, domain.Chunk{
			ID:        fmt.Sprintf("%s:%d", docID, i),
			Content:   text,
			Embedding: embedding,
			Metadata: map[string]string{
				"document_id": docID,
				"chunk_index": strconv.Itoa(i),
				"title":       doc.Title,
				"source_type": doc.SourceType,
				"source_path": doc.SourcePath,
			},
		})
	}

	if len(chunks) == 0 {
		return 0, fmt.Errorf("all chunks of document %s failed to embed", docID)
	}

	if err := s.index.AddChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"document_id": docID,
		"chunks":      len(chunks),
	}).Info("[INGEST] Document indexed")
	return len(chunks), nil
}
