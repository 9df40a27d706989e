package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
)

type fakeDocumentRepo struct {
	docs map[string]domain.Document
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return domain.Document{}, pkgError.NotFoundError("document not found")
	}
	return doc, nil
}

func (f *fakeDocumentRepo) List(ctx context.Context) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

type capturingIndex struct {
	chunks []domain.Chunk
	err    error
}

func (c *capturingIndex) AddChunks(ctx context.Context, chunks []domain.Chunk) error {
	if c.err != nil {
		return c.err
	}
	c.chunks = append(c.chunks, chunks...)
	return nil
}

// flakyEmbedder fails every fail-th call.
type flakyEmbedder struct {
	calls int
	fail  int
}

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.fail > 0 && f.calls%f.fail == 0 {
		return nil, assert.AnError
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestIngestDocument_ChunksAndIndexes(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocumentRepo{docs: map[string]domain.Document{
		"doc-1": {ID: "doc-1", Title: "Employee Handbook", SourceType: "text"},
	}}
	index := &capturingIndex{}
	svc := NewIngestionService(docs, &flakyEmbedder{}, index, 50, 10)

	content := strings.Repeat("Employees accrue leave monthly. ", 10)
	n, err := svc.IngestDocument(ctx, "doc-1", content)
	require.NoError(t, err)
	require.Greater(t, n, 1)
	require.Len(t, index.chunks, n)

	for _, chunk := range index.chunks {
		assert.True(t, strings.HasPrefix(chunk.Content, "[This content is from the Employee Handbook] - "),
			"chunk missing title prefix: %q", chunk.Content)
		assert.NotEmpty(t, chunk.Embedding)
		assert.Equal(t, "doc-1", chunk.Metadata["document_id"])
	}
}

func TestIngestDocument_UnknownDocument(t *testing.T) {
	ctx := context.Background()
	svc := NewIngestionService(&fakeDocumentRepo{docs: map[string]domain.Document{}}, &flakyEmbedder{}, &capturingIndex{}, 50, 10)

	_, err := svc.IngestDocument(ctx, "missing", "content")
	assert.Error(t, err)
}

func TestIngestDocument_EmbedFailureSkipsChunk(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocumentRepo{docs: map[string]domain.Document{
		"doc-1": {ID: "doc-1", Title: "Guide"},
	}}
	index := &capturingIndex{}
	svc := NewIngestionService(docs, &flakyEmbedder{fail: 2}, index, 50, 10)

	content := strings.Repeat("Short sentences about procedures. ", 10)
	n, err := svc.IngestDocument(ctx, "doc-1", content)
	require.NoError(t, err)
	assert.Equal(t, len(index.chunks), n)
	assert.Greater(t, n, 0)
}

func TestIngestDocument_EmptyContent(t *testing.T) {
	ctx := context.Background()
	docs := &fakeDocumentRepo{docs: map[string]domain.Document{
		"doc-1": {ID: "doc-1", Title: "Guide", SourcePath: "/nonexistent/path.txt"},
	}}
	svc := NewIngestionService(docs, &flakyEmbedder{}, &capturingIndex{}, 50, 10)

	// No inline content and an unreadable source path is an error.
	_, err := svc.IngestDocument(ctx, "doc-1", "")
	assert.Error(t, err)
}
