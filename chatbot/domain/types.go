package domain

import "time"

// Message roles. Only these two appear in conversation memory; the system
// instruction travels separately.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation, insertion order significant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer sources reported to the caller.
const (
	SourceResponseCache = "response_cache"
	SourceGenerated     = "generated"
)

// ChatResult is what ProcessChat hands back to the transport layer.
type ChatResult struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// ChatRequest is the transport payload for one conversational query.
type ChatRequest struct {
	ConversationID string `json:"conversation_id" form:"conversation_id"`
	Query          string `json:"query" form:"query"`
}

// IngestRequest registers a document and indexes its content. Content may
// be inline or loaded from SourcePath.
type IngestRequest struct {
	Title      string `json:"title" form:"title"`
	SourceType string `json:"source_type" form:"source_type"`
	SourcePath string `json:"source_path" form:"source_path"`
	Content    string `json:"content" form:"content"`
}

// PromptTemplate is a versioned system instruction stored in the database.
type PromptTemplate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TemplateContent string    `json:"template_content"`
	Version         int       `json:"version"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Document is an ingestable knowledge-base source.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type"`
	SourcePath string    `json:"source_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is one embedded slice of a document.
type Chunk struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Embedding  []float32         `json:"-"`
	Similarity float32           `json:"similarity"`
}
