package application

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// OrchestratorConfig carries the tunables the request pipeline needs.
type OrchestratorConfig struct {
	// DefaultSystemInstruction is used when no active prompt template exists.
	DefaultSystemInstruction string
	// PromptName narrows the active-template lookup; empty selects across all names.
	PromptName string
	MatchThreshold float32
	MatchCount     int
}

// ChatOrchestrator sequences memory, caches, retrieval and generation into one
// request pipeline. Collaborator failures degrade the answer (less context, no
// cache reuse) but never abort the request.
type ChatOrchestrator struct {
	memory        *ConversationMemoryService
	responseCache *ResponseCache
	contextCache  *ContextCacheManager
	embedder      domain.IEmbeddingProvider
	vectorSearch  domain.IVectorSearch
	prompts       domain.IPromptRepository
	generator     domain.IGenerationProvider
	summarizer    domain.ISummarizer
	cfg           OrchestratorConfig
}

func NewChatOrchestrator(
	memory *ConversationMemoryService,
	responseCache *ResponseCache,
	contextCache *ContextCacheManager,
	embedder domain.IEmbeddingProvider,
	vectorSearch domain.IVectorSearch,
	prompts domain.IPromptRepository,
	generator domain.IGenerationProvider,
	summarizer domain.ISummarizer,
	cfg OrchestratorConfig,
) *ChatOrchestrator {
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = 0.5
	}
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = 5
	}
	return &ChatOrchestrator{
		memory:        memory,
		responseCache: responseCache,
		contextCache:  contextCache,
		embedder:      embedder,
		vectorSearch:  vectorSearch,
		prompts:       prompts,
		generator:     generator,
		summarizer:    summarizer,
		cfg:           cfg,
	}
}

// ProcessChat runs the full pipeline for one user query and always returns an
// answer. Memory is updated before the response cache is consulted so that
// message-count-driven summarization stays correct on cache hits.
func (o *ChatOrchestrator) ProcessChat(ctx context.Context, conversationID, query string) domain.ChatResult {
	log := logrus.WithField("conversation_id", conversationID)

	// 1-3. Record the query, then compact the log if it has grown past the
	// threshold. The context is recomputed after compaction so generation
	// sees the summary instead of the raw transcript.
	o.memory.AppendMessage(ctx, conversationID, domain.RoleUser, query)
	conversationContext := o.memory.GetContext(ctx, conversationID)

	if o.memory.GetUserMessageCount(ctx, conversationID) >= o.memory.Threshold() {
		o.memory.SummarizeAndCompact(ctx, conversationID, o.summarizer)
		conversationContext = o.memory.GetContext(ctx, conversationID)
	}

	// 4. Exact-match response cache. A hit still appends to memory so the
	// conversation keeps its real shape for future summarization.
	if cached, ok := o.responseCache.Get(ctx, conversationID, query); ok {
		log.Info("[CHAT] Response cache hit")
		o.memory.AppendMessage(ctx, conversationID, domain.RoleAssistant, cached)
		return domain.ChatResult{Message: cached, Source: domain.SourceResponseCache}
	}
	log.Debug("[CHAT] Response cache miss, proceeding to semantic search")

	// 5. Retrieval. Either failure degrades to an empty chunk list.
	chunks := o.retrieveChunks(ctx, query)

	// 6. Active prompt template, or the injected default.
	systemInstruction := o.cfg.DefaultSystemInstruction
	promptID := ""
	if prompt, err := o.prompts.GetActive(ctx, o.cfg.PromptName); err == nil {
		if prompt.TemplateContent != "" {
			systemInstruction = prompt.TemplateContent
		}
		promptID = prompt.ID
	}

	// 7. Context cache, only when a real template drives the instruction.
	cacheHandle := ""
	if promptID != "" {
		handle, ok := o.contextCache.ValidateAndGet(ctx, promptID, o.contextCache.RemoteExists())
		if !ok {
			if info, created := o.contextCache.Create(ctx, promptID, systemInstruction); created {
				o.contextCache.Save(ctx, promptID, info.Handle, info.ExpireTime)
				handle = info.Handle
				ok = true
			}
		} else {
			log.WithField("cache_handle", handle).Debug("[CHAT] Context cache hit")
		}
		if ok {
			cacheHandle = handle
		}
	}

	// 8-9. Conversation context first, retrieved chunks after.
	var blocks []string
	if conversationContext != "" {
		blocks = append(blocks, conversationContext)
	}
	for _, chunk := range chunks {
		blocks = append(blocks, chunk.Content)
	}

	answer := o.generator.Generate(ctx, domain.GenerationRequest{
		Query:             query,
		ContextBlocks:     blocks,
		SystemInstruction: systemInstruction,
		CacheHandle:       cacheHandle,
	})

	// 10. Record and cache the answer.
	o.memory.AppendMessage(ctx, conversationID, domain.RoleAssistant, answer)
	o.responseCache.Set(ctx, conversationID, query, answer)

	return domain.ChatResult{Message: answer, Source: domain.SourceGenerated}
}

// ClearConversation removes all memory for the conversation.
func (o *ChatOrchestrator) ClearConversation(ctx context.Context, conversationID string) {
	o.memory.Clear(ctx, conversationID)
}

func (o *ChatOrchestrator) retrieveChunks(ctx context.Context, query string) []domain.Chunk {
	embedding, err := o.embedder.Embed(ctx, query)
	if err != nil || len(embedding) == 0 {
		if err != nil {
			logrus.WithError(err).Warn("[CHAT] Embedding failed, searching without context")
		}
		return nil
	}

	chunks, err := o.vectorSearch.Search(ctx, embedding, o.cfg.MatchThreshold, o.cfg.MatchCount)
	if err != nil {
		logrus.WithError(err).Warn("[CHAT] Vector search failed, generating without retrieved context")
		return nil
	}
	return chunks
}
