package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"google.golang.org/genai"
)

// apologyMessage is the fixed answer surfaced when generation fails. The
// orchestrator's contract is to always return some answer.
const apologyMessage = "I apologize, but I encountered an error generating the response."

// GeminiProvider is the adapter for the Google Gemini API. It implements
// generation, embeddings, conversation summarization and the provider-side
// context cache lifecycle.
type GeminiProvider struct {
	client     *genai.Client
	chatModel  string
	embedModel string
	timeout    time.Duration
}

func NewGeminiProvider(ctx context.Context, apiKey, chatModel, embedModel string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if timeout <= 0 {
		timeout = time.Minute
	}

	return &GeminiProvider{
		client:     client,
		chatModel:  chatModel,
		embedModel: embedModel,
		timeout:    timeout,
	}, nil
}

// Generate produces the answer for one request. When a cache handle is
// present the system instruction lives in the provider-side cache and must
// not be sent again.
func (p *GeminiProvider) Generate(ctx context.Context, req domain.GenerationRequest) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := req.Query
	if len(req.ContextBlocks) > 0 {
		prompt = fmt.Sprintf("Context:\n%s\n\nUser Question: %s",
			strings.Join(req.ContextBlocks, "\n\n"), req.Query)
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	cfg := &genai.GenerateContentConfig{}
	if req.CacheHandle != "" {
		cfg.CachedContent = req.CacheHandle
	} else if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, "")
	}

	result, err := p.generateContentWithRetry(ctx, contents, cfg)
	if err != nil {
		logrus.WithError(err).Error("[GEMINI] Generation failed")
		return apologyMessage
	}

	text := extractText(result)
	if text == "" {
		logrus.Error("[GEMINI] Empty response from model")
		return apologyMessage
	}

	if result.UsageMetadata != nil {
		logrus.WithFields(logrus.Fields{
			"model":         p.chatModel,
			"input_tokens":  result.UsageMetadata.PromptTokenCount,
			"output_tokens": result.UsageMetadata.CandidatesTokenCount,
			"cached_tokens": result.UsageMetadata.CachedContentTokenCount,
		}).Debug("[GEMINI] Token usage recorded")
	}

	return text
}

// Embed returns the embedding vector for the text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
	}}

	result, err := p.client.Models.EmbedContent(ctx, p.embedModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for content")
	}
	return result.Embeddings[0].Values, nil
}

// Summarize condenses a formatted transcript for conversation compaction.
func (p *GeminiProvider) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: transcript}},
	}}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			"Summarize the following conversation concisely, preserving names, facts and open questions. Respond with the summary only.", ""),
	}

	result, err := p.generateContentWithRetry(ctx, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}

	summary := extractText(result)
	if summary == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return summary, nil
}

// CreateCachedContext provisions a provider-side context cache holding the
// system instruction. The returned expire time is the provider's value.
func (p *GeminiProvider) CreateCachedContext(ctx context.Context, systemInstruction string, ttl time.Duration) (domain.RemoteCacheInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cache, err := p.client.Caches.Create(ctx, p.chatModel, &genai.CreateCachedContentConfig{
		DisplayName: "kbchat-system-instruction",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		TTL: ttl,
	})
	if err != nil {
		return domain.RemoteCacheInfo{}, fmt.Errorf("failed to create cached content: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"cache":   cache.Name,
		"expires": cache.ExpireTime,
	}).Info("[GEMINI] Created context cache")

	return domain.RemoteCacheInfo{
		Handle:     cache.Name,
		ExpireTime: cache.ExpireTime,
	}, nil
}

// CachedContextExists checks whether the handle is still known to the provider.
func (p *GeminiProvider) CachedContextExists(ctx context.Context, handle string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.client.Caches.Get(ctx, handle, nil)
	if err != nil {
		logrus.WithError(err).WithField("cache", handle).
			Debug("[GEMINI] Cached content lookup failed")
		return false
	}
	return true
}

func (p *GeminiProvider) generateContentWithRetry(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return retryOn503(ctx, 3, func() (*genai.GenerateContentResponse, error) {
		return p.client.Models.GenerateContent(ctx, p.chatModel, contents, cfg)
	})
}

// retryOn503 retries overloaded-model responses with exponential backoff.
// The backoff honors context cancellation so abandoned requests return
// immediately instead of sleeping out the remaining attempts.
func retryOn503(ctx context.Context, attempts int, call func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	for i := 0; i < attempts; i++ {
		result, err := call()
		if err == nil {
			return result, nil
		}
		if strings.Contains(err.Error(), "503") {
			select {
			case <-time.After(time.Duration(1<<uint(i)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("max retries exceeded")
}

func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var fullText string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			fullText += part.Text
		}
	}
	return fullText
}
