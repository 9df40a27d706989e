package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// OpenAIProvider is the adapter for the OpenAI API. OpenAI has no managed
// context cache, so CreateCachedContext always fails and the orchestrator
// falls back to inline system instructions.
type OpenAIProvider struct {
	client     openai.Client
	chatModel  string
	embedModel string
	timeout    time.Duration
}

func NewOpenAIProvider(apiKey, chatModel, embedModel string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &OpenAIProvider{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		chatModel:  chatModel,
		embedModel: embedModel,
		timeout:    timeout,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req domain.GenerationRequest) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := req.Query
	if len(req.ContextBlocks) > 0 {
		prompt = fmt.Sprintf("Context:\n%s\n\nUser Question: %s",
			strings.Join(req.ContextBlocks, "\n\n"), req.Query)
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.chatModel),
		Messages: messages,
	})
	if err != nil {
		logrus.WithError(err).Error("[OPENAI] Generation failed")
		return apologyMessage
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		logrus.Error("[OPENAI] Empty response from model")
		return apologyMessage
	}

	return completion.Choices[0].Message.Content
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned for content")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (p *OpenAIProvider) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Summarize the following conversation concisely, preserving names, facts and open questions. Respond with the summary only."),
			openai.UserMessage(transcript),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return completion.Choices[0].Message.Content, nil
}

// CreateCachedContext is unsupported on OpenAI.
func (p *OpenAIProvider) CreateCachedContext(ctx context.Context, systemInstruction string, ttl time.Duration) (domain.RemoteCacheInfo, error) {
	return domain.RemoteCacheInfo{}, fmt.Errorf("context caching is not supported by the openai provider")
}

// CachedContextExists always reports false so stale handles get invalidated.
func (p *OpenAIProvider) CachedContextExists(ctx context.Context, handle string) bool {
	return false
}
