package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

// ActivationResult reports the outcome of a prompt activation.
type ActivationResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	CacheHandle string `json:"cache_handle,omitempty"`
}

// PromptService handles operator-driven prompt activation: provisioning a
// remote context cache for a template ahead of traffic, so the first chat
// request after a prompt change does not pay the creation latency.
type PromptService struct {
	prompts      domain.IPromptRepository
	contextCache *ContextCacheManager
}

func NewPromptService(prompts domain.IPromptRepository, contextCache *ContextCacheManager) *PromptService {
	return &PromptService{prompts: prompts, contextCache: contextCache}
}

// ActivatePrompt fetches the template, creates a remote context cache for its
// content and records it as the active cache.
func (s *PromptService) ActivatePrompt(ctx context.Context, promptID string) ActivationResult {
	prompt, err := s.prompts.GetByID(ctx, promptID)
	if err != nil {
		return ActivationResult{Success: false, Message: fmt.Sprintf("prompt with ID %s not found", promptID)}
	}

	if strings.TrimSpace(prompt.TemplateContent) == "" {
		return ActivationResult{Success: false, Message: "prompt template content is empty"}
	}

	logrus.WithFields(logrus.Fields{
		"prompt_id":   promptID,
		"prompt_name": prompt.Name,
	}).Info("[PROMPT] Activating prompt")

	info, ok := s.contextCache.Create(ctx, promptID, prompt.TemplateContent)
	if !ok {
		return ActivationResult{Success: false, Message: "failed to create remote context cache"}
	}

	s.contextCache.Save(ctx, promptID, info.Handle, info.ExpireTime)

	return ActivationResult{
		Success:     true,
		Message:     fmt.Sprintf("prompt %q activated and cached", prompt.Name),
		CacheHandle: info.Handle,
	}
}
