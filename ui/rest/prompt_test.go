package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turinglabs/kbchat/chatbot/application"
	"github.com/turinglabs/kbchat/pkg/utils"
	"github.com/turinglabs/kbchat/ui/rest/middleware"
)

func newPromptTestApp(t *testing.T) *fiber.App {
	t.Helper()

	contextCache := application.NewContextCacheManager(contextRepoStub{}, noopRemote{}, time.Hour)
	service := application.NewPromptService(noPrompts{}, contextCache)

	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestPrompt(app, noPrompts{}, service)
	return app
}

func TestActivatePromptEndpoint_FailureUsesErrorCode(t *testing.T) {
	app := newPromptTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/prompts/missing-id/activate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope utils.ResponseData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, 422, envelope.Status)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	assert.Contains(t, envelope.Message, "not found")
}
