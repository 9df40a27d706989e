package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/turinglabs/kbchat/chatbot/application"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"github.com/turinglabs/kbchat/pkg/utils"
	"github.com/turinglabs/kbchat/validations"
)

type Chat struct {
	Service *application.ChatOrchestrator
}

func InitRestChat(app fiber.Router, service *application.ChatOrchestrator) Chat {
	handler := Chat{Service: service}

	app.Post("/chat", handler.ProcessChat)
	app.Delete("/conversations/:id", handler.ClearConversation)

	return handler
}

func (handler *Chat) ProcessChat(c *fiber.Ctx) error {
	var request domain.ChatRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateChatRequest(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	result := handler.Service.ProcessChat(c.UserContext(), request.ConversationID, request.Query)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Chat processed",
		Results: result,
	})
}

func (handler *Chat) ClearConversation(c *fiber.Ctx) error {
	id := c.Params("id")
	handler.Service.ClearConversation(c.UserContext(), id)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Conversation cleared",
	})
}
