package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/turinglabs/kbchat/chatbot/application"
	"github.com/turinglabs/kbchat/chatbot/domain"
	pkgError "github.com/turinglabs/kbchat/pkg/error"
	"github.com/turinglabs/kbchat/pkg/utils"
)

type Prompt struct {
	Repository domain.IPromptRepository
	Service    *application.PromptService
}

func InitRestPrompt(app fiber.Router, repository domain.IPromptRepository, service *application.PromptService) Prompt {
	handler := Prompt{Repository: repository, Service: service}

	app.Post("/prompts", handler.CreatePrompt)
	app.Get("/prompts/active", handler.GetActivePrompt)
	app.Post("/prompts/:id/activate", handler.ActivatePrompt)

	return handler
}

func (handler *Prompt) CreatePrompt(c *fiber.Ctx) error {
	var request domain.PromptTemplate
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	if request.Name == "" || request.TemplateContent == "" {
		utils.PanicIfNeeded(pkgError.ValidationError("name and template_content are required"))
	}

	prompt, err := handler.Repository.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Prompt created",
		Results: prompt,
	})
}

func (handler *Prompt) GetActivePrompt(c *fiber.Ctx) error {
	name := c.Query("name")
	prompt, err := handler.Repository.GetActive(c.UserContext(), name)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Active prompt retrieved",
		Results: prompt,
	})
}

// ActivatePrompt warms the remote context cache for a template so the next
// chat request reuses it instead of paying creation latency.
func (handler *Prompt) ActivatePrompt(c *fiber.Ctx) error {
	id := c.Params("id")
	result := handler.Service.ActivatePrompt(c.UserContext(), id)

	status, code := 200, "SUCCESS"
	if !result.Success {
		status, code = 422, "VALIDATION_ERROR"
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: result.Message,
		Results: result,
	})
}
