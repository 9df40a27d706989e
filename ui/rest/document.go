package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/turinglabs/kbchat/chatbot/application"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"github.com/turinglabs/kbchat/pkg/utils"
	"github.com/turinglabs/kbchat/validations"
)

type Document struct {
	Documents application.IDocumentRepository
	Ingestion *application.IngestionService
}

func InitRestDocument(app fiber.Router, documents application.IDocumentRepository, ingestion *application.IngestionService) Document {
	handler := Document{Documents: documents, Ingestion: ingestion}

	app.Post("/documents", handler.CreateDocument)
	app.Get("/documents", handler.ListDocuments)
	app.Post("/documents/:id/ingest", handler.IngestDocument)

	return handler
}

// CreateDocument registers a document and immediately indexes its content.
func (handler *Document) CreateDocument(c *fiber.Ctx) error {
	var request domain.IngestRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = validations.ValidateIngestRequest(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	doc, err := handler.Documents.Create(c.UserContext(), domain.Document{
		Title:      request.Title,
		SourceType: request.SourceType,
		SourcePath: request.SourcePath,
	})
	utils.PanicIfNeeded(err)

	chunks, err := handler.Ingestion.IngestDocument(c.UserContext(), doc.ID, request.Content)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Document ingested",
		Results: fiber.Map{
			"document": doc,
			"chunks":   chunks,
		},
	})
}

func (handler *Document) ListDocuments(c *fiber.Ctx) error {
	docs, err := handler.Documents.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Documents retrieved",
		Results: docs,
	})
}

// IngestDocument reindexes an already registered document from its source path.
func (handler *Document) IngestDocument(c *fiber.Ctx) error {
	id := c.Params("id")

	chunks, err := handler.Ingestion.IngestDocument(c.UserContext(), id, "")
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Document ingested",
		Results: fiber.Map{"chunks": chunks},
	})
}
