package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/turinglabs/kbchat/infrastructure/valkey"
	"github.com/turinglabs/kbchat/pkg/utils"
	"gorm.io/gorm"
)

type Health struct {
	DB     *gorm.DB
	Valkey *valkey.Client
}

func InitRestHealth(app fiber.Router, db *gorm.DB, vk *valkey.Client) Health {
	handler := Health{DB: db, Valkey: vk}

	app.Get("/health", handler.GetStatus)

	return handler
}

func (handler *Health) GetStatus(c *fiber.Ctx) error {
	checks := fiber.Map{"database": "ok", "valkey": "disabled"}
	status, code, message := 200, "SUCCESS", "Health status retrieved"

	if sqlDB, err := handler.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		checks["database"] = "unreachable"
		status = 503
	}

	if handler.Valkey != nil {
		checks["valkey"] = "ok"
		if err := handler.Valkey.Ping(c.UserContext()); err != nil {
			checks["valkey"] = "unreachable"
			status = 503
		}
	}

	if status != 200 {
		code, message = "INTERNAL_SERVER_ERROR", "One or more dependencies are unreachable"
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: message,
		Results: checks,
	})
}
