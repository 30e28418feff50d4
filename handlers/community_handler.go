package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/services"
	"github.com/niveshipo/backend/shared"
)

type CommunityHandler struct {
	Service *services.CommunityService
}

func NewCommunityHandler(service *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{Service: service}
}

type postMessageRequest struct {
	Text string                      `json:"text"`
	Type models.CommunityMessageType `json:"type"`
}

// GetMessages returns the board newest first
func (h *CommunityHandler) GetMessages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Service.Messages(),
	})
}

// PostMessage appends a new anonymous post
func (h *CommunityHandler) PostMessage(c *fiber.Ctx) error {
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	message, err := h.Service.Post(req.Text, req.Type)
	if err != nil {
		var serviceErr *shared.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Category == shared.ErrorCategoryValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   serviceErr.Message,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    message,
	})
}
