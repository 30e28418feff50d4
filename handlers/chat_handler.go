package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/services"
)

type ChatHandler struct {
	Service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

type chatRequest struct {
	Message string                 `json:"message"`
	History []services.ChatMessage `json:"history"`
}

type transcribeRequest struct {
	Audio string `json:"audio"` // base64-encoded recording
}

// Chat answers one assistant turn
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Message cannot be empty",
		})
	}

	result := h.Service.Chat(c.Context(), req.Message, req.History)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Transcribe converts a recorded voice query to text
func (h *ChatHandler) Transcribe(c *fiber.Ctx) error {
	var req transcribeRequest
	if err := c.BodyParser(&req); err != nil || req.Audio == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Audio payload is required",
		})
	}

	text := h.Service.Transcribe(c.Context(), req.Audio)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"text": text,
		},
	})
}
