package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/services"
)

type MarketHandler struct {
	ListingService *services.ListingService
}

func NewMarketHandler(listingService *services.ListingService) *MarketHandler {
	return &MarketHandler{ListingService: listingService}
}

// GetMarketIndices returns the current market indices snapshot
func (h *MarketHandler) GetMarketIndices(c *fiber.Ctx) error {
	indices := []models.MarketIndex{
		{
			ID:            "nifty50",
			Name:          "NIFTY 50",
			Value:         21453.95,
			Change:        125.30,
			ChangePercent: 0.59,
			IsPositive:    true,
		},
		{
			ID:            "sensex",
			Name:          "SENSEX",
			Value:         71315.09,
			Change:        418.75,
			ChangePercent: 0.59,
			IsPositive:    true,
		},
		{
			ID:            "banknifty",
			Name:          "BANK NIFTY",
			Value:         45892.35,
			Change:        -89.45,
			ChangePercent: -0.19,
			IsPositive:    false,
		},
		{
			ID:            "niftymidcap",
			Name:          "NIFTY MIDCAP 100",
			Value:         48765.20,
			Change:        234.80,
			ChangePercent: 0.48,
			IsPositive:    true,
		},
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    indices,
	})
}

// GetMarketNews returns the ticker items from the last sync
func (h *MarketHandler) GetMarketNews(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.ListingService.News(),
	})
}
