package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/models"
	"github.com/niveshipo/backend/services"
)

type RiskHandler struct {
	RiskService    *services.RiskService
	ListingService *services.ListingService
}

func NewRiskHandler(riskService *services.RiskService, listingService *services.ListingService) *RiskHandler {
	return &RiskHandler{RiskService: riskService, ListingService: listingService}
}

// AnalyzeListing runs an on-demand risk analysis for the listing named in the
// path, weighted by the triple in the request body. Weights default to
// 40/30/30 when the body omits them; no sum constraint is enforced.
func (h *RiskHandler) AnalyzeListing(c *fiber.Ctx) error {
	listing := h.ListingService.BySymbol(c.Params("symbol"))
	if listing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Listing not found",
		})
	}

	weights := models.WeightPreferences{Fundamentals: 40, Valuation: 30, Sentiment: 30}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&weights); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid weight preferences",
			})
		}
	}

	analysis := h.RiskService.Analyze(c.Context(), listing, weights)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    analysis,
	})
}

// GetLatestAnalysis returns the most recent stored analysis for a symbol
func (h *RiskHandler) GetLatestAnalysis(c *fiber.Ctx) error {
	analysis := h.RiskService.Latest(c.Params("symbol"))
	if analysis == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "No analysis available for this listing",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    analysis,
	})
}
