package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/jobs"
	"github.com/niveshipo/backend/services"
)

type ListingHandler struct {
	Service *services.ListingService
	SyncJob *jobs.MarketSyncJob
}

func NewListingHandler(service *services.ListingService, syncJob *jobs.MarketSyncJob) *ListingHandler {
	return &ListingHandler{Service: service, SyncJob: syncJob}
}

// GetListings returns the reconciled collection, filtered by the optional
// status, type and q query parameters
func (h *ListingHandler) GetListings(c *fiber.Ctx) error {
	status := c.Query("status", "All")
	listingType := c.Query("type", "All")
	query := c.Query("q", "")

	listings := h.Service.Listings(status, listingType, query)

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           listings,
		"sources":        h.Service.Sources(),
		"last_refreshed": h.Service.LastRefreshed(),
	})
}

// GetListingBySymbol returns one listing by its symbol
func (h *ListingHandler) GetListingBySymbol(c *fiber.Ctx) error {
	listing := h.Service.BySymbol(c.Params("symbol"))
	if listing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Listing not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    listing,
	})
}

// RefreshListings triggers one sync cycle on demand. The cycle itself never
// fails; degraded content is still a success.
func (h *ListingHandler) RefreshListings(c *fiber.Ctx) error {
	h.SyncJob.Run()

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           h.Service.Listings("All", "All", ""),
		"sources":        h.Service.Sources(),
		"last_refreshed": h.Service.LastRefreshed(),
	})
}
