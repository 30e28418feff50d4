package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/niveshipo/backend/shared"
)

type MetricsHandler struct {
	metrics []*shared.ServiceMetrics
}

func NewMetricsHandler(metrics ...*shared.ServiceMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// GetMetrics returns request and degradation counters for each service
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	snapshots := make([]shared.ServiceMetrics, 0, len(h.metrics))
	for _, m := range h.metrics {
		snapshots = append(snapshots, m.Snapshot())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshots,
	})
}
