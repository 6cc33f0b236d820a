package api

import (
	"github.com/gofiber/fiber/v3"

	"amazon-tracker/storage"
)

// ProbeHandler handles health probe endpoints.
type ProbeHandler struct {
	store storage.ProductReader
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(store storage.ProductReader) *ProbeHandler {
	return &ProbeHandler{store: store}
}

// Liveness handles the /healthz endpoint. Returns 200 OK if the process is
// running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint. Returns 200 OK if the store is
// reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "database unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
