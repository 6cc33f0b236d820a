package api

import (
	"github.com/gofiber/fiber/v3"

	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

// ProductHandler serves the read-only product query endpoints.
type ProductHandler struct {
	store  storage.ProductReader
	logger *utils.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(store storage.ProductReader, logger *utils.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: logger}
}

// Home is the root info endpoint.
func (h *ProductHandler) Home(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Amazon Price Tracker API",
	})
}

// Keywords lists every scraped keyword with its row count, most recently
// scraped first.
func (h *ProductHandler) Keywords(c fiber.Ctx) error {
	keywords, err := h.store.ListKeywords(c.Context())
	if err != nil {
		h.logger.Error("List keywords: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keywords")
	}
	return c.JSON(fiber.Map{"keywords": keywords})
}

// Products returns one page of products for the keyword in the path. A
// keyword with no rows yields an empty page, not an error.
func (h *ProductHandler) Products(c fiber.Ctx) error {
	keyword := c.Params("keyword")

	q, err := parseListQuery(c, keyword)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	items, total, err := h.store.ListProducts(c.Context(), q)
	if err != nil {
		h.logger.Error("List products for %q: %v", keyword, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch products")
	}

	totalPages := (total + int64(q.Limit) - 1) / int64(q.Limit)

	return c.JSON(fiber.Map{
		"keyword":     keyword,
		"items":       items,
		"total":       total,
		"page":        q.Page,
		"limit":       q.Limit,
		"total_pages": totalPages,
		"has_next":    int64(q.Page) < totalPages,
		"has_prev":    q.Page > 1,
		"sort_by":     q.SortBy,
		"order":       q.Order,
	})
}

// Stats returns price and rating aggregates for the keyword in the path. A
// keyword with no rows yields count 0 with null aggregates.
func (h *ProductHandler) Stats(c fiber.Ctx) error {
	keyword := c.Params("keyword")

	stats, err := h.store.KeywordStats(c.Context(), keyword)
	if err != nil {
		h.logger.Error("Keyword stats for %q: %v", keyword, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch stats")
	}
	return c.JSON(stats)
}
