package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"amazon-tracker/storage"
)

// parseListQuery validates the listing query parameters. Absent parameters
// take their defaults; present-but-invalid values are rejected with an error
// naming the parameter.
func parseListQuery(c fiber.Ctx, keyword string) (storage.ListQuery, error) {
	q := storage.ListQuery{Keyword: keyword}

	var err error
	if q.Page, err = intParam(c, "page", 1, 1, 0); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(c, "limit", 20, 1, 100); err != nil {
		return q, err
	}

	q.SortBy = c.Query("sort_by", "created_at")
	if _, ok := storage.SortColumns[q.SortBy]; !ok {
		return q, fmt.Errorf("invalid sort_by: use price, rating, review_count, created_at or title")
	}

	q.Order = strings.ToLower(c.Query("order", "desc"))
	if q.Order != "asc" && q.Order != "desc" {
		return q, fmt.Errorf("invalid order: use asc or desc")
	}

	if q.MinPrice, err = floatParam(c, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = floatParam(c, "max_price"); err != nil {
		return q, err
	}

	return q, nil
}

// intParam reads an integer query parameter with bounds. max <= 0 means no
// upper bound.
func intParam(c fiber.Ctx, name string, def, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", name, raw)
	}
	if n < min {
		return 0, fmt.Errorf("invalid %s: must be at least %d", name, min)
	}
	if max > 0 && n > max {
		return 0, fmt.Errorf("invalid %s: must be at most %d", name, max)
	}
	return n, nil
}

// floatParam reads an optional non-negative float query parameter.
func floatParam(c fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not a number", name, raw)
	}
	if f < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative", name)
	}
	return &f, nil
}
