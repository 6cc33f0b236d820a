package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"amazon-tracker/storage"
)

// parseQuery drives parseListQuery through a real Fiber request so query
// string handling matches production.
func parseQuery(t *testing.T, target string) (storage.ListQuery, error) {
	t.Helper()

	var got storage.ListQuery
	var gotErr error

	app := fiber.New(fiber.Config{UnescapePath: true})
	app.Get("/t/:keyword", func(c fiber.Ctx) error {
		got, gotErr = parseListQuery(c, c.Params("keyword"))
		return nil
	})

	req, _ := http.NewRequest("GET", target, nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return got, gotErr
}

func TestParseListQueryDefaults(t *testing.T) {
	q, err := parseQuery(t, "/t/mouse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Keyword != "mouse" {
		t.Errorf("expected keyword \"mouse\", got %q", q.Keyword)
	}
	if q.Page != 1 {
		t.Errorf("expected default page 1, got %d", q.Page)
	}
	if q.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", q.Limit)
	}
	if q.SortBy != "created_at" {
		t.Errorf("expected default sort_by created_at, got %q", q.SortBy)
	}
	if q.Order != "desc" {
		t.Errorf("expected default order desc, got %q", q.Order)
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		t.Error("expected no price bounds by default")
	}
}

func TestParseListQueryOverrides(t *testing.T) {
	q, err := parseQuery(t, "/t/mouse?page=3&limit=50&sort_by=price&order=asc&min_price=10.5&max_price=99.99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 3 || q.Limit != 50 {
		t.Errorf("expected page 3 limit 50, got %d/%d", q.Page, q.Limit)
	}
	if q.SortBy != "price" || q.Order != "asc" {
		t.Errorf("expected price/asc, got %s/%s", q.SortBy, q.Order)
	}
	if q.MinPrice == nil || *q.MinPrice != 10.5 {
		t.Errorf("expected min_price 10.5, got %v", q.MinPrice)
	}
	if q.MaxPrice == nil || *q.MaxPrice != 99.99 {
		t.Errorf("expected max_price 99.99, got %v", q.MaxPrice)
	}
}

func TestParseListQueryOrderIsCaseInsensitive(t *testing.T) {
	q, err := parseQuery(t, "/t/mouse?order=ASC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Order != "asc" {
		t.Errorf("expected order asc, got %q", q.Order)
	}
}

func TestParseListQueryRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		query string
		param string
	}{
		{"page=0", "page"},
		{"page=abc", "page"},
		{"limit=0", "limit"},
		{"limit=101", "limit"},
		{"limit=abc", "limit"},
		{"sort_by=name", "sort_by"},
		{"order=sideways", "order"},
		{"min_price=-1", "min_price"},
		{"min_price=abc", "min_price"},
		{"max_price=-0.01", "max_price"},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			_, err := parseQuery(t, "/t/mouse?"+tc.query)
			if err == nil {
				t.Fatalf("expected error for %q, got none", tc.query)
			}
			if !strings.Contains(err.Error(), tc.param) {
				t.Errorf("error %q does not name parameter %s", err, tc.param)
			}
		})
	}
}
