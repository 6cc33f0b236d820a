package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"amazon-tracker/config"
	"amazon-tracker/models"
	"amazon-tracker/storage"
	"amazon-tracker/utils"
)

// fakeStore is an in-memory ProductReader for handler tests.
type fakeStore struct {
	products  []*models.Product
	total     int64
	keywords  []*models.KeywordCount
	stats     *models.KeywordStats
	lastQuery storage.ListQuery
	failWith  error
	pingErr   error
}

func (f *fakeStore) ListProducts(ctx context.Context, q storage.ListQuery) ([]*models.Product, int64, error) {
	f.lastQuery = q
	if f.failWith != nil {
		return nil, 0, f.failWith
	}
	return f.products, f.total, nil
}

func (f *fakeStore) ListKeywords(ctx context.Context) ([]*models.KeywordCount, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.keywords, nil
}

func (f *fakeStore) KeywordStats(ctx context.Context, keyword string) (*models.KeywordStats, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.stats != nil {
		return f.stats, nil
	}
	return &models.KeywordStats{Keyword: keyword}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

type listResponse struct {
	Keyword    string            `json:"keyword"`
	Items      []*models.Product `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int64             `json:"total_pages"`
	HasNext    bool              `json:"has_next"`
	HasPrev    bool              `json:"has_prev"`
	SortBy     string            `json:"sort_by"`
	Order      string            `json:"order"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func testServer(store storage.ProductReader, rateLimitMax int) *Server {
	cfg := &config.Config{
		ServerAddr:      ":0",
		RateLimitMax:    rateLimitMax,
		RateLimitWindow: time.Minute,
	}
	return New(cfg, store, utils.NewLogger("test"))
}

func doGet(t *testing.T, s *Server, target string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest("GET", target, nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", target, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func fptr(f float64) *float64 { return &f }
func iptr(n int) *int         { return &n }

func TestHomeEndpoint(t *testing.T) {
	s := testServer(&fakeStore{}, 1000)

	resp := doGet(t, s, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	decodeJSON(t, resp, &got)
	if got["status"] != "ok" {
		t.Errorf("expected status ok, got %q", got["status"])
	}
}

func TestProductsPaginationMath(t *testing.T) {
	store := &fakeStore{
		products: []*models.Product{
			{ID: 1, Keyword: "wireless mouse", Title: "Mouse A", Price: fptr(19.99), Rating: fptr(4.5), ReviewCount: iptr(1200)},
			{ID: 2, Keyword: "wireless mouse", Title: "Mouse B", Price: fptr(24.99)},
		},
		total: 45,
	}
	s := testServer(store, 1000)

	resp := doGet(t, s, "/products/wireless%20mouse?page=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got listResponse
	decodeJSON(t, resp, &got)

	if got.Keyword != "wireless mouse" {
		t.Errorf("expected keyword \"wireless mouse\", got %q", got.Keyword)
	}
	if got.Total != 45 {
		t.Errorf("expected total 45, got %d", got.Total)
	}
	if got.Page != 2 || got.Limit != 20 {
		t.Errorf("expected page 2 limit 20, got %d/%d", got.Page, got.Limit)
	}
	if got.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", got.TotalPages)
	}
	if !got.HasNext {
		t.Error("expected has_next true on page 2 of 3")
	}
	if !got.HasPrev {
		t.Error("expected has_prev true on page 2")
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Title != "Mouse A" {
		t.Errorf("expected first item Mouse A, got %q", got.Items[0].Title)
	}
}

func TestProductsUnknownKeywordReturnsEmptyPage(t *testing.T) {
	s := testServer(&fakeStore{products: []*models.Product{}}, 1000)

	resp := doGet(t, s, "/products/nonexistent")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown keyword, got %d", resp.StatusCode)
	}

	var got listResponse
	decodeJSON(t, resp, &got)

	if got.Items == nil {
		t.Error("expected items to be an empty array, not null")
	}
	if len(got.Items) != 0 || got.Total != 0 {
		t.Errorf("expected empty page, got %d items total %d", len(got.Items), got.Total)
	}
	if got.TotalPages != 0 || got.HasNext || got.HasPrev {
		t.Errorf("expected no pages, got total_pages %d has_next %v has_prev %v",
			got.TotalPages, got.HasNext, got.HasPrev)
	}
}

func TestProductsInvalidParamsReturn400(t *testing.T) {
	store := &fakeStore{}
	s := testServer(store, 1000)

	for _, query := range []string{"page=0", "limit=500", "sort_by=asin", "order=up", "min_price=-3"} {
		t.Run(query, func(t *testing.T) {
			resp := doGet(t, s, "/products/mouse?"+query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			var got errorResponse
			decodeJSON(t, resp, &got)
			if got.Status != "error" || got.Error == "" {
				t.Errorf("expected error envelope, got %+v", got)
			}
		})
	}
}

func TestProductsForwardsFiltersToStore(t *testing.T) {
	store := &fakeStore{products: []*models.Product{}}
	s := testServer(store, 1000)

	resp := doGet(t, s, "/products/mouse?min_price=15&max_price=100&sort_by=price&order=asc")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	q := store.lastQuery
	if q.Keyword != "mouse" {
		t.Errorf("expected keyword mouse, got %q", q.Keyword)
	}
	if q.MinPrice == nil || *q.MinPrice != 15 {
		t.Errorf("expected min_price 15, got %v", q.MinPrice)
	}
	if q.MaxPrice == nil || *q.MaxPrice != 100 {
		t.Errorf("expected max_price 100, got %v", q.MaxPrice)
	}
	if q.SortBy != "price" || q.Order != "asc" {
		t.Errorf("expected price/asc, got %s/%s", q.SortBy, q.Order)
	}
}

func TestProductsStoreErrorReturns500(t *testing.T) {
	s := testServer(&fakeStore{failWith: errors.New("connection refused")}, 1000)

	resp := doGet(t, s, "/products/mouse")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	var got errorResponse
	decodeJSON(t, resp, &got)
	if got.Error != "failed to fetch products" {
		t.Errorf("expected generic error message, got %q", got.Error)
	}
}

func TestKeywordsEndpoint(t *testing.T) {
	store := &fakeStore{
		keywords: []*models.KeywordCount{
			{Keyword: "gaming keyboard", Count: 40, LastScrapedAt: time.Now().UTC()},
			{Keyword: "wireless mouse", Count: 25, LastScrapedAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	s := testServer(store, 1000)

	resp := doGet(t, s, "/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got struct {
		Keywords []*models.KeywordCount `json:"keywords"`
	}
	decodeJSON(t, resp, &got)

	if len(got.Keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(got.Keywords))
	}
	if got.Keywords[0].Keyword != "gaming keyboard" || got.Keywords[0].Count != 40 {
		t.Errorf("unexpected first keyword: %+v", got.Keywords[0])
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := &fakeStore{
		stats: &models.KeywordStats{
			Keyword:   "wireless mouse",
			Count:     25,
			MinPrice:  fptr(9.99),
			MaxPrice:  fptr(89.99),
			AvgPrice:  fptr(34.52),
			AvgRating: fptr(4.31),
		},
	}
	s := testServer(store, 1000)

	resp := doGet(t, s, "/products/wireless%20mouse/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got models.KeywordStats
	decodeJSON(t, resp, &got)

	if got.Keyword != "wireless mouse" || got.Count != 25 {
		t.Errorf("unexpected stats identity: %+v", got)
	}
	if got.AvgPrice == nil || *got.AvgPrice != 34.52 {
		t.Errorf("expected avg_price 34.52, got %v", got.AvgPrice)
	}
}

func TestStatsUnknownKeywordReturnsZeroes(t *testing.T) {
	s := testServer(&fakeStore{}, 1000)

	resp := doGet(t, s, "/products/nonexistent/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for unknown keyword, got %d", resp.StatusCode)
	}

	var got models.KeywordStats
	decodeJSON(t, resp, &got)

	if got.Keyword != "nonexistent" || got.Count != 0 {
		t.Errorf("expected zeroed stats, got %+v", got)
	}
	if got.MinPrice != nil || got.AvgRating != nil {
		t.Errorf("expected null aggregates, got %+v", got)
	}
}

func TestProbeEndpoints(t *testing.T) {
	store := &fakeStore{}
	s := testServer(store, 1000)

	resp := doGet(t, s, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected healthz 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, s, "/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected readyz 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	store.pingErr = errors.New("connection refused")
	resp = doGet(t, s, "/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected readyz 503 when database is down, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRateLimiterCapsRequests(t *testing.T) {
	s := testServer(&fakeStore{}, 2)

	for i := 0; i < 2; i++ {
		resp := doGet(t, s, "/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doGet(t, s, "/")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
	}
	var got errorResponse
	decodeJSON(t, resp, &got)
	if got.Status != "error" {
		t.Errorf("expected error envelope, got %+v", got)
	}

	// Probes are exempt from the limiter.
	resp = doGet(t, s, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected healthz to bypass limiter, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
