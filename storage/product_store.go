package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"amazon-tracker/models"
)

// ProductStore serves read queries over the products table. It is safe for
// concurrent use; the API server shares one store across all requests.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore creates a connection pool and verifies it with a ping.
func NewProductStore(ctx context.Context, databaseURL string) (*ProductStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &ProductStore{pool: pool}, nil
}

// ListProducts returns one page of products for q plus the total number of
// rows matching its filters. Filters apply before pagination, so consecutive
// pages partition the filtered set exactly. Rows with NULL price never match
// an active price bound.
func (s *ProductStore) ListProducts(ctx context.Context, q ListQuery) ([]*models.Product, int64, error) {
	col, ok := SortColumns[q.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("store: unknown sort key %q", q.SortBy)
	}
	dir := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		dir = "ASC"
	}

	where := "WHERE keyword = $1"
	args := []interface{}{q.Keyword}
	if q.MinPrice != nil {
		args = append(args, *q.MinPrice)
		where += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	if q.MaxPrice != nil {
		args = append(args, *q.MaxPrice)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count products: %w", err)
	}

	// created_at/id keep ties stable; skip created_at when it is already the
	// sort column.
	tieBreak := ", created_at ASC, id ASC"
	if col == "created_at" {
		tieBreak = ", id ASC"
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf(`
		SELECT id, keyword, title, price::float8, rating::float8, review_count, created_at
		FROM products
		%s
		ORDER BY %s %s NULLS LAST%s
		LIMIT $%d OFFSET $%d
	`, where, col, dir, tieBreak, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0, q.Limit)
	for rows.Next() {
		p := &models.Product{}
		var price, rating sql.NullFloat64
		var reviews sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Keyword, &p.Title, &price, &rating, &reviews, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("store: scan product: %w", err)
		}
		p.Price = floatPtr(price)
		p.Rating = floatPtr(rating)
		if reviews.Valid {
			v := int(reviews.Int64)
			p.ReviewCount = &v
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: iterate products: %w", err)
	}
	return products, total, nil
}

// ListKeywords returns every scraped keyword with its row count and most
// recent capture time, most recently scraped first.
func (s *ProductStore) ListKeywords(ctx context.Context) ([]*models.KeywordCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT keyword, COUNT(*), MAX(created_at) AS last_scraped_at
		FROM products
		GROUP BY keyword
		ORDER BY MAX(created_at) DESC, keyword ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list keywords: %w", err)
	}
	defer rows.Close()

	keywords := make([]*models.KeywordCount, 0)
	for rows.Next() {
		kc := &models.KeywordCount{}
		if err := rows.Scan(&kc.Keyword, &kc.Count, &kc.LastScrapedAt); err != nil {
			return nil, fmt.Errorf("store: scan keyword: %w", err)
		}
		keywords = append(keywords, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate keywords: %w", err)
	}
	return keywords, nil
}

// KeywordStats aggregates price and rating for one keyword. Count covers all
// matching rows; the aggregates skip NULL fields, and a keyword with no rows
// yields count 0 with nil aggregates.
func (s *ProductStore) KeywordStats(ctx context.Context, keyword string) (*models.KeywordStats, error) {
	stats := &models.KeywordStats{Keyword: keyword}
	var minP, maxP, avgP, avgR sql.NullFloat64

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), MIN(price)::float8, MAX(price)::float8, AVG(price)::float8, AVG(rating)::float8
		FROM products
		WHERE keyword = $1
	`, keyword).Scan(&stats.Count, &minP, &maxP, &avgP, &avgR)
	if err != nil {
		return nil, fmt.Errorf("store: keyword stats: %w", err)
	}

	stats.MinPrice = floatPtr(minP)
	stats.MaxPrice = floatPtr(maxP)
	stats.AvgPrice = round2(floatPtr(avgP))
	stats.AvgRating = round2(floatPtr(avgR))
	return stats, nil
}

// Ping reports whether the database is reachable.
func (s *ProductStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *ProductStore) Close() {
	s.pool.Close()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}
