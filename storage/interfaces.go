package storage

import (
	"context"

	"amazon-tracker/models"
)

// ProductWriter is the interface the collector persists batches through.
type ProductWriter interface {
	Write(products []*models.Product) error
	Close() error
}

// ProductReader is the read surface the query API serves from.
type ProductReader interface {
	ListProducts(ctx context.Context, q ListQuery) ([]*models.Product, int64, error)
	ListKeywords(ctx context.Context) ([]*models.KeywordCount, error)
	KeywordStats(ctx context.Context, keyword string) (*models.KeywordStats, error)
	Ping(ctx context.Context) error
}

// SortColumns maps accepted sort_by values to their SQL columns. Only keys of
// this map may reach ListQuery.SortBy; the column name is interpolated into
// ORDER BY.
var SortColumns = map[string]string{
	"price":        "price",
	"rating":       "rating",
	"review_count": "review_count",
	"created_at":   "created_at",
	"title":        "title",
}

// ListQuery carries the validated listing parameters. Price bounds are nil
// when the corresponding filter is absent.
type ListQuery struct {
	Keyword  string
	Page     int    // 1-based
	Limit    int    // 1..100
	SortBy   string // key of SortColumns
	Order    string // "asc" or "desc"
	MinPrice *float64
	MaxPrice *float64
}

// Offset returns the SQL OFFSET for the query's page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}
