package models

import "time"

// RawProduct holds unprocessed text extracted from one search-result card.
// Empty strings mean the field was absent on the page.
type RawProduct struct {
	Title      string
	RawPrice   string
	RawRating  string
	RawReviews string
}

// Product is the normalized, persisted record. Price, Rating and ReviewCount
// are pointers: nil marks a field the source page did not provide in a
// parseable form. Price is USD, rounded to two decimals.
type Product struct {
	ID          int64     `json:"id"`
	Keyword     string    `json:"keyword"`
	Title       string    `json:"title"`
	Price       *float64  `json:"price"`
	Rating      *float64  `json:"rating"`
	ReviewCount *int      `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// KeywordCount is one row of the keyword listing endpoint.
type KeywordCount struct {
	Keyword       string    `json:"keyword"`
	Count         int64     `json:"count"`
	LastScrapedAt time.Time `json:"last_scraped_at"`
}

// KeywordStats holds price/rating aggregates for one keyword. Count covers
// every stored record; the aggregates skip null fields. All aggregate fields
// are nil when no record carries a usable value.
type KeywordStats struct {
	Keyword   string   `json:"keyword"`
	Count     int64    `json:"count"`
	MinPrice  *float64 `json:"min_price"`
	MaxPrice  *float64 `json:"max_price"`
	AvgPrice  *float64 `json:"avg_price"`
	AvgRating *float64 `json:"avg_rating"`
}

// InsightReport holds the analytics printed after a collector run.
type InsightReport struct {
	Keyword       string
	TotalProducts int
	PricedCount   int
	RatedCount    int
	ReviewedCount int
	AveragePrice  float64
	MinPrice      float64
	MaxPrice      float64
	AverageRating float64
	MostExpensive *Product
	TopRated      []*Product
}
