package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"amazon-tracker/models"
	"amazon-tracker/utils"
)

var (
	// numberRegexp captures the first numeric value, commas included
	numberRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// ratingOutOfRegexp matches the "4.5 out of 5 stars" shape
	ratingOutOfRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*out of`)
	// reviewRegexp captures review counts like "1,234"
	reviewRegexp = regexp.MustCompile(`[\d,]+`)
)

// Cleaner transforms RawProducts into normalized Products. Prices are
// converted to USD at ingestion so the store never holds display strings.
type Cleaner struct {
	logger     *utils.Logger
	krwUSDRate float64
}

// NewCleaner creates a Cleaner. krwUSDRate is the KRW-per-USD rate applied
// when a price is detected as won.
func NewCleaner(logger *utils.Logger, krwUSDRate float64) *Cleaner {
	return &Cleaner{logger: logger, krwUSDRate: krwUSDRate}
}

// Clean normalizes raw rows into products stamped with the keyword and the
// shared capture time. A row whose title is empty after normalization is
// dropped; any other field that fails to parse becomes nil and the row is
// kept.
func (c *Cleaner) Clean(keyword string, collectedAt time.Time, raws []*models.RawProduct) []*models.Product {
	result := make([]*models.Product, 0, len(raws))

	for _, r := range raws {
		title := normaliseText(r.Title)
		if title == "" {
			c.logger.Warn("[cleaner] Dropping product with empty title (raw price %q)", r.RawPrice)
			continue
		}

		result = append(result, &models.Product{
			Keyword:     keyword,
			Title:       title,
			Price:       c.parsePrice(r.RawPrice),
			Rating:      c.parseRating(r.RawRating),
			ReviewCount: c.parseReviewCount(r.RawReviews),
			CreatedAt:   collectedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d products (dropped %d)",
		len(raws), len(result), len(raws)-len(result))
	return result
}

// parsePrice extracts a USD price from raw text. Won prices (₩, KRW, 원, or a
// bare value above 500) are converted at the configured rate and the result
// is rounded to two decimals.
// Examples:
//
//	"$1,299.00" → 1299.00
//	"45,000원"  → 31.03 (at 1450 KRW/USD)
//	"N/A"       → nil
func (c *Cleaner) parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return nil
	}

	isKRW := strings.Contains(raw, "₩") || strings.Contains(raw, "원") ||
		strings.Contains(strings.ToUpper(raw), "KRW")
	isUSD := strings.Contains(raw, "$")

	match := numberRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}

	if isKRW || (!isUSD && val > 500) {
		val /= c.krwUSDRate
	}

	val = round2(val)
	return &val
}

// parseRating extracts a rating in the 0.0–5.0 range. The "X out of 5" shape
// wins; otherwise the first numeric value is taken. Out-of-range values are
// treated as absent.
func (c *Cleaner) parseRating(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return nil
	}

	candidate := ""
	if m := ratingOutOfRegexp.FindStringSubmatch(raw); len(m) >= 2 {
		candidate = m[1]
	} else {
		candidate = numberRegexp.FindString(raw)
	}
	if candidate == "" {
		return nil
	}

	val, err := strconv.ParseFloat(strings.ReplaceAll(candidate, ",", ""), 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// parseReviewCount extracts an integer count from text like "1,234 ratings".
func (c *Cleaner) parseReviewCount(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return nil
	}

	match := reviewRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return nil
	}
	return &n
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
