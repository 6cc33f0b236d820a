package amazon

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"amazon-tracker/models"
)

// resultSelector marks one search-result card on the page.
const resultSelector = "[data-component-type='s-search-result']"

// ExtractListings parses search-result HTML into raw products, preserving
// on-page order and stopping at max. Cards without a title node are skipped
// and reported in skipped; a page with no result cards at all returns
// ErrNoListings.
func ExtractListings(html string, max int) ([]*models.RawProduct, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("amazon: parse html: %w", err)
	}

	cards := doc.Find(resultSelector)
	if cards.Length() == 0 {
		return nil, nil, ErrNoListings
	}

	raws := make([]*models.RawProduct, 0, cards.Length())
	var skipped []string

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(raws) >= max {
			return false
		}

		title := strings.TrimSpace(card.Find("h2 span").First().Text())
		if title == "" {
			asin, _ := card.Attr("data-asin")
			skipped = append(skipped, fmt.Sprintf("card %d (asin %q): no title node", i, asin))
			return true
		}

		raws = append(raws, &models.RawProduct{
			Title:      title,
			RawPrice:   strings.TrimSpace(card.Find("span.a-offscreen").First().Text()),
			RawRating:  strings.TrimSpace(card.Find("span.a-icon-alt").First().Text()),
			RawReviews: extractReviewText(card),
		})
		return true
	})

	return raws, skipped, nil
}

// extractReviewText prefers the review link's aria-label ("1,234 ratings"),
// falling back to the underlined count rendered next to the stars.
func extractReviewText(card *goquery.Selection) string {
	if label, ok := card.Find("a[href*='customerReviews']").First().Attr("aria-label"); ok {
		return strings.TrimSpace(label)
	}
	return strings.TrimSpace(card.Find("span.a-size-base.s-underline-text").First().Text())
}
