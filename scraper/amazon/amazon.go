package amazon

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"amazon-tracker/config"
	"amazon-tracker/models"
	"amazon-tracker/scraper/browser"
	"amazon-tracker/utils"
)

const (
	homeURL         = "https://www.amazon.com"
	searchURLFormat = "https://www.amazon.com/s?k=%s"
)

// userAgents is rotated per run so consecutive runs do not present the same
// browser fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/121.0.0.0 Safari/537.36",
}

// blockedMarkers appear on interstitial pages served instead of results.
var blockedMarkers = []string{"sorry, something went wrong", "captcha", "robot"}

// Scraper drives one search-result scrape per invocation.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Amazon scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape opens a browser session, loads the search results for keyword and
// extracts up to MaxProducts raw rows in on-page order. The session is closed
// on every path out. Navigation is retried; the wait for the results
// container is not, since its deadline is the page-load contract.
func (s *Scraper) Scrape(ctx context.Context, keyword string) ([]*models.RawProduct, error) {
	ua := userAgents[rand.Intn(len(userAgents))]
	s.logger.Info("[amazon] Starting scrape for %q (headless=%v)", keyword, s.cfg.Headless)

	session := browser.NewSession(browser.Options{
		Headless:  s.cfg.Headless,
		ChromeBin: s.cfg.ChromeBin,
		UserAgent: ua,
	})
	defer session.Close()

	// Warm-up visit before the search, the way a person would arrive
	if err := s.retry.Do(ctx, "navigate-home", func() error {
		return session.Navigate(homeURL, randomDelay(2, 3))
	}); err != nil {
		return nil, fmt.Errorf("amazon: %w", err)
	}

	target := fmt.Sprintf(searchURLFormat, url.QueryEscape(keyword))
	s.logger.Info("[amazon] Loading search page: %s", target)
	if err := s.retry.Do(ctx, "navigate-search", func() error {
		return session.Navigate(target, randomDelay(2, 3))
	}); err != nil {
		return nil, fmt.Errorf("amazon: %w", err)
	}

	if err := session.ScrollSteps(3); err != nil {
		s.logger.Warn("[amazon] Scroll failed: %v", err)
	}

	if err := session.WaitReady(resultSelector, s.cfg.PageLoadTimeout); err != nil {
		if html, htmlErr := session.OuterHTML(); htmlErr == nil && isBlocked(html) {
			return nil, fmt.Errorf("amazon: search %q: %w", keyword, ErrBlocked)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("amazon: search %q: %w", keyword, ErrPageLoadTimeout)
		}
		return nil, fmt.Errorf("amazon: wait for results: %w", err)
	}

	html, err := session.OuterHTML()
	if err != nil {
		return nil, fmt.Errorf("amazon: fetch page html: %w", err)
	}

	raws, skipped, err := ExtractListings(html, s.cfg.MaxProducts)
	if err != nil {
		return nil, fmt.Errorf("amazon: search %q: %w", keyword, err)
	}
	for _, msg := range skipped {
		s.logger.Warn("[amazon] Skipped %s", msg)
	}

	s.logger.Info("[amazon] Extracted %d raw products (skipped %d)", len(raws), len(skipped))
	return raws, nil
}

// isBlocked reports whether the page text matches a bot-detection page.
func isBlocked(html string) bool {
	lower := strings.ToLower(html)
	for _, marker := range blockedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// randomDelay returns a pause between min and max seconds.
func randomDelay(min, max float64) time.Duration {
	return time.Duration((min + rand.Float64()*(max-min)) * float64(time.Second))
}
