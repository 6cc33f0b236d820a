package amazon

import "errors"

var (
	// ErrPageLoadTimeout means the results container never appeared within
	// the configured deadline.
	ErrPageLoadTimeout = errors.New("amazon: page load timeout")

	// ErrBlocked means the page content matches a bot-detection interstitial.
	ErrBlocked = errors.New("amazon: blocked by bot detection")

	// ErrNoListings means the page parsed but contained no result cards.
	ErrNoListings = errors.New("amazon: no listings found")
)
