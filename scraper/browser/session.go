package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// Per-operation ceiling. WaitReady callers pass their own deadline; everything
// else just needs protection against a wedged browser.
const opTimeout = 60 * time.Second

// Options configures the browser process backing a Session.
type Options struct {
	Headless  bool
	ChromeBin string
	UserAgent string
}

// Session owns a single browser tab. All navigation for a collector run
// happens in the same tab, so cookies from the warm-up visit carry over to
// the search page.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession launches the browser and returns a ready Session. Close must be
// called on every exit path.
func NewSession(opts Options) *Session {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)
	if bin := findChromeBinary(opts.ChromeBin); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Session{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}
}

// Navigate loads url and then waits the settle delay in-page.
func (s *Session) Navigate(url string, settle time.Duration) error {
	return s.run(opTimeout,
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
	)
}

// WaitReady blocks until selector is present in the DOM or timeout elapses.
// A deadline surfaces as context.DeadlineExceeded via errors.Is.
func (s *Session) WaitReady(selector string, timeout time.Duration) error {
	return s.run(timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// OuterHTML returns the full document HTML of the current page.
func (s *Session) OuterHTML() (string, error) {
	var html string
	err := s.run(opTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// ScrollSteps scrolls the page down in n random-sized, human-paced steps.
func (s *Session) ScrollSteps(n int) error {
	for i := 0; i < n; i++ {
		px := 300 + rand.Intn(401)
		pause := time.Duration(500+rand.Intn(1001)) * time.Millisecond
		if err := s.run(opTimeout,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d);", px), nil),
			chromedp.Sleep(pause),
		); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
