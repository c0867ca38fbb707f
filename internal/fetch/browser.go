package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/logging"
)

// MinContentLength is the text length below which a page is treated as a
// client-rendered shell and re-rendered in a headless browser.
const MinContentLength = 500

// DefaultSettle is how long a rendered page is given to hydrate after the
// body is ready.
const DefaultSettle = 2 * time.Second

// ShouldUseBrowser reports whether the extracted text is too short to trust.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns the HTML of a page after its scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in headless Chrome. Requires Chrome or
// Chromium on the host.
type ChromeRenderer struct {
	Timeout time.Duration
	Settle  time.Duration
	// ExecPath overrides the browser binary lookup.
	ExecPath string
	Logger   logrus.FieldLogger
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(DefaultUserAgent),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	return opts
}

// Render navigates to url and returns the outer HTML of the document.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	log := logging.OrDiscard(r.Logger).WithField("url", url)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	settle := r.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var html string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	log.WithFields(logrus.Fields{
		"bytes":    len(html),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("browser render complete")
	if strings.TrimSpace(html) == "" {
		return "", &Error{URL: url, Message: fmt.Sprintf("browser returned an empty document after %s", settle)}
	}
	return html, nil
}
