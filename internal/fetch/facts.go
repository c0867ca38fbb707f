package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/types"
)

// PageFacter produces raw facts about a website.
type PageFacter interface {
	Fetch(ctx context.Context, url string) (types.RawPageFacts, error)
}

// AdapterOptions configures an Adapter.
type AdapterOptions struct {
	Request *Options
	// UseBrowser enables the headless re-render for thin pages.
	UseBrowser     bool
	BrowserTimeout time.Duration
	// Renderer replaces the headless Chrome renderer used when UseBrowser is set.
	Renderer Renderer
	Logger   logrus.FieldLogger
}

// Adapter is the HTTP + goquery implementation of PageFacter.
type Adapter struct {
	request  *Options
	renderer Renderer // nil disables the browser fallback
	logger   logrus.FieldLogger
}

// NewAdapter creates an Adapter.
func NewAdapter(opts AdapterOptions) *Adapter {
	if opts.Request == nil {
		opts.Request = DefaultOptions()
	}
	logger := logging.OrDiscard(opts.Logger)

	var renderer Renderer
	if opts.UseBrowser {
		renderer = opts.Renderer
		if renderer == nil {
			renderer = &ChromeRenderer{Timeout: opts.BrowserTimeout, Logger: logger}
		}
	}
	return &Adapter{
		request:  opts.Request,
		renderer: renderer,
		logger:   logger,
	}
}

// Fetch downloads the page and extracts its facts. Error statuses that still
// carry a body produce best-effort facts; only a site that yields nothing at
// all is an error.
func (a *Adapter) Fetch(ctx context.Context, pageURL string) (types.RawPageFacts, error) {
	log := a.logger.WithField("url", pageURL)

	res, err := URL(ctx, pageURL, a.request)
	if err != nil {
		var fetchErr *Error
		if res == nil || strings.TrimSpace(res.HTML) == "" || !errors.As(err, &fetchErr) {
			return nil, err
		}
		log.WithError(err).Warn("non-success status, extracting facts from error page")
	}

	facts, err := Extract(res.HTML, pageURL)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse page", Cause: err}
	}

	if a.renderer != nil && ShouldUseBrowser(stringFact(facts, "textContent")) {
		log.Debug("thin page, rendering in headless browser")
		html, berr := a.renderer.Render(ctx, pageURL)
		if berr != nil {
			log.WithError(berr).Warn("browser fallback failed, keeping HTTP facts")
			return facts, nil
		}
		if rendered, rerr := Extract(html, pageURL); rerr == nil {
			return rendered, nil
		}
	}
	return facts, nil
}

// Extract parses html and returns its page facts keyed as the sanitizer expects.
func Extract(html, pageURL string) (types.RawPageFacts, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	base, _ := url.Parse(pageURL)

	title := strings.TrimSpace(doc.Find("title").First().Text())
	metaTags := extractMetaTags(doc)
	description := metaTags["description"]
	if description == "" {
		description = metaTags["og:description"]
	}
	headings := extractHeadings(doc)
	links, anchors := extractLinks(doc, base)
	text := extractText(html, doc, base)

	// navigation signals: headings, link targets and link labels
	signals := strings.ToLower(strings.Join(headings, "\n") + "\n" + strings.Join(links, "\n") + "\n" + anchors)
	body := strings.ToLower(text)

	return types.RawPageFacts{
		"url":              pageURL,
		"title":            title,
		"description":      description,
		"textContent":      text,
		"headings":         headings,
		"links":            links,
		"metaTags":         metaTags,
		"hasFAQ":           containsAny(signals, "faq", "frequently asked") || containsAny(body, "frequently asked questions"),
		"hasTestimonials":  containsAny(signals, "testimonial", "customer stories", "reviews", "case studies") || containsAny(body, "what our customers say", "testimonial"),
		"hasPricing":       containsAny(signals, "pricing", "/plans", "plans & pricing"),
		"hasAbout":         containsAny(signals, "about"),
		"hasBlog":          containsAny(signals, "blog", "articles", "/news"),
		"hasComparisons":   containsAny(signals, " vs ", " vs. ", "-vs-", "/vs/", "compare", "comparison", "alternative"),
		"hasDocumentation": containsAny(signals, "docs", "documentation", "api reference", "developer guide"),
		"hasUseCases":      containsAny(signals, "use case", "use-case", "usecase", "solutions"),
	}, nil
}

func extractMetaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("name")
		if !ok || key == "" {
			key, ok = s.Attr("property")
		}
		content, hasContent := s.Attr("content")
		if !ok || key == "" || !hasContent {
			return
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if _, seen := tags[key]; !seen {
			tags[key] = strings.TrimSpace(content)
		}
	})
	return tags
}

func extractHeadings(doc *goquery.Document) []string {
	headings := []string{}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			headings = append(headings, text)
		}
	})
	return headings
}

// extractLinks returns the unique absolute http(s) hrefs and the joined anchor texts.
func extractLinks(doc *goquery.Document, base *url.URL) ([]string, string) {
	links := []string{}
	seen := make(map[string]bool)
	var anchors strings.Builder

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if label := strings.TrimSpace(s.Text()); label != "" {
			anchors.WriteString(label)
			anchors.WriteByte('\n')
		}

		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return
		}
		ref.Fragment = ""
		abs := ref.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links, anchors.String()
}

// extractText prefers the readability article body and falls back to the
// main content container when readability finds less.
func extractText(html string, doc *goquery.Document, base *url.URL) string {
	fallback := mainText(doc, DefaultTextSelectors())
	if base == nil {
		return fallback
	}
	article, err := readability.FromReader(strings.NewReader(html), base)
	if err != nil {
		return fallback
	}
	text := cleanWhitespace(article.TextContent)
	if len(text) < len(fallback) {
		return fallback
	}
	return text
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func stringFact(facts types.RawPageFacts, key string) string {
	s, _ := facts[key].(string)
	return s
}
