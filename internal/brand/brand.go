// Package brand infers who owns an analyzed website.
package brand

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/prompts"
	"github.com/jonathan/geo-visibility/internal/types"
)

// Fallback values used when the model output is missing or unusable.
const (
	UnknownCompany       = "Unknown Company"
	UnknownDomain        = "unknown.com"
	UnknownIndustry      = "Unknown"
	NoDescription        = "No description available"
	maxFallbackNameRunes = 50
	contentSampleLength  = 1000
)

var protocolPrefix = regexp.MustCompile(`^https?://`)

// Extractor asks a generative model for the brand behind a page.
type Extractor struct {
	client llm.Client
	logger logrus.FieldLogger
}

// NewExtractor creates an Extractor. A nil client always yields the fallback.
func NewExtractor(client llm.Client, logger logrus.FieldLogger) *Extractor {
	return &Extractor{client: client, logger: logging.OrDiscard(logger)}
}

// Extract returns a fully populated BrandInfo. It never fails.
func (e *Extractor) Extract(ctx context.Context, facts types.PageFacts) types.BrandInfo {
	log := e.logger.WithField("url", facts.URL)
	if e.client == nil {
		return Fallback(facts)
	}

	prompt, err := prompts.Render("analysis.json", "extract-brand", map[string]string{
		"Title":         facts.Title,
		"Description":   facts.Description,
		"ContentSample": truncateRunes(facts.TextContent, contentSampleLength),
	})
	if err != nil {
		log.WithError(err).Error("brand prompt unavailable")
		return Fallback(facts)
	}

	resp, err := e.client.GenerateJSON(ctx, prompt, llm.Options{Tier: llm.TierLite, Temperature: 0.3})
	if err != nil {
		log.WithError(err).Warn("brand extraction failed, using page-derived brand")
		return Fallback(facts)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(resp), &data); err != nil {
		log.WithError(err).Warn("brand response is not a JSON object, using page-derived brand")
		return Fallback(facts)
	}
	return fromModel(data, facts)
}

// Fallback derives a BrandInfo from the page alone.
func Fallback(facts types.PageFacts) types.BrandInfo {
	return types.BrandInfo{
		Name:        fallbackName(facts),
		Domain:      DomainFromURL(facts.URL),
		Industry:    UnknownIndustry,
		Description: fallbackDescription(facts),
	}
}

// fromModel takes each field from the model when it is a non-blank string.
// The domain always comes from the URL.
func fromModel(data map[string]any, facts types.PageFacts) types.BrandInfo {
	info := Fallback(facts)
	if s := trimmedString(data["name"]); s != "" {
		info.Name = s
	}
	if s := trimmedString(data["industry"]); s != "" {
		info.Industry = s
	}
	if s := trimmedString(data["description"]); s != "" {
		info.Description = s
	}
	return info
}

// DomainFromURL returns the host of rawURL. Values that do not parse as an
// absolute URL are stripped of their protocol and path; "unknown.com" is the
// last resort.
func DomainFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return UnknownDomain
	}
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	host := strings.SplitN(protocolPrefix.ReplaceAllString(rawURL, ""), "/", 2)[0]
	if host == "" {
		return UnknownDomain
	}
	return host
}

func fallbackName(facts types.PageFacts) string {
	if facts.Title == "" {
		return UnknownCompany
	}
	return truncateRunes(facts.Title, maxFallbackNameRunes)
}

func fallbackDescription(facts types.PageFacts) string {
	if facts.Description == "" {
		return NoDescription
	}
	return facts.Description
}

func trimmedString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
