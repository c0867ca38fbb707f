// Package visibility measures and estimates how visible a brand is on
// conversational AI platforms.
package visibility

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/types"
)

// Live probe constants.
const (
	ProbePlatform       = "Gemini"
	DefaultProbeDelay   = 500 * time.Millisecond
	UnconfiguredScore   = 65
	UnconfiguredSummary = "Gemini API key not configured - using estimated visibility score"
	ErrorResponse       = "Error: Could not complete query"

	maxResponseRunes = 500
	contextRadius    = 50
)

// Prober sends one natural-language query to a live assistant.
type Prober interface {
	Query(ctx context.Context, text string) (string, error)
}

// LLMProber asks an llm.Client the query as a plain user would.
type LLMProber struct {
	Client llm.Client
}

// Query implements Prober.
func (p LLMProber) Query(ctx context.Context, text string) (string, error) {
	return p.Client.GenerateContent(ctx, text, llm.Options{Tier: llm.TierStandard, Temperature: 0.7})
}

// Queries returns the fixed probe queries for an industry.
func Queries(industry string) []string {
	return []string{
		fmt.Sprintf("What are the best %s tools?", industry),
		fmt.Sprintf("Recommend %s software for businesses", industry),
		fmt.Sprintf("Compare top %s platforms", industry),
		fmt.Sprintf("What %s solution should I use?", industry),
		fmt.Sprintf("List %s companies", industry),
	}
}

// LiveProbe measures the brand's mention rate on the live platform.
type LiveProbe struct {
	prober  Prober
	limiter *rate.Limiter
	logger  logrus.FieldLogger
}

// NewLiveProbe creates a LiveProbe. A nil prober means the platform is not
// configured. Queries are spaced at least delay apart.
func NewLiveProbe(prober Prober, delay time.Duration, logger logrus.FieldLogger) *LiveProbe {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &LiveProbe{
		prober:  prober,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrDiscard(logger),
	}
}

// Configured reports whether live queries will be issued.
func (p *LiveProbe) Configured() bool {
	return p != nil && p.prober != nil
}

// Unconfigured is the result reported when no live platform is available.
func Unconfigured() types.LiveProbe {
	return types.LiveProbe{
		Platform: ProbePlatform,
		Score:    UnconfiguredScore,
		Summary:  UnconfiguredSummary,
		Tests:    []types.ProbeTest{},
	}
}

// Run issues every probe query in order. A failed query is recorded as not
// mentioned and does not stop the run.
func (p *LiveProbe) Run(ctx context.Context, brand types.BrandInfo) types.LiveProbe {
	if !p.Configured() {
		return Unconfigured()
	}
	log := p.logger.WithFields(logrus.Fields{"brand": brand.Name, "platform": ProbePlatform})

	brandRe := wordPattern(brand.Name)
	domainRe := wordPattern(brand.Domain)

	queries := Queries(brand.Industry)
	tests := make([]types.ProbeTest, 0, len(queries))
	mentions := 0

	for _, q := range queries {
		if err := p.limiter.Wait(ctx); err != nil {
			log.WithError(err).Warn("probe query not sent")
			tests = append(tests, types.ProbeTest{Query: q, Response: ErrorResponse})
			continue
		}

		resp, err := p.prober.Query(ctx, q)
		if err != nil {
			log.WithError(err).WithField("query", q).Warn("probe query failed")
			tests = append(tests, types.ProbeTest{Query: q, Response: ErrorResponse})
			continue
		}

		test := types.ProbeTest{Query: q, Response: truncateRunes(resp, maxResponseRunes)}
		loc := findMatch(resp, brandRe, domainRe)
		if loc != nil {
			mentions++
			test.Mentioned = true
			test.Context = "..." + window(resp, loc[0], loc[1], contextRadius) + "..."
		}
		tests = append(tests, test)
	}

	pct := int(math.Round(100 * float64(mentions) / float64(len(queries))))
	probe := types.LiveProbe{
		Platform:   ProbePlatform,
		Score:      clampScore(pct),
		Configured: true,
		Summary: fmt.Sprintf("%s was mentioned in %d out of %d %s queries (%d%% visibility rate)",
			brand.Name, mentions, len(queries), ProbePlatform, pct),
		Tests: tests,
	}
	log.WithField("score", probe.Score).Info(probe.Summary)
	return probe
}

// wordPattern matches s as a whole word, case-insensitively. Blank input
// yields nil.
func wordPattern(s string) *regexp.Regexp {
	if s == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s) + `\b`)
}

func findMatch(text string, patterns ...*regexp.Regexp) []int {
	for _, re := range patterns {
		if re == nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			return loc
		}
	}
	return nil
}

// window returns text[start-radius:end+radius], widened to rune boundaries.
func window(text string, start, end, radius int) string {
	from := start - radius
	if from < 0 {
		from = 0
	}
	to := end + radius
	if to > len(text) {
		to = len(text)
	}
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return text[from:to]
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
