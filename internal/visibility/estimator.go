package visibility

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/prompts"
	"github.com/jonathan/geo-visibility/internal/types"
)

// EstimateTemperature is used for the platform estimate call.
const EstimateTemperature = 0.3

// Platform is one AI platform in display order.
type Platform struct {
	Name    string
	Color   string
	Default int
}

// Platforms lists the reported platforms in canonical order.
var Platforms = []Platform{
	{Name: "ChatGPT", Color: "hsl(var(--chart-1))", Default: 65},
	{Name: "Claude", Color: "hsl(var(--chart-3))", Default: 60},
	{Name: "Gemini", Color: "hsl(var(--chart-4))", Default: 62},
	{Name: "Perplexity", Color: "hsl(var(--chart-2))", Default: 58},
}

// DefaultScores returns the scores used when no estimate is available.
func DefaultScores() []types.PlatformScore {
	out := make([]types.PlatformScore, len(Platforms))
	for i, p := range Platforms {
		out[i] = types.PlatformScore{Platform: p.Name, Score: p.Default, Color: p.Color}
	}
	return out
}

// Estimator combines a generative estimate for every platform with the live
// probe for the platform that supports one.
type Estimator struct {
	client llm.Client
	probe  *LiveProbe
	logger logrus.FieldLogger
}

// NewEstimator creates an Estimator. probe may be nil.
func NewEstimator(client llm.Client, probe *LiveProbe, logger logrus.FieldLogger) *Estimator {
	return &Estimator{client: client, probe: probe, logger: logging.OrDiscard(logger)}
}

// Estimate returns one score per platform in canonical order plus the live
// probe record. The probe score replaces the Gemini estimate.
func (e *Estimator) Estimate(ctx context.Context, brand types.BrandInfo, facts types.PageFacts) ([]types.PlatformScore, *types.LiveProbe) {
	var (
		scores []types.PlatformScore
		probe  types.LiveProbe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scores = e.estimate(gctx, brand, facts)
		return nil
	})
	g.Go(func() error {
		probe = e.probe.Run(gctx, brand)
		return nil
	})
	_ = g.Wait()

	for i := range scores {
		if scores[i].Platform == ProbePlatform {
			scores[i].Score = clampScore(probe.Score)
		}
	}
	return scores, &probe
}

func (e *Estimator) estimate(ctx context.Context, brand types.BrandInfo, facts types.PageFacts) []types.PlatformScore {
	log := e.logger.WithField("brand", brand.Name)
	if e.client == nil {
		return DefaultScores()
	}

	prompt, err := prompts.Render("analysis.json", "estimate-platforms", map[string]string{
		"BrandName":        brand.Name,
		"Domain":           brand.Domain,
		"Industry":         brand.Industry,
		"HasFAQ":           strconv.FormatBool(facts.HasFAQ),
		"HasTestimonials":  strconv.FormatBool(facts.HasTestimonials),
		"HasPricing":       strconv.FormatBool(facts.HasPricing),
		"HasBlog":          strconv.FormatBool(facts.HasBlog),
		"HasComparisons":   strconv.FormatBool(facts.HasComparisons),
		"HasDocumentation": strconv.FormatBool(facts.HasDocumentation),
		"ContentLength":    strconv.Itoa(utf8.RuneCountInString(facts.TextContent)),
		"HasDescription":   yesNo(facts.Description != ""),
	})
	if err != nil {
		log.WithError(err).Error("platform prompt unavailable")
		return DefaultScores()
	}

	resp, err := e.client.GenerateJSON(ctx, prompt, llm.Options{Tier: llm.TierStandard, Temperature: EstimateTemperature})
	if err != nil {
		log.WithError(err).Warn("platform estimate failed, using default scores")
		return DefaultScores()
	}

	scores, ok := ParseEstimate(resp)
	if !ok {
		log.Warn("platform estimate malformed, using default scores")
	}
	return scores
}

// ParseEstimate maps a {"platforms": [...]} response onto the canonical
// platforms by case-insensitive name. Platforms missing from the response get
// their default. ok is false when the response has no platforms array.
func ParseEstimate(resp string) (scores []types.PlatformScore, ok bool) {
	var parsed struct {
		Platforms []any `json:"platforms"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil || parsed.Platforms == nil {
		return DefaultScores(), false
	}

	given := make(map[string]int)
	for _, item := range parsed.Platforms {
		entry, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		name, _ := entry["platform"].(string)
		score, valid := toScore(entry["score"])
		if name == "" || !valid {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := given[key]; !dup {
			given[key] = score
		}
	}

	scores = DefaultScores()
	for i := range scores {
		if s, found := given[strings.ToLower(scores[i].Platform)]; found {
			scores[i].Score = s
		}
	}
	return scores, true
}

func toScore(v any) (int, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampScore(int(math.Round(math.Max(-1, math.Min(f, 1000))))), true
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
