// Package insights derives the presentation-only sections of a report:
// competitor comparison, per-platform breakdowns, accuracy checks and
// action plans. Everything here is deterministic.
package insights

import (
	"math"

	"github.com/jonathan/geo-visibility/internal/types"
)

// MaxCompetitors caps how many non-brand competitors are compared.
const MaxCompetitors = 5

// CompetitorAnalysis compares the brand with its top competitors. The brand
// always comes first.
func CompetitorAnalysis(competitors []types.Competitor, brand types.BrandInfo, f types.PageFacts) []types.CompetitorAnalysis {
	out := []types.CompetitorAnalysis{{
		Name:             brand.Name,
		URL:              "https://" + brand.Domain,
		DiscoveryScore:   pick(f.HasFAQ, 7.5, 6.0),
		ComparisonScore:  pick(f.HasComparisons, 7.0, 5.5),
		UtilityScore:     pick(f.HasUseCases, 7.5, 6.0),
		OverallGEOScore:  7.0,
		MentionFrequency: 65,
		CitationRate:     45,
		HeadToHeadWins:   55,
		KeyDifferentiators: []string{
			pickString(f.HasDocumentation, "Strong technical documentation", "Growing documentation"),
			pickString(f.HasTestimonials, "Verified customer testimonials", "Building social proof"),
			"Clear value proposition",
		},
	}}

	idx := 0
	for _, c := range competitors {
		if c.IsCurrentBrand {
			continue
		}
		if idx == MaxCompetitors {
			break
		}
		i := float64(idx)
		out = append(out, types.CompetitorAnalysis{
			Name:               c.Name,
			URL:                "https://" + c.Domain,
			DiscoveryScore:     types.RoundTo(8.0-0.3*i, 1),
			ComparisonScore:    types.RoundTo(7.5-0.4*i, 1),
			UtilityScore:       types.RoundTo(7.8-0.3*i, 1),
			OverallGEOScore:    types.RoundTo(7.7-0.3*i, 1),
			MentionFrequency:   75 - 5*idx,
			CitationRate:       50 - 3*idx,
			HeadToHeadWins:     70 - 5*idx,
			KeyDifferentiators: firstN(c.Strengths, 2),
		})
		idx++
	}
	return out
}

// maxOffset bounds how far a platform's sub-metrics drift from the page's.
const maxOffset = 0.2

// PlatformDetails breaks every platform score into GEO sub-metrics. Platforms
// above 50 get slightly higher sub-metrics, platforms below slightly lower.
func PlatformDetails(platforms []types.PlatformScore, f types.PageFacts, geo types.GEOMetrics) []types.PlatformScoreDetail {
	out := make([]types.PlatformScoreDetail, 0, len(platforms))
	for _, p := range platforms {
		off := math.Max(-maxOffset, math.Min(maxOffset, float64(p.Score-50)/250))
		strength := "moderate"
		if p.Score >= 70 {
			strength = "strong"
		}
		coverage := pickString(f.HasFAQ, "FAQ coverage", "content depth")

		out = append(out, types.PlatformScoreDetail{
			Platform:     p.Platform,
			AICScore:     tenScale(geo.AIC + off),
			CESScore:     tenScale(geo.CES + off),
			MTSScore:     tenScale(geo.MTS + off),
			OverallScore: tenScale(float64(p.Score) / 10),
			Analysis:     p.Platform + " analysis shows " + strength + " visibility with good " + coverage + ".",
			Strengths: []string{
				pickString(f.HasDocumentation, "Technical documentation", "Clear messaging"),
				pickString(f.HasTestimonials, "Social proof", "Product information"),
			},
			Weaknesses: []string{
				pickString(f.HasComparisons, "Could improve SEO", "Limited comparison content"),
				pickString(f.HasBlog, "Update frequency", "No blog content"),
			},
		})
	}
	return out
}

// Accuracy thresholds.
const (
	baseAccuracy          = 85
	hallucinationCutoff   = 90
	platformAccuracySwing = 25.0
)

// AccuracyChecks estimates how accurately each platform describes the brand.
// A page with strong GEO signals and a well-scoring platform is described
// more accurately.
func AccuracyChecks(platforms []types.PlatformScore, brand types.BrandInfo, f types.PageFacts, geo types.GEOMetrics) []types.AccuracyCheck {
	var missing []string
	if !f.HasPricing {
		missing = append(missing, "Pricing details")
	}
	if !f.HasBlog {
		missing = append(missing, "Recent product updates")
	}

	out := make([]types.AccuracyCheck, 0, len(platforms))
	for _, p := range platforms {
		raw := baseAccuracy + geo.Overall + float64(p.Score-50)/platformAccuracySwing
		accuracy := int(math.Round(math.Max(0, math.Min(100, raw))))

		hallucinations := []types.Hallucination{}
		if accuracy < hallucinationCutoff {
			hallucinations = append(hallucinations, types.Hallucination{
				Claim:    "Some factual details may be outdated",
				Reason:   "Website content needs regular updates",
				Severity: types.ImpactLow,
			})
		}

		out = append(out, types.AccuracyCheck{
			Platform: p.Platform,
			TestQueries: []string{
				"What is " + brand.Name + "?",
				"Who are " + brand.Name + "'s competitors?",
				"What are the benefits of " + brand.Name + "?",
			},
			OverallAccuracy: accuracy,
			Hallucinations:  hallucinations,
			MissingInfo:     append([]string{}, missing...),
			CorrectFacts:    []string{"Company name and description", "Core product offering", "Target market"},
		})
	}
	return out
}

func pick(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func pickString(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}

func tenScale(v float64) float64 {
	return types.RoundTo(math.Max(0, math.Min(10, v)), 1)
}
