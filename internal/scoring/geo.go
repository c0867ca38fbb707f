package scoring

import (
	"math"
	"strings"

	"github.com/jonathan/geo-visibility/internal/types"
)

// MaxSubMetric caps AIC, CES and MTS.
const MaxSubMetric = 10.0

// GEO returns the three sub-metrics and their weighted overall.
func GEO(f types.PageFacts) types.GEOMetrics {
	return types.NewGEOMetrics(AIC(f), CES(f), MTS(f))
}

// AIC scores answerability and intent coverage.
func AIC(f types.PageFacts) float64 {
	score := 0.0
	switch n := length(f.TextContent); {
	case n > 5000:
		score += 3
	case n > 2000:
		score += 2
	case n > 500:
		score += 1
	}
	if f.HasFAQ {
		score += 2
	}
	if f.HasUseCases {
		score += 2
	}
	if f.HasDocumentation {
		score += 1.5
	}
	switch n := len(f.Headings); {
	case n > 10:
		score += 1.5
	case n > 5:
		score += 1
	}
	return subMetric(score)
}

// CES scores credibility, evidence and safety signals.
func CES(f types.PageFacts) float64 {
	score := 0.0
	if f.HasTestimonials {
		score += 3
	}
	if f.HasAbout {
		score += 2
	}
	if f.HasBlog {
		score += 2
	}
	switch n := countLinks(f, false); {
	case n > 10:
		score += 1.5
	case n > 5:
		score += 1
	}
	if length(f.Description) > 100 {
		score += 1.5
	}
	return subMetric(score)
}

// MTS scores machine readability and technical signals.
func MTS(f types.PageFacts) float64 {
	score := 0.0
	switch n := len(f.MetaTags); {
	case n > 10:
		score += 3
	case n > 5:
		score += 2
	case n > 2:
		score += 1
	}
	switch n := len(f.Headings); {
	case n > 15:
		score += 3
	case n > 10:
		score += 2
	case n > 5:
		score += 1
	}
	switch n := countLinks(f, true); {
	case n > 20:
		score += 2
	case n > 10:
		score += 1
	}
	switch {
	case f.HasPricing && f.HasAbout:
		score += 2
	case f.HasPricing || f.HasAbout:
		score += 1
	}
	return subMetric(score)
}

// countLinks counts links that do (internal) or do not contain the page URL.
func countLinks(f types.PageFacts, internal bool) int {
	n := 0
	for _, l := range f.Links {
		if strings.Contains(l, f.URL) == internal {
			n++
		}
	}
	return n
}

func subMetric(score float64) float64 {
	return types.RoundTo(math.Min(score, MaxSubMetric), 1)
}
