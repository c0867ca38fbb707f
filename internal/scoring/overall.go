package scoring

import (
	"math"

	"github.com/jonathan/geo-visibility/internal/types"
)

// Gap element names.
const (
	GapFAQ           = "FAQ Section"
	GapComparisons   = "Comparison Pages"
	GapTestimonials  = "Customer Testimonials"
	GapPricing       = "Pricing Information"
	GapAbout         = "About Page"
	GapBlog          = "Blog Content"
	GapDocumentation = "Documentation"
	GapUseCases      = "Use Cases"
)

// Gaps reports all eight content elements, found or not, in fixed order.
func Gaps(f types.PageFacts) []types.Gap {
	return []types.Gap{
		{Element: GapFAQ, Impact: types.ImpactHigh, Found: f.HasFAQ},
		{Element: GapComparisons, Impact: types.ImpactHigh, Found: f.HasComparisons},
		{Element: GapTestimonials, Impact: types.ImpactMedium, Found: f.HasTestimonials},
		{Element: GapPricing, Impact: types.ImpactMedium, Found: f.HasPricing},
		{Element: GapAbout, Impact: types.ImpactLow, Found: f.HasAbout},
		{Element: GapBlog, Impact: types.ImpactMedium, Found: f.HasBlog},
		{Element: GapDocumentation, Impact: types.ImpactHigh, Found: f.HasDocumentation},
		{Element: GapUseCases, Impact: types.ImpactMedium, Found: f.HasUseCases},
	}
}

// Missing returns the elements of gaps that were not found.
func Missing(gaps []types.Gap) []string {
	out := []string{}
	for _, g := range gaps {
		if !g.Found {
			out = append(out, g.Element)
		}
	}
	return out
}

// Found returns the elements of gaps that were found.
func Found(gaps []types.Gap) []string {
	out := []string{}
	for _, g := range gaps {
		if g.Found {
			out = append(out, g.Element)
		}
	}
	return out
}

// Overall is the rounded mean of the platform average and the dimension
// average. An empty slice averages to zero.
func Overall(platforms []types.PlatformScore, dimensions []types.DimensionScore) int {
	dimensionAvg := 0.0
	if len(dimensions) > 0 {
		sum := 0
		for _, d := range dimensions {
			sum += d.Score
		}
		dimensionAvg = float64(sum) / float64(len(dimensions))
	}
	return int(math.Round((PlatformAverage(platforms) + dimensionAvg) / 2))
}

// PlatformAverage is the mean platform score, or zero for none.
func PlatformAverage(platforms []types.PlatformScore) float64 {
	if len(platforms) == 0 {
		return 0
	}
	sum := 0
	for _, p := range platforms {
		sum += p.Score
	}
	return float64(sum) / float64(len(platforms))
}
