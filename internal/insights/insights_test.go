package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-visibility/internal/types"
)

var acme = types.BrandInfo{Name: "Acme", Domain: "acme.test", Industry: "Analytics"}

func TestCompetitorAnalysis(t *testing.T) {
	comps := []types.Competitor{
		{Rank: 1, Name: "Rival0", Domain: "r0.test", Strengths: []string{"a", "b", "c"}},
		{Rank: 2, Name: "Acme", Domain: "acme.test", IsCurrentBrand: true},
	}
	for i := 1; i < 7; i++ {
		comps = append(comps, types.Competitor{Rank: i + 2, Name: fmt.Sprintf("Rival%d", i), Domain: fmt.Sprintf("r%d.test", i)})
	}

	f := types.PageFacts{HasFAQ: true, HasDocumentation: true}
	out := CompetitorAnalysis(comps, acme, f)
	require.Len(t, out, 1+MaxCompetitors)

	own := out[0]
	assert.Equal(t, "Acme", own.Name)
	assert.Equal(t, "https://acme.test", own.URL)
	assert.Equal(t, 7.5, own.DiscoveryScore)
	assert.Equal(t, 5.5, own.ComparisonScore)
	assert.Equal(t, 6.0, own.UtilityScore)
	assert.Equal(t, 7.0, own.OverallGEOScore)
	assert.Equal(t, []string{"Strong technical documentation", "Building social proof", "Clear value proposition"}, own.KeyDifferentiators)

	first := out[1]
	assert.Equal(t, "Rival0", first.Name)
	assert.Equal(t, "https://r0.test", first.URL)
	assert.Equal(t, []string{"a", "b"}, first.KeyDifferentiators)
	assert.Equal(t, 75, first.MentionFrequency)

	last := out[5]
	assert.Equal(t, "Rival4", last.Name)
	assert.InDelta(t, 6.8, last.DiscoveryScore, 1e-9)
	assert.InDelta(t, 5.9, last.ComparisonScore, 1e-9)
	assert.InDelta(t, 6.6, last.UtilityScore, 1e-9)
	assert.InDelta(t, 6.5, last.OverallGEOScore, 1e-9)
	assert.Equal(t, 55, last.MentionFrequency)
	assert.Equal(t, 38, last.CitationRate)
	assert.Equal(t, 50, last.HeadToHeadWins)
	assert.NotNil(t, last.KeyDifferentiators)
}

func TestPlatformDetails(t *testing.T) {
	geo := types.NewGEOMetrics(5, 9.9, 0.1)
	platforms := []types.PlatformScore{
		{Platform: "ChatGPT", Score: 100},
		{Platform: "Claude", Score: 50},
		{Platform: "Gemini", Score: 0},
	}
	out := PlatformDetails(platforms, types.PageFacts{HasBlog: true}, geo)
	require.Len(t, out, 3)

	assert.InDelta(t, 5.2, out[0].AICScore, 1e-9)
	assert.InDelta(t, 10.0, out[0].CESScore, 1e-9)
	assert.InDelta(t, 10.0, out[0].OverallScore, 1e-9)
	assert.Equal(t, "ChatGPT analysis shows strong visibility with good content depth.", out[0].Analysis)

	assert.InDelta(t, 5.0, out[1].AICScore, 1e-9)
	assert.InDelta(t, 5.0, out[1].OverallScore, 1e-9)
	assert.Equal(t, "Claude analysis shows moderate visibility with good content depth.", out[1].Analysis)

	assert.InDelta(t, 4.8, out[2].AICScore, 1e-9)
	assert.InDelta(t, 0.0, out[2].MTSScore, 1e-9)

	assert.Equal(t, []string{"Clear messaging", "Product information"}, out[0].Strengths)
	assert.Equal(t, []string{"Limited comparison content", "Update frequency"}, out[0].Weaknesses)
}

func TestAccuracyChecks(t *testing.T) {
	platforms := []types.PlatformScore{{Platform: "ChatGPT", Score: 90}, {Platform: "Perplexity", Score: 40}}

	strong := AccuracyChecks(platforms, acme, types.PageFacts{HasPricing: true, HasBlog: true}, types.NewGEOMetrics(8, 8, 8))
	require.Len(t, strong, 2)
	// 85 + 8 + 40/25
	assert.Equal(t, 95, strong[0].OverallAccuracy)
	assert.Empty(t, strong[0].Hallucinations)
	assert.Empty(t, strong[0].MissingInfo)
	assert.Equal(t, []string{"What is Acme?", "Who are Acme's competitors?", "What are the benefits of Acme?"}, strong[0].TestQueries)
	assert.Len(t, strong[0].CorrectFacts, 3)

	weak := AccuracyChecks(platforms, acme, types.PageFacts{}, types.GEOMetrics{})
	// 85 + 0 - 10/25
	assert.Equal(t, 85, weak[1].OverallAccuracy)
	require.Len(t, weak[1].Hallucinations, 1)
	assert.Equal(t, types.ImpactLow, weak[1].Hallucinations[0].Severity)
	assert.Equal(t, []string{"Pricing details", "Recent product updates"}, weak[1].MissingInfo)
	assert.NotNil(t, weak[0].Hallucinations)
}

func TestQuickWins(t *testing.T) {
	wins := QuickWins(types.PageFacts{})
	require.Len(t, wins, 3)
	assert.Equal(t, "Add FAQ Schema Markup", wins[0].Title)
	assert.Equal(t, "Content Marketing", wins[1].Owner)
	assert.Equal(t, "+8-10% improvement in credibility score", wins[2].ExpectedOutcome)
	for _, w := range wins {
		assert.Equal(t, types.ImpactHigh, w.Impact)
		assert.Equal(t, types.ImpactLow, w.Effort)
	}

	none := QuickWins(types.PageFacts{HasFAQ: true, HasComparisons: true, HasTestimonials: true})
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStrategicBets(t *testing.T) {
	bets := StrategicBets()
	require.Len(t, bets, 2)
	assert.Equal(t, "3-4 months", bets[0].Timeline)
	assert.Equal(t, "Content Strategy", bets[1].Owner)
}
