package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/llm/llmtest"
	"github.com/jonathan/geo-visibility/internal/scoring"
	"github.com/jonathan/geo-visibility/internal/types"
)

var acme = types.BrandInfo{Name: "Acme", Domain: "acme.test", Industry: "Analytics", Description: "Dashboards"}

func testFacts() types.PageFacts {
	return types.PageFacts{
		URL:         "https://acme.test",
		Title:       "Acme",
		Description: "Analytics for teams",
		Headings:    []string{},
		Links:       []string{},
		MetaTags:    map[string]string{},
		HasFAQ:      true,
		HasPricing:  true,
	}
}

func testPlatforms() []types.PlatformScore {
	return []types.PlatformScore{
		{Platform: "ChatGPT", Score: 65}, {Platform: "Claude", Score: 50},
		{Platform: "Gemini", Score: 85}, {Platform: "Perplexity", Score: 60},
	}
}

const validResponse = `{"recommendations": [
	{"title": "Publish Acme vs Rival page", "description": "Buyers compare", "priority": "high",
	 "category": "competitive", "actionItems": ["Draft table", 3, "Ship page"], "estimatedImpact": "+10-12 points"},
	{"title": "", "description": "missing title", "priority": "high", "category": "content",
	 "actionItems": ["x"], "estimatedImpact": "+1 point"},
	{"title": "Bad enum", "description": "d", "priority": "urgent", "category": "content",
	 "actionItems": ["x"], "estimatedImpact": "+1 point"},
	{"title": "No items", "description": "d", "priority": "low", "category": "seo",
	 "actionItems": [1, 2], "estimatedImpact": "+1 point"},
	{"title": "Items not array", "description": "d", "priority": "low", "category": "seo",
	 "actionItems": "do it", "estimatedImpact": "+1 point"},
	"not an object"
]}`

func TestGenerate_ValidEntriesKept(t *testing.T) {
	mock := llmtest.JSON(validResponse)
	g := NewGenerator(mock, nil)
	f := testFacts()

	recs := g.Generate(context.Background(), f, acme, scoring.Gaps(f), testPlatforms())
	require.Len(t, recs, 1)
	assert.Equal(t, "Publish Acme vs Rival page", recs[0].Title)
	assert.Equal(t, types.ImpactHigh, recs[0].Priority)
	assert.Equal(t, types.CategoryCompetitive, recs[0].Category)
	assert.Equal(t, []string{"Draft table", "Ship page"}, recs[0].ActionItems)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.Options{Tier: llm.TierAdvanced, Temperature: Temperature}, calls[0].Options)
	prompt := calls[0].Prompt
	assert.Contains(t, prompt, "https://acme.test")
	assert.Contains(t, prompt, "Current AI visibility score: 65/100")
	assert.Contains(t, prompt, "- FAQ Section ✓")
	assert.Contains(t, prompt, "- Comparison Pages ✗")
	assert.Contains(t, prompt, "- Has FAQ section: Yes ✓")
	assert.Contains(t, prompt, "- Claude: 50/100 (needs attention)")
	assert.Contains(t, prompt, "- Gemini: 85/100 (good)")
	assert.Contains(t, prompt, `Meta description: "Analytics for teams"`)
}

func TestGenerate_FallsBack(t *testing.T) {
	f := testFacts()
	gaps := scoring.Gaps(f)
	want := Fallback(scoring.Missing(gaps), acme)

	tests := []struct {
		name   string
		client llm.Client
	}{
		{name: "nil client", client: nil},
		{name: "model error", client: llmtest.Failing(errors.New("quota"))},
		{name: "not JSON", client: llmtest.JSON("sorry, no")},
		{name: "missing array", client: llmtest.JSON(`{"recs": []}`)},
		{name: "no valid entries", client: llmtest.JSON(`{"recommendations": [{"title": "x"}]}`)},
		{name: "empty array", client: llmtest.JSON(`{"recommendations": []}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := NewGenerator(tt.client, nil).Generate(context.Background(), f, acme, gaps, testPlatforms())
			assert.Equal(t, want, recs)
			assert.NotEmpty(t, recs)
		})
	}
}

func TestParse(t *testing.T) {
	_, err := Parse(`[]`)
	assert.Error(t, err)

	recs, err := Parse(`{"recommendations": [{"title": " T ", "description": "D", "priority": "medium",
		"category": "technical", "actionItems": ["a", "  ", "b"], "estimatedImpact": "+5 points"}]}`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "T", recs[0].Title)
	assert.Equal(t, []string{"a", "b"}, recs[0].ActionItems)
}

func TestFallback_HighImpactGaps(t *testing.T) {
	missing := []string{scoring.GapFAQ, scoring.GapComparisons, scoring.GapTestimonials, scoring.GapDocumentation, scoring.GapUseCases}
	recs := Fallback(missing, acme)
	require.Len(t, recs, 4)

	assert.Equal(t, "Develop AI-Optimized FAQ Targeting Analytics Queries", recs[0].Title)
	assert.Equal(t, "+10-15 points", recs[0].EstimatedImpact)
	assert.Equal(t, "Build Competitive Comparison Content for Analytics", recs[1].Title)
	assert.Equal(t, types.CategoryCompetitive, recs[1].Category)
	assert.Equal(t, "Create Analytics-Specific Use Case Library", recs[2].Title)
	assert.Equal(t, "Publish Comprehensive Technical Documentation", recs[3].Title)
	assert.Equal(t, types.CategoryTechnical, recs[3].Category)

	for _, r := range recs {
		assert.Equal(t, types.ImpactHigh, r.Priority)
		assert.Len(t, r.ActionItems, 4)
	}
	assert.Contains(t, recs[2].ActionItems[1], "by Y% using Acme")
}

func TestFallback_NothingMissing(t *testing.T) {
	recs := Fallback([]string{scoring.GapBlog}, types.BrandInfo{})
	require.Len(t, recs, 2)
	assert.Equal(t, "Optimize Existing Content for AI Discoverability", recs[0].Title)
	assert.Equal(t, types.CategorySEO, recs[0].Category)
	assert.Equal(t, types.ImpactMedium, recs[0].Priority)
	assert.True(t, strings.HasPrefix(recs[0].Description, "your brand has"))
	assert.Equal(t, "Develop Thought Leadership Content in your industry", recs[1].Title)
	assert.Equal(t, "+5-8 points", recs[1].EstimatedImpact)
}

func TestFallback_AlwaysValid(t *testing.T) {
	for _, missing := range [][]string{nil, {scoring.GapFAQ}, {scoring.GapUseCases, scoring.GapAbout}} {
		recs := Fallback(missing, acme)
		require.NotEmpty(t, recs)
		for _, r := range recs {
			assert.NotEmpty(t, r.Title)
			assert.NotEmpty(t, r.Description)
			assert.True(t, r.Priority.Valid())
			assert.True(t, r.Category.Valid())
			assert.NotEmpty(t, r.ActionItems)
			assert.NotEmpty(t, r.EstimatedImpact)
		}
	}
}
