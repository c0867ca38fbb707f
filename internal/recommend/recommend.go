// Package recommend produces prioritized improvement actions for a page.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/prompts"
	"github.com/jonathan/geo-visibility/internal/scoring"
	"github.com/jonathan/geo-visibility/internal/types"
)

const (
	// Temperature for the recommendation call.
	Temperature = 0.8
	// MaxFallback caps the number of fallback recommendations.
	MaxFallback = 4
)

// Generator asks a generative model for brand-specific recommendations.
type Generator struct {
	client llm.Client
	logger logrus.FieldLogger
}

// NewGenerator creates a Generator. A nil client always yields the fallback.
func NewGenerator(client llm.Client, logger logrus.FieldLogger) *Generator {
	return &Generator{client: client, logger: logging.OrDiscard(logger)}
}

type response struct {
	Recommendations []any `json:"recommendations"`
}

// Generate returns at least one recommendation. Entries the model gets wrong
// are dropped; when none survive the gap-driven fallback is used.
func (g *Generator) Generate(ctx context.Context, facts types.PageFacts, brand types.BrandInfo, gaps []types.Gap, platforms []types.PlatformScore) []types.Recommendation {
	log := g.logger.WithField("url", facts.URL)
	missing := scoring.Missing(gaps)
	if g.client == nil {
		return Fallback(missing, brand)
	}

	prompt, err := buildPrompt(facts, brand, gaps, platforms)
	if err != nil {
		log.WithError(err).Error("recommendation prompt unavailable")
		return Fallback(missing, brand)
	}

	resp, err := g.client.GenerateJSON(ctx, prompt, llm.Options{Tier: llm.TierAdvanced, Temperature: Temperature})
	if err != nil {
		log.WithError(err).Warn("recommendation generation failed, using gap-based recommendations")
		return Fallback(missing, brand)
	}

	recs, err := Parse(resp)
	if err != nil {
		log.WithError(err).Warn("recommendation response unusable, using gap-based recommendations")
		return Fallback(missing, brand)
	}
	log.WithField("count", len(recs)).Debug("recommendations generated")
	return recs
}

// Parse validates each entry of a model response independently. It fails
// when the response is malformed or no entry is valid.
func Parse(resp string) ([]types.Recommendation, error) {
	var parsed response
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations JSON: %w", err)
	}
	if parsed.Recommendations == nil {
		return nil, fmt.Errorf("invalid recommendations data structure")
	}

	out := make([]types.Recommendation, 0, len(parsed.Recommendations))
	for _, item := range parsed.Recommendations {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if rec, ok := validate(m); ok {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid recommendations in response")
	}
	return out, nil
}

func validate(m map[string]any) (types.Recommendation, bool) {
	rec := types.Recommendation{
		Title:           str(m["title"]),
		Description:     str(m["description"]),
		Priority:        types.Impact(str(m["priority"])),
		Category:        types.Category(str(m["category"])),
		EstimatedImpact: str(m["estimatedImpact"]),
	}
	if rec.Title == "" || rec.Description == "" || rec.EstimatedImpact == "" {
		return rec, false
	}
	if !rec.Priority.Valid() || !rec.Category.Valid() {
		return rec, false
	}

	items, ok := m["actionItems"].([]any)
	if !ok {
		return rec, false
	}
	rec.ActionItems = make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			rec.ActionItems = append(rec.ActionItems, s)
		}
	}
	return rec, len(rec.ActionItems) > 0
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func buildPrompt(facts types.PageFacts, brand types.BrandInfo, gaps []types.Gap, platforms []types.PlatformScore) (string, error) {
	description := firstNonEmpty(brand.Description, facts.Description, "Not available")

	found := bulletList(scoring.Found(gaps), " ✓", "- Limited content detected")
	missing := bulletList(scoring.Missing(gaps), " ✗", "- No major gaps detected, focus on optimization")

	checklist := []struct {
		label string
		has   bool
		why   string
	}{
		{"Has FAQ section", facts.HasFAQ, "Critical for AI question-answering"},
		{"Has comparison pages", facts.HasComparisons, "Essential for competitive queries"},
		{"Has testimonials", facts.HasTestimonials, "Builds credibility in AI responses"},
		{"Has blog/content", facts.HasBlog, "Needed for topical authority"},
		{"Has documentation", facts.HasDocumentation, "Critical for technical queries"},
		{"Has use cases", facts.HasUseCases, "Helps AI understand applications"},
		{"Has pricing info", facts.HasPricing, "Users frequently ask about pricing"},
		{"Has about page", facts.HasAbout, "Needed for company context"},
	}
	lines := make([]string, len(checklist))
	for i, c := range checklist {
		if c.has {
			lines[i] = fmt.Sprintf("- %s: Yes ✓", c.label)
		} else {
			lines[i] = fmt.Sprintf("- %s: No ✗ (%s)", c.label, c.why)
		}
	}

	breakdown := make([]string, len(platforms))
	for i, p := range platforms {
		breakdown[i] = fmt.Sprintf("- %s: %d/100 %s", p.Platform, p.Score, platformNote(p.Score))
	}

	return prompts.Render("analysis.json", "generate-recommendations", map[string]string{
		"URL":               facts.URL,
		"Industry":          brand.Industry,
		"BrandName":         brand.Name,
		"Description":       description,
		"AverageScore":      fmt.Sprintf("%.0f", scoring.PlatformAverage(platforms)),
		"FoundElements":     found,
		"MissingElements":   missing,
		"MetaDescription":   firstNonEmpty(facts.Description, "Missing"),
		"ContentChecklist":  strings.Join(lines, "\n"),
		"PlatformBreakdown": strings.Join(breakdown, "\n"),
	})
}

func platformNote(score int) string {
	switch {
	case score < 60:
		return "(needs attention)"
	case score < 80:
		return "(room for improvement)"
	default:
		return "(good)"
	}
}

func bulletList(items []string, mark, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it + mark
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
