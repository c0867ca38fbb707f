package recommend

import (
	"fmt"
	"slices"

	"github.com/jonathan/geo-visibility/internal/scoring"
	"github.com/jonathan/geo-visibility/internal/types"
)

const (
	defaultBrandName = "your brand"
	defaultIndustry  = "your industry"
)

// Fallback builds recommendations from the missing elements alone.
// It always returns between one and MaxFallback entries.
func Fallback(missing []string, brand types.BrandInfo) []types.Recommendation {
	name := brand.Name
	if name == "" {
		name = defaultBrandName
	}
	industry := brand.Industry
	if industry == "" {
		industry = defaultIndustry
	}

	var recs []types.Recommendation
	if slices.Contains(missing, scoring.GapFAQ) {
		recs = append(recs, faq(name, industry))
	}
	if slices.Contains(missing, scoring.GapComparisons) {
		recs = append(recs, comparisons(name, industry))
	}
	if slices.Contains(missing, scoring.GapUseCases) {
		recs = append(recs, useCases(name, industry))
	}
	if slices.Contains(missing, scoring.GapDocumentation) {
		recs = append(recs, documentation(name))
	}

	if len(recs) == 0 {
		recs = append(recs, optimize(name, industry), thoughtLeadership(name, industry))
	}
	if len(recs) > MaxFallback {
		recs = recs[:MaxFallback]
	}
	return recs
}

func faq(name, industry string) types.Recommendation {
	return types.Recommendation{
		Title:       fmt.Sprintf("Develop AI-Optimized FAQ Targeting %s Queries", industry),
		Description: fmt.Sprintf("AI platforms heavily weight FAQ content when answering user questions about %s. Without structured Q&A, you're invisible to question-based searches in ChatGPT, Claude, and Perplexity.", name),
		Priority:    types.ImpactHigh,
		Category:    types.CategoryContent,
		ActionItems: []string{
			fmt.Sprintf("Research top 20 questions users ask about %s solutions using AnswerThePublic and AlsoAsked", industry),
			"Create dedicated FAQ page with Schema.org FAQPage markup for maximum AI visibility",
			fmt.Sprintf("Include comparison questions: \"How does %s compare to [competitor]?\"", name),
			"Add conversational answers (150-200 words each) that directly address user intent",
		},
		EstimatedImpact: "+10-15 points",
	}
}

func comparisons(name, industry string) types.Recommendation {
	return types.Recommendation{
		Title:       fmt.Sprintf("Build Competitive Comparison Content for %s", industry),
		Description: fmt.Sprintf("Most B2B buyers compare 3-5 options before deciding. Without comparison pages, %s loses out when users ask AI \"What are alternatives to [competitor]?\" or \"%s vs [competitor]\".", name, name),
		Priority:    types.ImpactHigh,
		Category:    types.CategoryCompetitive,
		ActionItems: []string{
			fmt.Sprintf("Identify top 5 competitors in %s through Tracxn, Crunchbase, or G2", industry),
			fmt.Sprintf("Create individual comparison pages: \"%s vs [Competitor]\" with honest, feature-based analysis", name),
			"Include comparison tables with pricing, features, use cases, and ideal customer profiles",
			fmt.Sprintf("Optimize for queries like \"best %s tools\" and \"%s alternatives\"", industry, name),
		},
		EstimatedImpact: "+12-18 points",
	}
}

func useCases(name, industry string) types.Recommendation {
	return types.Recommendation{
		Title:       fmt.Sprintf("Create %s-Specific Use Case Library", industry),
		Description: fmt.Sprintf("AI platforms need concrete examples to recommend solutions. Use cases help ChatGPT and Claude understand WHEN to recommend %s for specific problems.", name),
		Priority:    types.ImpactHigh,
		Category:    types.CategoryContent,
		ActionItems: []string{
			fmt.Sprintf("Document 5-7 detailed use cases showing how %s solves specific %s problems", name, industry),
			fmt.Sprintf("Include metrics: \"Company X increased [metric] by Y%% using %s\"", name),
			"Structure as problem, solution, results for maximum AI clarity",
			"Add industry-specific keywords AI models associate with your solution category",
		},
		EstimatedImpact: "+8-12 points",
	}
}

func documentation(name string) types.Recommendation {
	return types.Recommendation{
		Title:       "Publish Comprehensive Technical Documentation",
		Description: fmt.Sprintf("For technical products, documentation is critical for AI visibility. Without it, AI platforms can't answer \"how to\" questions about %s.", name),
		Priority:    types.ImpactHigh,
		Category:    types.CategoryTechnical,
		ActionItems: []string{
			"Create getting-started guide, API reference, and implementation tutorials",
			"Use clear headings (H1-H4) and structured sections for AI crawlers",
			"Include code examples, diagrams, and step-by-step instructions",
			"Implement OpenAPI/Swagger spec if you have an API for maximum machine-readability",
		},
		EstimatedImpact: "+10-14 points",
	}
}

func optimize(name, industry string) types.Recommendation {
	return types.Recommendation{
		Title:       "Optimize Existing Content for AI Discoverability",
		Description: fmt.Sprintf("%s has solid foundational content. Focus on optimizing what you have for better AI platform rankings and mention rates.", name),
		Priority:    types.ImpactMedium,
		Category:    types.CategorySEO,
		ActionItems: []string{
			"Add Schema.org markup (Organization, Product, FAQPage) to existing pages",
			fmt.Sprintf("Expand thin content pages to 800+ words with specific %s examples", industry),
			"Create internal linking structure connecting related topics",
			fmt.Sprintf("Update meta descriptions to directly answer common %s questions", industry),
		},
		EstimatedImpact: "+6-10 points",
	}
}

func thoughtLeadership(name, industry string) types.Recommendation {
	return types.Recommendation{
		Title:       fmt.Sprintf("Develop Thought Leadership Content in %s", industry),
		Description: fmt.Sprintf("Establish %s as an authority by publishing expert insights AI platforms can cite when discussing %s trends and best practices.", name, industry),
		Priority:    types.ImpactMedium,
		Category:    types.CategoryContent,
		ActionItems: []string{
			fmt.Sprintf("Launch blog with weekly posts on %s trends, challenges, and solutions", industry),
			"Include original data, case studies, or proprietary research",
			"Guest post on industry publications to build external citations",
			"Repurpose content into multiple formats (guides, videos, infographics)",
		},
		EstimatedImpact: "+5-8 points",
	}
}
