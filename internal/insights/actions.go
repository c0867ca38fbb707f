package insights

import "github.com/jonathan/geo-visibility/internal/types"

// MaxQuickWins caps the quick win list.
const MaxQuickWins = 3

// QuickWins lists low-effort, high-impact actions for missing content.
func QuickWins(f types.PageFacts) []types.QuickWin {
	wins := []types.QuickWin{}
	if !f.HasFAQ {
		wins = append(wins, types.QuickWin{
			Title:           "Add FAQ Schema Markup",
			Description:     "Implement Schema.org FAQPage markup to increase visibility in AI responses.",
			Impact:          types.ImpactHigh,
			Effort:          types.ImpactLow,
			Owner:           "Engineering",
			ExpectedOutcome: "+12-15% improvement in question-based queries",
		})
	}
	if !f.HasComparisons {
		wins = append(wins, types.QuickWin{
			Title:           "Create Comparison Pages",
			Description:     "Build dedicated comparison pages addressing common queries.",
			Impact:          types.ImpactHigh,
			Effort:          types.ImpactLow,
			Owner:           "Content Marketing",
			ExpectedOutcome: "+20-25% in comparison query visibility",
		})
	}
	if !f.HasTestimonials {
		wins = append(wins, types.QuickWin{
			Title:           "Add Customer Testimonials",
			Description:     "Include verified customer testimonials with names and credentials.",
			Impact:          types.ImpactHigh,
			Effort:          types.ImpactLow,
			Owner:           "Marketing",
			ExpectedOutcome: "+8-10% improvement in credibility score",
		})
	}
	if len(wins) > MaxQuickWins {
		wins = wins[:MaxQuickWins]
	}
	return wins
}

// StrategicBets lists the long-running initiatives recommended to every brand.
func StrategicBets() []types.StrategicBet {
	return []types.StrategicBet{
		{
			Title:           "Comprehensive Use Case Library",
			Description:     "Build a library of 50+ detailed use cases with step-by-step guides.",
			Impact:          types.ImpactHigh,
			Effort:          types.ImpactHigh,
			Owner:           "Product Marketing",
			Timeline:        "3-4 months",
			ExpectedOutcome: "+30-40% improvement in utility score",
		},
		{
			Title:           "AI-Optimized Content Refresh",
			Description:     "Systematically refresh content to be more conversational with citations.",
			Impact:          types.ImpactHigh,
			Effort:          types.ImpactHigh,
			Owner:           "Content Strategy",
			Timeline:        "4-6 months",
			ExpectedOutcome: "+15-20% overall score improvement",
		},
	}
}
