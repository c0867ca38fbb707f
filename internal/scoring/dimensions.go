// Package scoring computes the deterministic visibility scores of a page.
// Every function is pure: the same PageFacts always give the same scores.
package scoring

import (
	"unicode/utf8"

	"github.com/jonathan/geo-visibility/internal/types"
)

// Dimension names, in report order.
const (
	MentionRate    = "Mention Rate"
	ContextQuality = "Context Quality"
	Sentiment      = "Sentiment"
	Prominence     = "Prominence"
	Comparison     = "Comparison"
	Recommendation = "Recommendation"
)

// FullMark is the maximum of every dimension score.
const FullMark = 100

// Dimensions returns the six dimension scores in report order.
func Dimensions(f types.PageFacts) []types.DimensionScore {
	return []types.DimensionScore{
		{Dimension: MentionRate, Score: mentionRate(f), FullMark: FullMark},
		{Dimension: ContextQuality, Score: contextQuality(f), FullMark: FullMark},
		{Dimension: Sentiment, Score: sentiment(f), FullMark: FullMark},
		{Dimension: Prominence, Score: prominence(f), FullMark: FullMark},
		{Dimension: Comparison, Score: comparison(f), FullMark: FullMark},
		{Dimension: Recommendation, Score: recommendation(f), FullMark: FullMark},
	}
}

func mentionRate(f types.PageFacts) int {
	score := 50
	if length(f.Description) > 50 {
		score += 15
	}
	if f.HasFAQ {
		score += 10
	}
	if f.HasBlog {
		score += 10
	}
	if length(f.TextContent) > 2000 {
		score += 15
	}
	return capAt(score, FullMark)
}

func contextQuality(f types.PageFacts) int {
	score := 40
	if f.Description != "" {
		score += 20
	}
	if len(f.Headings) > 5 {
		score += 15
	}
	if f.HasDocumentation {
		score += 15
	}
	if f.MetaTags["og:description"] != "" {
		score += 10
	}
	return capAt(score, FullMark)
}

func sentiment(f types.PageFacts) int {
	score := 70
	if f.HasTestimonials {
		score += 15
	}
	if f.HasPricing {
		score += 10
	}
	if f.HasAbout {
		score += 5
	}
	return capAt(score, FullMark)
}

func prominence(f types.PageFacts) int {
	score := 45
	if length(f.Title) > 10 {
		score += 10
	}
	if len(f.Headings) > 8 {
		score += 15
	}
	if f.HasComparisons {
		score += 20
	}
	if f.MetaTags["og:title"] != "" {
		score += 10
	}
	return capAt(score, FullMark)
}

func comparison(f types.PageFacts) int {
	score := 35
	if f.HasComparisons {
		score += 35
	}
	if f.HasFAQ {
		score += 15
	}
	if f.HasPricing {
		score += 15
	}
	return capAt(score, FullMark)
}

func recommendation(f types.PageFacts) int {
	score := 50
	if f.HasTestimonials {
		score += 20
	}
	if f.HasFAQ {
		score += 15
	}
	if f.HasUseCases {
		score += 15
	}
	return capAt(score, FullMark)
}

func capAt(score, max int) int {
	if score > max {
		return max
	}
	return score
}

// length counts characters, not bytes.
func length(s string) int {
	return utf8.RuneCountInString(s)
}
