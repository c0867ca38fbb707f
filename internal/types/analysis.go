// Package types provides type definitions for structured data used throughout the geo-visibility system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "math"

// RawPageFacts is the loosely typed record returned by the page facts adapter.
// Any key may be missing or carry an unexpected type.
type RawPageFacts map[string]any

// PageFacts is the sanitized view of a scraped website. Every field is present.
type PageFacts struct {
	URL              string            `json:"url"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	TextContent      string            `json:"textContent"`
	Headings         []string          `json:"headings"`
	Links            []string          `json:"links"`
	MetaTags         map[string]string `json:"metaTags"`
	HasFAQ           bool              `json:"hasFAQ"`
	HasTestimonials  bool              `json:"hasTestimonials"`
	HasPricing       bool              `json:"hasPricing"`
	HasAbout         bool              `json:"hasAbout"`
	HasBlog          bool              `json:"hasBlog"`
	HasComparisons   bool              `json:"hasComparisons"`
	HasDocumentation bool              `json:"hasDocumentation"`
	HasUseCases      bool              `json:"hasUseCases"`
}

// BrandInfo identifies the analyzed company
type BrandInfo struct {
	Name        string `json:"name" jsonschema:"minLength=1"`
	Domain      string `json:"domain" jsonschema:"minLength=1"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
}

// Impact is a three-level magnitude used by gaps, priorities and severities
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Valid reports whether the impact is one of the known levels.
func (i Impact) Valid() bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}

// Category classifies a recommendation
type Category string

const (
	CategoryContent     Category = "content"
	CategoryTechnical   Category = "technical"
	CategorySEO         Category = "seo"
	CategoryCompetitive Category = "competitive"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryContent, CategoryTechnical, CategorySEO, CategoryCompetitive:
		return true
	}
	return false
}

// PlatformScore is the estimated or measured visibility on one AI platform
type PlatformScore struct {
	Platform string `json:"platform" jsonschema:"minLength=1"`
	Score    int    `json:"score" jsonschema:"minimum=0,maximum=100"`
	Color    string `json:"color"`
}

// DimensionScore is one of the six deterministic 0-100 dimensions
type DimensionScore struct {
	Dimension string `json:"dimension" jsonschema:"enum=Mention Rate,enum=Context Quality,enum=Sentiment,enum=Prominence,enum=Comparison,enum=Recommendation"`
	Score     int    `json:"score" jsonschema:"minimum=0,maximum=100"`
	FullMark  int    `json:"fullMark" jsonschema:"minimum=100,maximum=100"`
}

// GEOMetrics holds the three weighted sub-metrics and their weighted overall.
// Build it with NewGEOMetrics so Overall always matches the sub-scores.
type GEOMetrics struct {
	AIC     float64 `json:"aic" jsonschema:"minimum=0,maximum=10"`
	CES     float64 `json:"ces" jsonschema:"minimum=0,maximum=10"`
	MTS     float64 `json:"mts" jsonschema:"minimum=0,maximum=10"`
	Overall float64 `json:"overall" jsonschema:"minimum=0,maximum=10"`
}

// GEO weights
const (
	WeightAIC = 0.40
	WeightCES = 0.35
	WeightMTS = 0.25
)

// NewGEOMetrics computes overall = round(0.40*aic + 0.35*ces + 0.25*mts, 2).
func NewGEOMetrics(aic, ces, mts float64) GEOMetrics {
	return GEOMetrics{
		AIC:     aic,
		CES:     ces,
		MTS:     mts,
		Overall: RoundTo(WeightAIC*aic+WeightCES*ces+WeightMTS*mts, 2),
	}
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Competitor is one entry of the ranked competitor list.
// Exactly one entry in a list has IsCurrentBrand set.
type Competitor struct {
	Rank           int      `json:"rank" jsonschema:"minimum=1"`
	Name           string   `json:"name" jsonschema:"minLength=1"`
	Domain         string   `json:"domain"`
	Score          float64  `json:"score" jsonschema:"minimum=0,maximum=100"`
	MarketOverlap  float64  `json:"marketOverlap" jsonschema:"minimum=0,maximum=100"`
	Strengths      []string `json:"strengths"`
	IsCurrentBrand bool     `json:"isCurrentBrand"`
	Funding        *float64 `json:"funding,omitempty"`
	Employees      *int     `json:"employees,omitempty"`
	Founded        *int     `json:"founded,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// Gap records whether one AI-relevant content element was found
type Gap struct {
	Element string `json:"element"`
	Impact  Impact `json:"impact" jsonschema:"enum=high,enum=medium,enum=low"`
	Found   bool   `json:"found"`
}

// Recommendation is a prioritized improvement action
type Recommendation struct {
	Title           string   `json:"title" jsonschema:"minLength=1"`
	Description     string   `json:"description" jsonschema:"minLength=1"`
	Priority        Impact   `json:"priority" jsonschema:"enum=high,enum=medium,enum=low"`
	Category        Category `json:"category" jsonschema:"enum=content,enum=technical,enum=seo,enum=competitive"`
	ActionItems     []string `json:"actionItems" jsonschema:"minItems=1"`
	EstimatedImpact string   `json:"estimatedImpact" jsonschema:"minLength=1"`
}

// CompetitorAnalysis compares the brand and its top competitors on GEO facets
type CompetitorAnalysis struct {
	Name               string   `json:"name"`
	URL                string   `json:"url"`
	DiscoveryScore     float64  `json:"discovery_score" jsonschema:"minimum=0,maximum=10"`
	ComparisonScore    float64  `json:"comparison_score" jsonschema:"minimum=0,maximum=10"`
	UtilityScore       float64  `json:"utility_score" jsonschema:"minimum=0,maximum=10"`
	OverallGEOScore    float64  `json:"overall_geo_score" jsonschema:"minimum=0,maximum=10"`
	MentionFrequency   int      `json:"mention_frequency" jsonschema:"minimum=0,maximum=100"`
	CitationRate       int      `json:"citation_rate" jsonschema:"minimum=0,maximum=100"`
	HeadToHeadWins     int      `json:"head_to_head_wins" jsonschema:"minimum=0,maximum=100"`
	KeyDifferentiators []string `json:"key_differentiators"`
}

// PlatformScoreDetail breaks a platform score into GEO sub-metrics
type PlatformScoreDetail struct {
	Platform     string   `json:"platform"`
	AICScore     float64  `json:"aic_score" jsonschema:"minimum=0,maximum=10"`
	CESScore     float64  `json:"ces_score" jsonschema:"minimum=0,maximum=10"`
	MTSScore     float64  `json:"mts_score" jsonschema:"minimum=0,maximum=10"`
	OverallScore float64  `json:"overall_score" jsonschema:"minimum=0,maximum=10"`
	Analysis     string   `json:"analysis"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
}

// Hallucination is a claim an assistant is likely to get wrong
type Hallucination struct {
	Claim    string `json:"claim"`
	Reason   string `json:"reason"`
	Severity Impact `json:"severity" jsonschema:"enum=high,enum=medium,enum=low"`
}

// AccuracyCheck summarizes how accurately a platform describes the brand
type AccuracyCheck struct {
	Platform        string          `json:"platform"`
	TestQueries     []string        `json:"test_queries"`
	OverallAccuracy int             `json:"overall_accuracy" jsonschema:"minimum=0,maximum=100"`
	Hallucinations  []Hallucination `json:"hallucinations"`
	MissingInfo     []string        `json:"missing_info"`
	CorrectFacts    []string        `json:"correct_facts"`
}

// QuickWin is a low-effort, high-impact action
type QuickWin struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Impact          Impact `json:"impact" jsonschema:"enum=high,enum=medium,enum=low"`
	Effort          Impact `json:"effort" jsonschema:"enum=high,enum=medium,enum=low"`
	Owner           string `json:"owner"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// StrategicBet is a long-running, high-effort initiative
type StrategicBet struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Impact          Impact `json:"impact" jsonschema:"enum=high,enum=medium,enum=low"`
	Effort          Impact `json:"effort" jsonschema:"enum=high,enum=medium,enum=low"`
	Owner           string `json:"owner"`
	Timeline        string `json:"timeline,omitempty"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// ProbeTest is the outcome of one live probe query
type ProbeTest struct {
	Query     string `json:"query"`
	Mentioned bool   `json:"mentioned"`
	Context   string `json:"context,omitempty"`
	Response  string `json:"response"`
}

// LiveProbe is the measured mention rate on the platform with live access
type LiveProbe struct {
	Platform   string      `json:"platform"`
	Score      int         `json:"score" jsonschema:"minimum=0,maximum=100"`
	Configured bool        `json:"configured"`
	Summary    string      `json:"summary"`
	Tests      []ProbeTest `json:"tests"`
}

// AnalysisResult is the aggregate report returned for one analyzed URL.
// It is treated as an immutable value once assembled.
type AnalysisResult struct {
	URL                  string                `json:"url" jsonschema:"minLength=1"`
	BrandInfo            BrandInfo             `json:"brandInfo"`
	OverallScore         int                   `json:"overallScore" jsonschema:"minimum=0,maximum=100"`
	PlatformScores       []PlatformScore       `json:"platformScores" jsonschema:"minItems=1"`
	DimensionScores      []DimensionScore      `json:"dimensionScores" jsonschema:"minItems=6,maxItems=6"`
	Competitors          []Competitor          `json:"competitors" jsonschema:"minItems=1"`
	Gaps                 []Gap                 `json:"gaps" jsonschema:"minItems=8,maxItems=8"`
	Recommendations      []Recommendation      `json:"recommendations" jsonschema:"minItems=1"`
	GEOMetrics           *GEOMetrics           `json:"geoMetrics,omitempty"`
	CompetitorAnalysis   []CompetitorAnalysis  `json:"competitorAnalysis"`
	PlatformScoreDetails []PlatformScoreDetail `json:"platformScoreDetails"`
	AccuracyChecks       []AccuracyCheck       `json:"accuracyChecks"`
	QuickWins            []QuickWin            `json:"quickWins"`
	StrategicBets        []StrategicBet        `json:"strategicBets"`
	LiveProbe            *LiveProbe            `json:"liveProbe,omitempty"`
}

// CurrentBrand returns the competitor entry flagged as the analyzed brand, or nil.
func (r *AnalysisResult) CurrentBrand() *Competitor {
	for i := range r.Competitors {
		if r.Competitors[i].IsCurrentBrand {
			return &r.Competitors[i]
		}
	}
	return nil
}
