package pipeline

import (
	"errors"
	"fmt"

	"github.com/jonathan/geo-visibility/internal/schemas"
	"github.com/jonathan/geo-visibility/internal/types"
)

// Parts holds every sub-result of one analysis.
type Parts struct {
	URL                  string
	Brand                types.BrandInfo
	OverallScore         int
	Platforms            []types.PlatformScore
	Dimensions           []types.DimensionScore
	Competitors          []types.Competitor
	Gaps                 []types.Gap
	Recommendations      []types.Recommendation
	GEO                  types.GEOMetrics
	CompetitorAnalysis   []types.CompetitorAnalysis
	PlatformScoreDetails []types.PlatformScoreDetail
	AccuracyChecks       []types.AccuracyCheck
	QuickWins            []types.QuickWin
	StrategicBets        []types.StrategicBet
	LiveProbe            *types.LiveProbe
}

// Assemble merges the parts into a result. The brand's own competitor entry
// takes the overall score, and every list is non-nil so it encodes as an array.
func Assemble(p Parts) *types.AnalysisResult {
	competitors := make([]types.Competitor, len(p.Competitors))
	copy(competitors, p.Competitors)
	for i := range competitors {
		if competitors[i].IsCurrentBrand {
			competitors[i].Score = float64(p.OverallScore)
		}
		competitors[i].Strengths = nonNil(competitors[i].Strengths)
	}

	recs := make([]types.Recommendation, len(p.Recommendations))
	for i, r := range p.Recommendations {
		r.ActionItems = nonNil(r.ActionItems)
		recs[i] = r
	}

	geo := p.GEO
	result := &types.AnalysisResult{
		URL:                  p.URL,
		BrandInfo:            p.Brand,
		OverallScore:         p.OverallScore,
		PlatformScores:       nonNil(p.Platforms),
		DimensionScores:      nonNil(p.Dimensions),
		Competitors:          competitors,
		Gaps:                 nonNil(p.Gaps),
		Recommendations:      recs,
		GEOMetrics:           &geo,
		CompetitorAnalysis:   nonNil(p.CompetitorAnalysis),
		PlatformScoreDetails: nonNil(p.PlatformScoreDetails),
		AccuracyChecks:       nonNil(p.AccuracyChecks),
		QuickWins:            nonNil(p.QuickWins),
		StrategicBets:        nonNil(p.StrategicBets),
		LiveProbe:            p.LiveProbe,
	}
	if result.LiveProbe != nil && result.LiveProbe.Tests == nil {
		probe := *result.LiveProbe
		probe.Tests = []types.ProbeTest{}
		result.LiveProbe = &probe
	}
	return result
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ValidationFailure reports an assembled result that does not match the
// AnalysisResult schema. It is the only fatal pipeline error after fetching.
type ValidationFailure struct {
	Err error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("analysis result failed validation: %v", e.Err)
}

func (e *ValidationFailure) Unwrap() error {
	return e.Err
}

// Details is a single-line description of what failed.
func (e *ValidationFailure) Details() string {
	var ve *schemas.ValidationError
	if errors.As(e.Err, &ve) {
		return ve.Details()
	}
	return e.Err.Error()
}
