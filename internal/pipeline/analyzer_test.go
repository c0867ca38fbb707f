package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-visibility/internal/brand"
	"github.com/jonathan/geo-visibility/internal/competitors"
	"github.com/jonathan/geo-visibility/internal/fetch"
	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/llm/llmtest"
	"github.com/jonathan/geo-visibility/internal/recommend"
	"github.com/jonathan/geo-visibility/internal/scoring"
	"github.com/jonathan/geo-visibility/internal/types"
	"github.com/jonathan/geo-visibility/internal/visibility"
)

type fakePages struct {
	raw types.RawPageFacts
	err error
}

func (f fakePages) Fetch(context.Context, string) (types.RawPageFacts, error) {
	return f.raw, f.err
}

func exampleFacts() types.RawPageFacts {
	return types.RawPageFacts{
		"url":            "https://example.com",
		"title":          "Example Domain",
		"textContent":    "",
		"headings":       []any{"Example Domain"},
		"links":          []any{"https://www.iana.org/domains/example"},
		"hasFAQ":         false,
		"hasComparisons": false,
	}
}

func analyzerWith(client llm.Client, pages fetch.PageFacter, onProgress ProgressCallback) *Analyzer {
	return NewAnalyzer(Components{
		Pages:       pages,
		Brand:       brand.NewExtractor(client, nil),
		Competitors: competitors.NewDiscoverer(client, nil, nil),
		Visibility:  visibility.NewEstimator(client, visibility.NewLiveProbe(nil, 0, nil), nil),
		Recommend:   recommend.NewGenerator(client, nil),
		OnProgress:  onProgress,
	})
}

func TestAnalyze_ExampleDomainWithFailingModel(t *testing.T) {
	a := analyzerWith(llmtest.Failing(errors.New("model down")), fakePages{raw: exampleFacts()}, nil)

	result, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", result.URL)
	assert.Equal(t, "example.com", result.BrandInfo.Domain)

	require.Len(t, result.Gaps, 8)
	assert.Equal(t, types.Gap{Element: scoring.GapFAQ, Impact: types.ImpactHigh, Found: false}, result.Gaps[0])
	assert.Equal(t, types.Gap{Element: scoring.GapComparisons, Impact: types.ImpactHigh, Found: false}, result.Gaps[1])

	titles := map[string]types.Impact{}
	for _, r := range result.Recommendations {
		titles[r.Title] = r.Priority
	}
	assert.Equal(t, types.ImpactHigh, titles["Develop AI-Optimized FAQ Targeting Unknown Queries"])
	assert.Equal(t, types.ImpactHigh, titles["Build Competitive Comparison Content for Unknown"])

	// platforms 65,60,65,58 average 62; dimensions average 50
	assert.Equal(t, 56, result.OverallScore)

	own := result.CurrentBrand()
	require.NotNil(t, own)
	assert.Equal(t, float64(result.OverallScore), own.Score)
	assert.Equal(t, 1, own.Rank)

	require.NotNil(t, result.LiveProbe)
	assert.False(t, result.LiveProbe.Configured)
	assert.Equal(t, visibility.UnconfiguredScore, result.LiveProbe.Score)
	require.NotNil(t, result.GEOMetrics)

	assert.Len(t, result.PlatformScoreDetails, 4)
	assert.Len(t, result.AccuracyChecks, 4)
	assert.Len(t, result.QuickWins, 3)
	assert.Len(t, result.StrategicBets, 2)
	assert.Len(t, result.CompetitorAnalysis, 1)
}

func TestAnalyze_NilClientsUseFallbacks(t *testing.T) {
	a := NewAnalyzer(Components{Pages: fakePages{raw: exampleFacts()}})

	result, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Recommendations)
	assert.Len(t, result.PlatformScores, 4)
	assert.Len(t, result.DimensionScores, 6)
}

func TestAnalyze_GarbageFacts(t *testing.T) {
	raw := types.RawPageFacts{"title": 42, "headings": "nope", "metaTags": []any{1}, "hasFAQ": "yes"}
	a := analyzerWith(llmtest.JSON(`{"unexpected": true}`), fakePages{raw: raw}, nil)

	result, err := a.Analyze(context.Background(), "https://garbage.test")
	require.NoError(t, err)
	assert.Equal(t, "https://garbage.test", result.URL)
	assert.True(t, result.Gaps[0].Found)
}

func TestAnalyze_FetchError(t *testing.T) {
	fetchErr := &fetch.Error{URL: "https://down.test", Message: "connection refused"}
	a := analyzerWith(nil, fakePages{err: fetchErr}, nil)

	result, err := a.Analyze(context.Background(), "https://down.test")
	require.Error(t, err)
	assert.Nil(t, result)

	var target *fetch.Error
	assert.ErrorAs(t, err, &target)
	var vf *ValidationFailure
	assert.False(t, errors.As(err, &vf))
}

func TestAnalyze_ReportsProgress(t *testing.T) {
	var (
		mu    sync.Mutex
		steps []string
	)
	record := func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		steps = append(steps, e.Step)
	}

	a := analyzerWith(nil, fakePages{raw: exampleFacts()}, record)
	_, err := a.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{
		StepFetch, StepBrand, StepCompetitors, StepVisibility, StepScoring,
		StepRecommendations, StepInsights, StepValidate,
	}, steps)
}

func TestAnalyzer_CloseWithoutClients(t *testing.T) {
	assert.NoError(t, NewAnalyzer(Components{}).Close())
}
