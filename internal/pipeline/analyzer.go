// Package pipeline orchestrates one website analysis from fetch to validated report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/geo-visibility/internal/brand"
	"github.com/jonathan/geo-visibility/internal/competitors"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/facts"
	"github.com/jonathan/geo-visibility/internal/fetch"
	"github.com/jonathan/geo-visibility/internal/insights"
	"github.com/jonathan/geo-visibility/internal/intel"
	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/recommend"
	"github.com/jonathan/geo-visibility/internal/schemas"
	"github.com/jonathan/geo-visibility/internal/scoring"
	"github.com/jonathan/geo-visibility/internal/types"
	"github.com/jonathan/geo-visibility/internal/visibility"
)

// Components are the collaborators of an Analyzer. Nil generative parts
// degrade to their deterministic fallbacks.
type Components struct {
	Pages       fetch.PageFacter
	Brand       *brand.Extractor
	Competitors *competitors.Discoverer
	Visibility  *visibility.Estimator
	Recommend   *recommend.Generator
	OnProgress  ProgressCallback
	Logger      logrus.FieldLogger
}

// Analyzer runs the analysis pipeline. It is safe for concurrent use.
type Analyzer struct {
	pages       fetch.PageFacter
	brand       *brand.Extractor
	competitors *competitors.Discoverer
	visibility  *visibility.Estimator
	recommend   *recommend.Generator
	onProgress  ProgressCallback
	logger      logrus.FieldLogger
	closers     []func() error
}

// NewAnalyzer wires an Analyzer from explicit components.
func NewAnalyzer(c Components) *Analyzer {
	logger := logging.OrDiscard(c.Logger)
	a := &Analyzer{
		pages:       c.Pages,
		brand:       c.Brand,
		competitors: c.Competitors,
		visibility:  c.Visibility,
		recommend:   c.Recommend,
		onProgress:  c.OnProgress,
		logger:      logger,
	}
	if a.pages == nil {
		a.pages = fetch.NewAdapter(fetch.AdapterOptions{Logger: logger})
	}
	if a.brand == nil {
		a.brand = brand.NewExtractor(nil, logger)
	}
	if a.competitors == nil {
		a.competitors = competitors.NewDiscoverer(nil, nil, logger)
	}
	if a.visibility == nil {
		a.visibility = visibility.NewEstimator(nil, nil, logger)
	}
	if a.recommend == nil {
		a.recommend = recommend.NewGenerator(nil, logger)
	}
	return a
}

// New builds an Analyzer from configuration. Missing API keys are not errors:
// the affected steps use their fallbacks and the live probe reports itself
// unconfigured.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, onProgress ProgressCallback) (*Analyzer, error) {
	logger = logging.OrDiscard(logger)
	var closers []func() error

	var client llm.Client
	if key := cfg.ProviderAPIKey(); key != "" {
		c, err := llm.NewClient(ctx, llm.ConfigFor(cfg.Provider), key)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
		}
		client = c
		closers = append(closers, c.Close)
	} else {
		logger.WithField("provider", cfg.Provider).Warn("no model API key configured, using deterministic fallbacks")
	}

	var prober visibility.Prober
	if cfg.GeminiAPIKey != "" {
		probeClient := client
		if llm.Provider(cfg.Provider) != llm.ProviderGemini || probeClient == nil {
			gc, err := llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiAPIKey)
			if err != nil {
				closeAll(closers)
				return nil, fmt.Errorf("failed to create probe client: %w", err)
			}
			probeClient = gc
			closers = append(closers, gc.Close)
		}
		prober = visibility.LLMProber{Client: probeClient}
	}

	source, err := intel.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("competitor intelligence unavailable")
		source = intel.Disabled{}
	}

	a := NewAnalyzer(Components{
		Pages: fetch.NewAdapter(fetch.AdapterOptions{
			UseBrowser: cfg.UseBrowser,
			Logger:     logger,
		}),
		Brand:       brand.NewExtractor(client, logger),
		Competitors: competitors.NewDiscoverer(client, source, logger),
		Visibility: visibility.NewEstimator(client,
			visibility.NewLiveProbe(prober, time.Duration(cfg.ProbeDelay), logger), logger),
		Recommend:  recommend.NewGenerator(client, logger),
		OnProgress: onProgress,
		Logger:     logger,
	})
	a.closers = closers
	return a, nil
}

// Close releases the model clients.
func (a *Analyzer) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Analyze runs the full pipeline for url. Only an unreachable site or a
// result that fails schema validation is an error.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*types.AnalysisResult, error) {
	start := time.Now()
	log := a.logger.WithField("url", url)

	raw, err := a.pages.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	page := facts.Sanitize(raw)
	if page.URL == "" {
		page.URL = url
	}
	a.emit(url, StepFetch, fmt.Sprintf("Fetched %q", page.Title), nil)

	info := a.brand.Extract(ctx, page)
	a.emit(url, StepBrand, "Identified "+info.Name, info)

	var (
		ranked    []types.Competitor
		platforms []types.PlatformScore
		probe     *types.LiveProbe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ranked = a.competitors.Discover(gctx, info, page)
		return nil
	})
	g.Go(func() error {
		platforms, probe = a.visibility.Estimate(gctx, info, page)
		return nil
	})
	_ = g.Wait()
	a.emit(url, StepCompetitors, fmt.Sprintf("Ranked %d competitors", len(ranked)-1), nil)
	a.emit(url, StepVisibility, probe.Summary, platforms)

	dimensions := scoring.Dimensions(page)
	geo := scoring.GEO(page)
	gaps := scoring.Gaps(page)
	overall := scoring.Overall(platforms, dimensions)
	a.emit(url, StepScoring, fmt.Sprintf("Overall score %d", overall), nil)

	recs := a.recommend.Generate(ctx, page, info, gaps, platforms)
	a.emit(url, StepRecommendations, fmt.Sprintf("Generated %d recommendations", len(recs)), nil)

	result := Assemble(Parts{
		URL:                  url,
		Brand:                info,
		OverallScore:         overall,
		Platforms:            platforms,
		Dimensions:           dimensions,
		Competitors:          ranked,
		Gaps:                 gaps,
		Recommendations:      recs,
		GEO:                  geo,
		CompetitorAnalysis:   insights.CompetitorAnalysis(ranked, info, page),
		PlatformScoreDetails: insights.PlatformDetails(platforms, page, geo),
		AccuracyChecks:       insights.AccuracyChecks(platforms, info, page, geo),
		QuickWins:            insights.QuickWins(page),
		StrategicBets:        insights.StrategicBets(),
		LiveProbe:            probe,
	})
	a.emit(url, StepInsights, "Assembled report", nil)

	if err := schemas.ValidateAnalysis(result); err != nil {
		log.WithError(err).Error("assembled result failed validation")
		return nil, &ValidationFailure{Err: err}
	}
	a.emit(url, StepValidate, "Report validated", nil)

	log.WithFields(logrus.Fields{
		"brand":    info.Name,
		"overall":  overall,
		"duration": time.Since(start).String(),
	}).Info("analysis complete")
	return result, nil
}
