// Package cache reuses recent analyses per user and normalized URL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/types"
)

// DefaultWindow is how long a stored analysis is reused.
const DefaultWindow = 24 * time.Hour

// Store persists analyses and finds recent ones.
type Store interface {
	// GetRecentAnalysis returns the stored report JSON of the newest history
	// entry for the key created at or after since, or nil when there is none.
	GetRecentAnalysis(ctx context.Context, userID uuid.UUID, normalizedURL string, since time.Time) ([]byte, error)
	// SaveDomainHistory stores h, assigning its ID and CreatedAt when unset.
	SaveDomainHistory(ctx context.Context, h *types.DomainHistory) error
	// SaveAnalysisResult stores the report JSON for a history entry.
	SaveAnalysisResult(ctx context.Context, historyID uuid.UUID, data []byte) error
}

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*types.AnalysisResult, error)
}

// Outcome is the response of Service.Analyze.
type Outcome struct {
	// Body is the report JSON. A cache hit returns the stored bytes unchanged.
	Body          json.RawMessage
	Cached        bool
	NormalizedURL string
	HistoryID     uuid.UUID
}

// Service answers analysis requests from the store when possible.
type Service struct {
	analyzer Analyzer
	store    Store
	window   time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a Service. A nil store disables caching entirely and a
// non-positive window uses DefaultWindow.
func NewService(analyzer Analyzer, store Store, window time.Duration, logger logrus.FieldLogger) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		analyzer: analyzer,
		store:    store,
		window:   window,
		logger:   logging.OrDiscard(logger),
		now:      time.Now,
	}
}

// Window returns the reuse window.
func (s *Service) Window() time.Duration {
	return s.window
}

// Analyze returns a fresh stored analysis for an authenticated user, or runs
// the pipeline and stores the result. Anonymous requests (uuid.Nil) always
// run the pipeline and are never stored.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, rawURL string) (*Outcome, error) {
	url := EnsureScheme(rawURL)
	normalized := NormalizeURL(rawURL)
	log := s.logger.WithFields(logrus.Fields{"url": normalized, "user_id": userID})
	cacheable := userID != uuid.Nil && s.store != nil

	if cacheable {
		body, err := s.store.GetRecentAnalysis(ctx, userID, normalized, s.now().Add(-s.window))
		if err != nil {
			log.WithError(err).Warn("cache lookup failed, running analysis")
		} else if body != nil {
			log.Info("returning cached analysis")
			return &Outcome{Body: body, Cached: true, NormalizedURL: normalized}, nil
		}
	}

	result, err := s.analyzer.Analyze(ctx, url)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	out := &Outcome{Body: body, NormalizedURL: normalized}
	if !cacheable {
		return out, nil
	}

	domain := result.BrandInfo.Domain
	if domain == "" {
		domain = normalized
	}
	h := &types.DomainHistory{
		UserID:            userID,
		Domain:            domain,
		NormalizedURL:     normalized,
		AIVisibilityScore: result.OverallScore,
		Status:            types.HistoryStatusCompleted,
		CreatedAt:         s.now(),
	}
	if err := s.store.SaveDomainHistory(ctx, h); err != nil {
		log.WithError(err).Error("failed to save domain history")
		return out, nil
	}
	if err := s.store.SaveAnalysisResult(ctx, h.ID, body); err != nil {
		log.WithError(err).Error("failed to save analysis result")
		return out, nil
	}
	out.HistoryID = h.ID
	log.WithField("history_id", h.ID).Debug("analysis saved")
	return out, nil
}
