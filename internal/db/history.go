package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/geo-visibility/internal/types"
)

const historyColumns = `id, user_id, domain, normalized_url, ai_visibility_score, status, analyzed_at`

func scanHistory(row pgx.Row) (*types.DomainHistory, error) {
	var h types.DomainHistory
	err := row.Scan(&h.ID, &h.UserID, &h.Domain, &h.NormalizedURL, &h.AIVisibilityScore, &h.Status, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveDomainHistory inserts h and fills its ID and CreatedAt. A zero
// CreatedAt uses the database clock.
func (db *DB) SaveDomainHistory(ctx context.Context, h *types.DomainHistory) error {
	if h.Status == "" {
		h.Status = types.HistoryStatusCompleted
	}
	var analyzedAt any
	if !h.CreatedAt.IsZero() {
		analyzedAt = h.CreatedAt
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO domain_history (user_id, domain, normalized_url, ai_visibility_score, status, analyzed_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		 RETURNING id, analyzed_at`,
		h.UserID, h.Domain, h.NormalizedURL, h.AIVisibilityScore, h.Status, analyzedAt,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save domain history: %w", err)
	}
	return nil
}

// SaveAnalysisResult stores the report JSON for a history entry.
func (db *DB) SaveAnalysisResult(ctx context.Context, historyID uuid.UUID, data []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO analysis_results (domain_history_id, analysis_data) VALUES ($1, $2)
		 ON CONFLICT (domain_history_id) DO UPDATE SET analysis_data = $2, created_at = NOW()`,
		historyID, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}
	return nil
}

// GetRecentAnalysis returns the report of the newest history entry for the
// user and URL analyzed at or after since. No entry is nil, nil.
func (db *DB) GetRecentAnalysis(ctx context.Context, userID uuid.UUID, normalizedURL string, since time.Time) ([]byte, error) {
	var data string
	err := db.pool.QueryRow(ctx,
		`SELECT r.analysis_data::text
		 FROM domain_history h
		 JOIN analysis_results r ON r.domain_history_id = h.id
		 WHERE h.user_id = $1 AND h.normalized_url = $2 AND h.analyzed_at >= $3
		 ORDER BY h.analyzed_at DESC
		 LIMIT 1`,
		userID, normalizedURL, since,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recent analysis: %w", err)
	}
	return []byte(data), nil
}

// ListDomainHistory returns a user's history, newest first. Search matches
// the domain case-insensitively.
func (db *DB) ListDomainHistory(ctx context.Context, userID uuid.UUID, filter types.HistoryFilter) ([]types.DomainHistory, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+historyColumns+`
		 FROM domain_history
		 WHERE user_id = $1 AND ($2 = '' OR domain ILIKE '%' || $2 || '%')
		 ORDER BY analyzed_at DESC
		 LIMIT $3 OFFSET $4`,
		userID, filter.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list domain history: %w", err)
	}
	defer rows.Close()

	out := []types.DomainHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain history: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate domain history: %w", err)
	}
	return out, nil
}

// GetDomainHistory retrieves one history entry. A missing entry is nil, nil.
func (db *DB) GetDomainHistory(ctx context.Context, id uuid.UUID) (*types.DomainHistory, error) {
	h, err := scanHistory(db.pool.QueryRow(ctx,
		`SELECT `+historyColumns+` FROM domain_history WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get domain history: %w", err)
	}
	return h, nil
}

// GetAnalysisByHistoryID returns the stored report JSON. A missing report is nil, nil.
func (db *DB) GetAnalysisByHistoryID(ctx context.Context, historyID uuid.UUID) ([]byte, error) {
	var data string
	err := db.pool.QueryRow(ctx,
		`SELECT analysis_data::text FROM analysis_results WHERE domain_history_id = $1`, historyID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return []byte(data), nil
}
