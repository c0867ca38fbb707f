package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/jonathan/geo-visibility/internal/db"
	"github.com/jonathan/geo-visibility/internal/pipeline"
	"github.com/jonathan/geo-visibility/internal/schemas"
	"github.com/jonathan/geo-visibility/internal/server/middleware"
	"github.com/jonathan/geo-visibility/internal/types"
)

// HistoryStore reads a user's stored analyses. *db.DB implements it.
type HistoryStore interface {
	ListDomainHistory(ctx context.Context, userID uuid.UUID, filter types.HistoryFilter) ([]types.DomainHistory, error)
	GetDomainHistory(ctx context.Context, id uuid.UUID) (*types.DomainHistory, error)
	GetAnalysisByHistoryID(ctx context.Context, historyID uuid.UUID) ([]byte, error)
}

const reusedMessage = "Using recent analysis (less than 24 hours old)"

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSchema serves the AnalysisResult JSON Schema.
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := schemas.AnalysisSchema()
	if err != nil {
		s.logger.WithError(err).Error("failed to build analysis schema")
		errorResponse(w, http.StatusInternalServerError, "Failed to build schema")
		return
	}
	rawJSONResponse(w, http.StatusOK, []byte(schema))
}

// readURL decodes a {url} body. ok is false after a 400 has been written.
func readURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		errorResponse(w, http.StatusBadRequest, "URL is required")
		return "", false
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err).Error())
		return "", false
	}
	return req.URL, true
}

// analysisFailure writes the 500 body used by the analyze endpoints.
func (s *Server) analysisFailure(w http.ResponseWriter, message string, err error) {
	details := err.Error()
	var vf *pipeline.ValidationFailure
	if errors.As(err, &vf) {
		details = vf.Details()
	}
	s.logger.WithError(err).Error("analysis failed")
	jsonResponse(w, http.StatusInternalServerError, map[string]string{
		"error":   message,
		"details": details,
	})
}

// handleAnalyze analyzes a URL. Authenticated callers get the stored result
// when the same URL was analyzed within the reuse window.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	url, ok := readURL(w, r)
	if !ok {
		return
	}

	out, err := s.analysis.Analyze(r.Context(), middleware.UserIDOrNil(r), url)
	if err != nil {
		s.analysisFailure(w, "Failed to analyze website", err)
		return
	}
	rawJSONResponse(w, http.StatusOK, out.Body)
}

// handleReanalyze is handleAnalyze for signed-in users with a cached flag
// merged into the report.
func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	url, ok := readURL(w, r)
	if !ok {
		return
	}

	out, err := s.analysis.Analyze(r.Context(), userID, url)
	if err != nil {
		s.analysisFailure(w, "Failed to re-analyze website", err)
		return
	}

	extra := map[string]any{"cached": out.Cached}
	if out.Cached {
		extra["message"] = reusedMessage
	}
	body, err := mergeFields(out.Body, extra)
	if err != nil {
		s.analysisFailure(w, "Failed to re-analyze website", err)
		return
	}
	rawJSONResponse(w, http.StatusOK, body)
}

// mergeFields sets top-level fields on a JSON object without re-encoding
// its existing members.
func mergeFields(object []byte, fields map[string]any) ([]byte, error) {
	if !gjson.ValidBytes(object) || !gjson.ParseBytes(object).IsObject() {
		return nil, fmt.Errorf("stored analysis is not a JSON object")
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := bytes.TrimSpace(object)
	for _, k := range keys {
		var err error
		out, err = sjson.SetBytes(out, k, fields[k])
		if err != nil {
			return nil, fmt.Errorf("failed to set field %s: %w", k, err)
		}
	}
	return out, nil
}

// historyFilter reads limit, offset and search. Malformed or out-of-range
// numbers fall back to defaults and limit is capped.
func historyFilter(r *http.Request) types.HistoryFilter {
	q := r.URL.Query()
	f := types.HistoryFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  db.DefaultHistoryLimit,
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = min(n, db.MaxHistoryLimit)
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}
	return f
}

// handleListHistory lists the caller's analyses, newest first.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	domains, err := s.history.ListDomainHistory(r.Context(), userID, historyFilter(r))
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to list domain history")
		errorResponse(w, http.StatusInternalServerError, "Failed to fetch domain history")
		return
	}
	if domains == nil {
		domains = []types.DomainHistory{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"domains": domains})
}

// storedAnalysis returns the report for a history entry owned by userID.
func (s *Server) storedAnalysis(ctx context.Context, userID, historyID uuid.UUID) ([]byte, error) {
	entry, err := s.history.GetDomainHistory(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ErrNotFound{Kind: "history entry", ID: historyID}
	}
	if entry.UserID != userID {
		return nil, &ErrForbidden{Kind: "history entry", ID: historyID}
	}
	body, err := s.history.GetAnalysisByHistoryID(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, &ErrNotFound{Kind: "analysis", ID: historyID}
	}
	return body, nil
}

// handleGetHistory returns the stored report of one history entry.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	historyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}

	body, err := s.storedAnalysis(r.Context(), userID, historyID)
	if err != nil {
		switch status := HTTPStatus(err); status {
		case http.StatusNotFound:
			errorResponse(w, status, "Analysis not found")
		case http.StatusForbidden:
			errorResponse(w, status, "Access denied")
		default:
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":    userID,
				"history_id": historyID,
			}).Error("failed to fetch analysis")
			errorResponse(w, status, "Failed to fetch analysis")
		}
		return
	}
	rawJSONResponse(w, http.StatusOK, body)
}
