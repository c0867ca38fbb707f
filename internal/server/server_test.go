package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/geo-visibility/internal/cache"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/db"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/pipeline"
	"github.com/jonathan/geo-visibility/internal/server/ratelimit"
	"github.com/jonathan/geo-visibility/internal/types"
)

// memoryDB implements UserStore, HistoryStore and cache.Store in memory.
type memoryDB struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	history  []types.DomainHistory
	analyses map[uuid.UUID][]byte

	failPassword bool
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		users:    make(map[uuid.UUID]*db.User),
		analyses: make(map[uuid.UUID][]byte),
	}
}

func (m *memoryDB) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = &db.User{ID: id, Name: name, Email: email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	return id, nil
}

func (m *memoryDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memoryDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *memoryDB) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPassword {
		return errors.New("disk full")
	}
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %s", userID)
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (m *memoryDB) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *memoryDB) SaveDomainHistory(_ context.Context, h *types.DomainHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	m.history = append(m.history, *h)
	return nil
}

func (m *memoryDB) SaveAnalysisResult(_ context.Context, historyID uuid.UUID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[historyID] = append([]byte(nil), data...)
	return nil
}

func (m *memoryDB) GetRecentAnalysis(_ context.Context, userID uuid.UUID, normalizedURL string, since time.Time) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.history) - 1; i >= 0; i-- {
		h := m.history[i]
		if h.UserID == userID && h.NormalizedURL == normalizedURL && !h.CreatedAt.Before(since) {
			return m.analyses[h.ID], nil
		}
	}
	return nil, nil
}

func (m *memoryDB) ListDomainHistory(_ context.Context, userID uuid.UUID, f types.HistoryFilter) ([]types.DomainHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.DomainHistory
	for _, h := range m.history {
		if h.UserID == userID && strings.Contains(h.Domain, f.Search) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memoryDB) GetDomainHistory(_ context.Context, id uuid.UUID) (*types.DomainHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.history {
		if h.ID == id {
			cp := h
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryDB) GetAnalysisByHistoryID(_ context.Context, id uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analyses[id], nil
}

// stubAnalyzer returns a fixed report and counts calls.
type stubAnalyzer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (a *stubAnalyzer) Analyze(_ context.Context, url string) (*types.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, url)
	if a.err != nil {
		return nil, a.err
	}
	return &types.AnalysisResult{
		URL:          url,
		BrandInfo:    types.BrandInfo{Name: "Example", Domain: "example.com"},
		OverallScore: 42,
	}, nil
}

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type testEnv struct {
	server   *Server
	store    *memoryDB
	analyzer *stubAnalyzer
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: testSecret, Issuer: "geo-visibility", ExpirationHours: 24}
}

func newTestEnv(t *testing.T, withAuth bool, rl *ratelimit.Config) *testEnv {
	t.Helper()
	store := newMemoryDB()
	analyzer := &stubAnalyzer{}
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}

	cfg := Config{
		Analysis:  cache.NewService(analyzer, store, 0, logging.Discard()),
		RateLimit: rl,
		Logger:    logging.Discard(),
	}
	if withAuth {
		cfg.Users = store
		cfg.History = store
		cfg.JWT = testJWTConfig()
		cfg.Password = &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	}

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return &testEnv{server: s, store: store, analyzer: analyzer}
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email string) (string, *types.User) {
	t.Helper()
	rec := e.do(http.MethodPost, "/auth/register",
		fmt.Sprintf(`{"name":"Ada","email":%q,"password":"correct-horse"}`, email), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp types.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestNew_RequiresAnalysis(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{
		Analysis: cache.NewService(&stubAnalyzer{}, nil, 0, nil),
		Users:    newMemoryDB(),
		History:  newMemoryDB(),
		JWT:      testJWTConfig(),
	})
	assert.Error(t, err, "password config is required with auth")
}

func TestHealthAndSchema(t *testing.T) {
	env := newTestEnv(t, false, nil)

	rec := env.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/schema", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	schema := decodeMap(t, rec)
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "overallScore")
	assert.Contains(t, props, "competitors")
}

func TestAnalyze_Anonymous(t *testing.T) {
	env := newTestEnv(t, true, nil)

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/analyze", `{"url":"example.com"}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decodeMap(t, rec)
		assert.Equal(t, "https://example.com", body["url"])
		assert.EqualValues(t, 42, body["overallScore"])
		assert.NotContains(t, body, "cached")
	}

	assert.Equal(t, 2, env.analyzer.callCount(), "anonymous requests are never cached")
	assert.Empty(t, env.store.history)
}

func TestAnalyze_BadRequest(t *testing.T) {
	env := newTestEnv(t, false, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing url", body: `{}`},
		{name: "blank url", body: `{"url":"   "}`},
		{name: "wrong type", body: `{"url":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/analyze", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"URL is required"}`, rec.Body.String())
		})
	}

	rec := env.do(http.MethodPost, "/analyze", fmt.Sprintf(`{"url":%q}`, strings.Repeat("a", 3000)), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.analyzer.callCount())
}

func TestAnalyze_Failure(t *testing.T) {
	env := newTestEnv(t, false, nil)

	env.analyzer.err = errors.New("fetch failed for https://down.example: connection refused")
	rec := env.do(http.MethodPost, "/analyze", `{"url":"down.example"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to analyze website","details":"fetch failed for https://down.example: connection refused"}`, rec.Body.String())

	env.analyzer.err = &pipeline.ValidationFailure{Err: errors.New("overallScore: must be less than or equal to 100")}
	rec = env.do(http.MethodPost, "/api/analyze", `{"url":"example.com"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Failed to analyze website", body["error"])
	assert.Equal(t, "overallScore: must be less than or equal to 100", body["details"])
}

func TestAnalyze_AuthenticatedReusesResult(t *testing.T) {
	env := newTestEnv(t, true, nil)
	token, user := env.register(t, "ada@example.com")

	first := env.do(http.MethodPost, "/analyze", `{"url":"https://www.Example.com/"}`, token)
	require.Equal(t, http.StatusOK, first.Code)
	second := env.do(http.MethodPost, "/api/analyze", `{"url":"example.com"}`, token)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, 1, env.analyzer.callCount())
	assert.Equal(t, first.Body.String(), second.Body.String())

	require.Len(t, env.store.history, 1)
	h := env.store.history[0]
	assert.Equal(t, user.ID, h.UserID)
	assert.Equal(t, "example.com", h.NormalizedURL)
	assert.Equal(t, "example.com", h.Domain)
	assert.Equal(t, 42, h.AIVisibilityScore)
	assert.Equal(t, types.HistoryStatusCompleted, h.Status)
}

func TestAnalyze_InvalidTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(http.MethodPost, "/analyze", `{"url":"example.com"}`, "not-a-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.store.history)
}

func TestReanalyze(t *testing.T) {
	env := newTestEnv(t, true, nil)
	token, _ := env.register(t, "ada@example.com")

	rec := env.do(http.MethodPost, "/history/reanalyze", `{"url":"example.com"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/history/reanalyze", `{"url":"example.com"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decodeMap(t, rec)
	assert.Equal(t, false, fresh["cached"])
	assert.NotContains(t, fresh, "message")
	assert.EqualValues(t, 42, fresh["overallScore"])

	rec = env.do(http.MethodPost, "/history/reanalyze", `{"url":"www.example.com"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	reused := decodeMap(t, rec)
	assert.Equal(t, true, reused["cached"])
	assert.Equal(t, reusedMessage, reused["message"])
	assert.Equal(t, fresh["url"], reused["url"])

	assert.Equal(t, 1, env.analyzer.callCount())

	env.analyzer.err = errors.New("boom")
	rec = env.do(http.MethodPost, "/history/reanalyze", `{"url":"other.example"}`, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to re-analyze website","details":"boom"}`, rec.Body.String())
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, true, nil)
	token, _ := env.register(t, "ada@example.com")
	otherToken, _ := env.register(t, "bob@example.com")

	for _, u := range []string{"example.com", "acme.io"} {
		rec := env.do(http.MethodPost, "/analyze", fmt.Sprintf(`{"url":%q}`, u), token)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(http.MethodGet, "/history", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/history?limit=abc&offset=-3", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Domains []types.DomainHistory `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Domains, 2)

	rec = env.do(http.MethodGet, "/history", "", otherToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"domains":[]}`, rec.Body.String())

	id := env.store.history[0].ID
	rec = env.do(http.MethodGet, "/history/"+id.String(), "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(env.store.analyses[id]), rec.Body.String())

	rec = env.do(http.MethodGet, "/history/"+id.String(), "", otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/history/"+uuid.NewString(), "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Analysis not found"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/history/not-a-uuid", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryFilter(t *testing.T) {
	tests := []struct {
		query string
		want  types.HistoryFilter
	}{
		{query: "", want: types.HistoryFilter{Limit: 20}},
		{query: "limit=5&offset=10", want: types.HistoryFilter{Limit: 5, Offset: 10}},
		{query: "limit=500", want: types.HistoryFilter{Limit: 100}},
		{query: "limit=0&offset=x", want: types.HistoryFilter{Limit: 20}},
		{query: "search=+acme+", want: types.HistoryFilter{Search: "acme", Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/history?"+tt.query, nil)
			assert.Equal(t, tt.want, historyFilter(req))
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	env := newTestEnv(t, false, nil)
	assert.False(t, env.server.AuthEnabled())

	for _, path := range []string{"/history", "/auth/me"} {
		rec := env.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := env.do(http.MethodPost, "/auth/login", `{}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/analyze", `{"url":"example.com"}`, "some-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, false, &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(1),
	})

	rec := env.do(http.MethodPost, "/analyze", `{"url":"example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = env.do(http.MethodPost, "/analyze", `{"url":"example.com"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeMap(t, rec)["error"])
	assert.Equal(t, 1, env.analyzer.callCount())

	rec = env.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false, nil)

	tests := []struct {
		name       string
		headers    string
		wantOrigin string
	}{
		// browsers send the list lowercased and sorted
		{name: "allowed headers", headers: "authorization,content-type", wantOrigin: "*"},
		{name: "header not allowed", headers: "content-type,x-api-key", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
			req.Header.Set("Origin", "https://app.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", tt.headers)
			rec := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(rec, req)

			assert.Less(t, rec.Code, 300)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
	assert.Equal(t, 0, env.analyzer.callCount())
}

func TestMergeFields(t *testing.T) {
	got, err := mergeFields([]byte(`{"z":{"nested":[1, 2]},"a":1}`), map[string]any{"cached": true, "message": "x"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), `{"z":{"nested":[1, 2]},"a":1`), string(got))
	assert.JSONEq(t, `{"z":{"nested":[1,2]},"a":1,"cached":true,"message":"x"}`, string(got))

	got, err = mergeFields([]byte(` {} `), map[string]any{"cached": false})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cached":false}`, string(got))

	_, err = mergeFields([]byte(`not json`), map[string]any{"cached": true})
	assert.Error(t, err)

	_, err = mergeFields([]byte(`[1,2]`), map[string]any{"cached": true})
	assert.Error(t, err)
}
