package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jonathan/geo-visibility/internal/types"
)

// MemoryStore is a process-local Store. Entries expire after ttl.
type MemoryStore struct {
	mu    sync.Mutex
	items *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates a MemoryStore. Expired entries are purged every cleanup.
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultWindow
	}
	return &MemoryStore{items: gocache.New(ttl, cleanup), ttl: ttl}
}

func latestKey(userID uuid.UUID, normalizedURL string) string {
	return "latest:" + userID.String() + ":" + normalizedURL
}

func historyKey(id uuid.UUID) string  { return "history:" + id.String() }
func analysisKey(id uuid.UUID) string { return "analysis:" + id.String() }

// GetRecentAnalysis implements Store.
func (m *MemoryStore) GetRecentAnalysis(_ context.Context, userID uuid.UUID, normalizedURL string, since time.Time) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.items.Get(latestKey(userID, normalizedURL))
	if !ok {
		return nil, nil
	}
	h, ok := m.items.Get(historyKey(id.(uuid.UUID)))
	if !ok || h.(types.DomainHistory).CreatedAt.Before(since) {
		return nil, nil
	}
	data, ok := m.items.Get(analysisKey(id.(uuid.UUID)))
	if !ok {
		return nil, nil
	}
	return data.([]byte), nil
}

// SaveDomainHistory implements Store.
func (m *MemoryStore) SaveDomainHistory(_ context.Context, h *types.DomainHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Set(historyKey(h.ID), *h, gocache.DefaultExpiration)
	m.items.Set(latestKey(h.UserID, h.NormalizedURL), h.ID, gocache.DefaultExpiration)
	return nil
}

// SaveAnalysisResult implements Store.
func (m *MemoryStore) SaveAnalysisResult(_ context.Context, historyID uuid.UUID, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Set(analysisKey(historyID), stored, gocache.DefaultExpiration)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryStore) Len() int {
	return m.items.ItemCount()
}
