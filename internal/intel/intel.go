// Package intel looks up company and competitor records from external
// intelligence providers.
package intel

import (
	"context"
	"fmt"

	"github.com/jonathan/geo-visibility/internal/config"
)

// DefaultSimilarity is assigned when a provider omits a similarity score.
const DefaultSimilarity = 0.5

// CompanyRecord is a provider's profile of a company.
type CompanyRecord struct {
	Name         string
	Domain       string
	Description  string
	Funding      *float64
	Currency     string
	Employees    *int
	Founded      *int
	Headquarters string
	Categories   []string
}

// CompetitorCandidate is a company the provider considers a competitor.
type CompetitorCandidate struct {
	Name        string
	Domain      string
	Similarity  float64
	Description string
	Funding     *float64
	Employees   *int
}

// Source is a competitor intelligence provider.
type Source interface {
	// Available reports whether the source is configured. Callers skip
	// lookups entirely when it is false.
	Available() bool
	// SearchCompany returns the record for domain, or nil when unknown.
	SearchCompany(ctx context.Context, domain string) (*CompanyRecord, error)
	// GetCompetitors returns at most limit candidates for domain.
	GetCompetitors(ctx context.Context, domain string, limit int) ([]CompetitorCandidate, error)
}

// IndustryInsighter is implemented by sources that describe whole industries.
type IndustryInsighter interface {
	GetIndustryInsights(ctx context.Context, industry string) (map[string]any, error)
}

// APIError is a non-success response from a provider.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intel API error: %s returned status %d", e.Endpoint, e.Status)
}

// Disabled is the Source used when no provider is configured.
type Disabled struct{}

func (Disabled) Available() bool { return false }

func (Disabled) SearchCompany(context.Context, string) (*CompanyRecord, error) { return nil, nil }

func (Disabled) GetCompetitors(context.Context, string, int) ([]CompetitorCandidate, error) {
	return nil, nil
}

// New picks a source from cfg: Tracxn when its key is set, then web search,
// otherwise Disabled.
func New(ctx context.Context, cfg *config.Config) (Source, error) {
	switch {
	case cfg == nil:
		return Disabled{}, nil
	case cfg.TracxnAPIKey != "":
		return NewTracxn(cfg.TracxnAPIKey, cfg.TracxnBaseURL, nil), nil
	case cfg.SearchAPIKey != "" && cfg.SearchCX != "":
		return NewSearchSource(ctx, cfg.SearchAPIKey, cfg.SearchCX)
	default:
		return Disabled{}, nil
	}
}
