package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTracxnBaseURL is the public Tracxn API root.
const DefaultTracxnBaseURL = "https://api.tracxn.com/1.0"

// Tracxn is a bearer-authenticated client for the Tracxn REST API.
type Tracxn struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTracxn creates a Tracxn client. Empty baseURL and nil client use defaults.
func NewTracxn(apiKey, baseURL string, httpClient *http.Client) *Tracxn {
	if baseURL == "" {
		baseURL = DefaultTracxnBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Tracxn{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Available reports whether an API key is configured.
func (t *Tracxn) Available() bool {
	return t.apiKey != ""
}

type tracxnFunding struct {
	TotalFunding *float64 `json:"total_funding"`
	Currency     string   `json:"currency"`
}

type tracxnCompany struct {
	Name           string         `json:"name"`
	Domain         string         `json:"domain"`
	Description    string         `json:"description"`
	Funding        *tracxnFunding `json:"funding"`
	EmployeesCount *int           `json:"employees_count"`
	FoundedYear    *int           `json:"founded_year"`
	Headquarters   string         `json:"headquarters"`
	Categories     []string       `json:"categories"`
}

type tracxnCompetitor struct {
	Name            string         `json:"name"`
	Domain          string         `json:"domain"`
	SimilarityScore *float64       `json:"similarity_score"`
	Description     string         `json:"description"`
	Funding         *tracxnFunding `json:"funding"`
	EmployeesCount  *int           `json:"employees_count"`
}

// SearchCompany returns the first company Tracxn lists for domain.
func (t *Tracxn) SearchCompany(ctx context.Context, domain string) (*CompanyRecord, error) {
	var body struct {
		Companies []tracxnCompany `json:"companies"`
	}
	endpoint := "/search/companies?domain=" + url.QueryEscape(domain)
	if err := t.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}
	if len(body.Companies) == 0 {
		return nil, nil
	}

	c := body.Companies[0]
	rec := &CompanyRecord{
		Name:         c.Name,
		Domain:       c.Domain,
		Description:  c.Description,
		Employees:    c.EmployeesCount,
		Founded:      c.FoundedYear,
		Headquarters: c.Headquarters,
		Categories:   c.Categories,
	}
	if c.Funding != nil {
		rec.Funding = c.Funding.TotalFunding
		rec.Currency = c.Funding.Currency
		if rec.Currency == "" {
			rec.Currency = "USD"
		}
	}
	return rec, nil
}

// GetCompetitors lists up to limit competitors of domain.
func (t *Tracxn) GetCompetitors(ctx context.Context, domain string, limit int) ([]CompetitorCandidate, error) {
	var body struct {
		Competitors []tracxnCompetitor `json:"competitors"`
	}
	endpoint := "/companies/competitors?domain=" + url.QueryEscape(domain) + "&limit=" + strconv.Itoa(limit)
	if err := t.get(ctx, endpoint, &body); err != nil {
		return nil, err
	}

	out := make([]CompetitorCandidate, 0, len(body.Competitors))
	for _, c := range body.Competitors {
		similarity := DefaultSimilarity
		if c.SimilarityScore != nil && *c.SimilarityScore != 0 {
			similarity = *c.SimilarityScore
		}
		cand := CompetitorCandidate{
			Name:        c.Name,
			Domain:      c.Domain,
			Similarity:  similarity,
			Description: c.Description,
			Employees:   c.EmployeesCount,
		}
		if c.Funding != nil {
			cand.Funding = c.Funding.TotalFunding
		}
		out = append(out, cand)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetIndustryInsights returns Tracxn's free-form insights document for industry.
func (t *Tracxn) GetIndustryInsights(ctx context.Context, industry string) (map[string]any, error) {
	var body map[string]any
	if err := t.get(ctx, "/industries/"+url.PathEscape(industry)+"/insights", &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (t *Tracxn) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create tracxn request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracxn request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		path := endpoint
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return &APIError{Status: resp.StatusCode, Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tracxn response: %w", err)
	}
	return nil
}
