package intel

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// searchResults is how many results one competitor query asks for.
const searchResults = 10

// aggregators are review and listing sites that show up in "alternatives"
// searches but are never competitors themselves.
var aggregators = map[string]bool{
	"g2.com": true, "capterra.com": true, "trustradius.com": true, "alternativeto.net": true,
	"getapp.com": true, "softwareadvice.com": true, "producthunt.com": true, "saasworthy.com": true,
	"gartner.com": true, "crunchbase.com": true, "linkedin.com": true, "wikipedia.org": true,
	"reddit.com": true, "quora.com": true, "youtube.com": true, "medium.com": true,
	"forbes.com": true, "techradar.com": true, "zapier.com": true, "slashdot.org": true,
}

// SearchSource derives competitor candidates from Google Programmable Search.
// It needs no paid intelligence subscription and returns no funding data.
type SearchSource struct {
	svc *customsearch.Service
	cx  string
}

// NewSearchSource creates a SearchSource. Extra options are passed to the
// customsearch client.
func NewSearchSource(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*SearchSource, error) {
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &SearchSource{svc: svc, cx: cx}, nil
}

// Available reports whether a search engine id is configured.
func (s *SearchSource) Available() bool {
	return s.svc != nil && s.cx != ""
}

// SearchCompany describes domain using its top indexed page.
func (s *SearchSource) SearchCompany(ctx context.Context, domain string) (*CompanyRecord, error) {
	resp, err := s.svc.Cse.List().Cx(s.cx).Q("site:" + domain).Num(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	item := resp.Items[0]
	return &CompanyRecord{
		Name:        titleName(item.Title),
		Domain:      RegistrableDomain(domain),
		Description: strings.TrimSpace(item.Snippet),
	}, nil
}

// GetCompetitors searches for alternatives to domain and keeps one candidate
// per distinct registrable domain.
func (s *SearchSource) GetCompetitors(ctx context.Context, domain string, limit int) ([]CompetitorCandidate, error) {
	query := fmt.Sprintf("%s competitors alternatives", domain)
	resp, err := s.svc.Cse.List().Cx(s.cx).Q(query).Num(searchResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	own := RegistrableDomain(domain)
	seen := map[string]bool{own: true}
	var out []CompetitorCandidate
	for _, item := range resp.Items {
		u, err := url.Parse(item.Link)
		if err != nil || u.Hostname() == "" {
			continue
		}
		d := RegistrableDomain(u.Hostname())
		if d == "" || seen[d] || aggregators[d] {
			continue
		}
		seen[d] = true

		out = append(out, CompetitorCandidate{
			Name:        titleName(item.Title),
			Domain:      d,
			Similarity:  DefaultSimilarity,
			Description: strings.TrimSpace(item.Snippet),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// titleName takes the brand part of a page title such as "Acme | Analytics".
func titleName(title string) string {
	for _, sep := range []string{" | ", " - ", " – ", ": "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	return strings.TrimSpace(title)
}
