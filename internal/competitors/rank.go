package competitors

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/geo-visibility/internal/intel"
	"github.com/jonathan/geo-visibility/internal/types"
)

const (
	unknownCompetitor = "Unknown Competitor"
	unknownDomain     = "unknown.com"
)

// Strength labels for generated entries.
var (
	CurrentBrandStrengths = []string{"Current analysis target"}
	EnrichedStrengths     = []string{"Market presence", "Industry leader"}
)

// Rank turns model entries into the final list: unusable entries are dropped,
// the brand is inserted at yourRank (clamped to 1..len+1), ranks are
// renumbered by position and lookup data is merged in.
func Rank(entries []map[string]any, yourRank int, brand types.BrandInfo, own *intel.CompanyRecord, cands []intel.CompetitorCandidate) []types.Competitor {
	list := make([]types.Competitor, 0, len(entries)+1)
	for _, e := range entries {
		c, ok := coerce(e, brand)
		if !ok {
			continue
		}
		enrich(&c, cands)
		list = append(list, c)
	}

	if yourRank < 1 {
		yourRank = 1
	}
	if yourRank > len(list)+1 {
		yourRank = len(list) + 1
	}
	pos := yourRank - 1
	list = append(list, types.Competitor{})
	copy(list[pos+1:], list[pos:])
	list[pos] = BrandEntry(brand, own)

	renumber(list)
	return list
}

// Fallback builds the list from lookup data alone. The brand is always first.
func Fallback(brand types.BrandInfo, own *intel.CompanyRecord, cands []intel.CompetitorCandidate) []types.Competitor {
	list := []types.Competitor{BrandEntry(brand, own)}
	for _, cand := range cands {
		if cand.Name == "" || isBrand(cand.Name, cand.Domain, brand) {
			continue
		}
		pct := math.Round(cand.Similarity * 100)
		list = append(list, types.Competitor{
			Name:          cand.Name,
			Domain:        cand.Domain,
			Score:         clamp(pct),
			MarketOverlap: clamp(pct),
			Strengths:     append([]string(nil), EnrichedStrengths...),
			Funding:       cand.Funding,
			Employees:     cand.Employees,
			Description:   cand.Description,
		})
	}
	renumber(list)
	return list
}

// BrandEntry is the analyzed brand's own row. Its score is filled in once the
// overall score is known.
func BrandEntry(brand types.BrandInfo, own *intel.CompanyRecord) types.Competitor {
	c := types.Competitor{
		Name:           brand.Name,
		Domain:         brand.Domain,
		Score:          0,
		MarketOverlap:  100,
		Strengths:      append([]string(nil), CurrentBrandStrengths...),
		IsCurrentBrand: true,
	}
	if own != nil {
		c.Funding = own.Funding
		c.Employees = own.Employees
		c.Founded = own.Founded
		c.Description = own.Description
	}
	return c
}

func renumber(list []types.Competitor) {
	for i := range list {
		list[i].Rank = i + 1
	}
}

// coerce converts one model entry. Unnamed entries and entries describing the
// brand itself are rejected; model-supplied isCurrentBrand flags are ignored.
func coerce(e map[string]any, brand types.BrandInfo) (types.Competitor, bool) {
	name := stringField(e["name"])
	if name == "" || name == unknownCompetitor {
		return types.Competitor{}, false
	}
	domain := stringField(e["domain"])
	if domain == "" {
		domain = unknownDomain
	}
	if isBrand(name, domain, brand) {
		return types.Competitor{}, false
	}

	score, _ := number(e["score"])
	overlap, _ := number(e["marketOverlap"])
	c := types.Competitor{
		Name:          name,
		Domain:        domain,
		Score:         clamp(score),
		MarketOverlap: clamp(overlap),
		Strengths:     stringList(e["strengths"]),
	}
	if f, ok := number(e["funding"]); ok {
		c.Funding = &f
	}
	if n, ok := number(e["employees"]); ok {
		v := int(n)
		c.Employees = &v
	}
	if n, ok := number(e["founded"]); ok {
		v := int(n)
		c.Founded = &v
	}
	c.Description = stringField(e["description"])
	return c, true
}

// enrich overlays lookup data on a model entry matched by domain or name.
func enrich(c *types.Competitor, cands []intel.CompetitorCandidate) {
	for _, cand := range cands {
		domainMatch := cand.Domain != "" && (strings.EqualFold(cand.Domain, c.Domain) || intel.SameDomain(cand.Domain, c.Domain))
		if !domainMatch && !strings.EqualFold(cand.Name, c.Name) {
			continue
		}
		if cand.Funding != nil {
			c.Funding = cand.Funding
		}
		if cand.Employees != nil {
			c.Employees = cand.Employees
		}
		if cand.Description != "" {
			c.Description = cand.Description
		}
		return
	}
}

func isBrand(name, domain string, brand types.BrandInfo) bool {
	if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(brand.Name)) {
		return true
	}
	return domain != unknownDomain && intel.SameDomain(domain, brand.Domain)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// stringList keeps the string elements of a JSON array.
func stringList(v any) []string {
	out := []string{}
	items, _ := v.([]any)
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// number reads a JSON number, or a numeric string.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}
