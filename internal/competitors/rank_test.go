package competitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/geo-visibility/internal/intel"
	"github.com/jonathan/geo-visibility/internal/types"
)

var acme = types.BrandInfo{Name: "Acme", Domain: "acme.test", Industry: "Analytics"}

func ptrF(f float64) *float64 { return &f }
func ptrI(i int) *int         { return &i }

// assertRankInvariant checks ranks are 1..N and exactly one entry is the brand.
func assertRankInvariant(t *testing.T, list []types.Competitor) {
	t.Helper()
	require.NotEmpty(t, list)
	brands := 0
	for i, c := range list {
		assert.Equal(t, i+1, c.Rank)
		if c.IsCurrentBrand {
			brands++
		}
	}
	assert.Equal(t, 1, brands)
}

func TestRank_InsertsBrandAndRenumbers(t *testing.T) {
	entries := []map[string]any{
		{"rank": 7.0, "name": "Globex", "domain": "globex.test", "score": 88.0, "marketOverlap": 70.0, "strengths": []any{"Brand", 3, "Scale"}},
		{"rank": 9.0, "name": "Initech", "domain": "initech.test", "score": "75", "marketOverlap": 60.0},
		{"rank": 2.0, "name": "Hooli", "domain": "hooli.test", "score": 150.0, "marketOverlap": -5.0},
	}

	list := Rank(entries, 2, acme, nil, nil)
	assertRankInvariant(t, list)
	require.Len(t, list, 4)

	assert.Equal(t, "Globex", list[0].Name)
	assert.Equal(t, []string{"Brand", "Scale"}, list[0].Strengths)
	assert.Equal(t, "Acme", list[1].Name)
	assert.True(t, list[1].IsCurrentBrand)
	assert.Equal(t, CurrentBrandStrengths, list[1].Strengths)
	assert.InDelta(t, 100, list[1].MarketOverlap, 0)
	assert.InDelta(t, 0, list[1].Score, 0)
	assert.InDelta(t, 75, list[2].Score, 0)
	assert.Equal(t, []string{}, list[2].Strengths)
	assert.InDelta(t, 100, list[3].Score, 0)
	assert.InDelta(t, 0, list[3].MarketOverlap, 0)
}

func TestRank_ClampsYourRank(t *testing.T) {
	entries := []map[string]any{{"name": "Globex"}, {"name": "Initech"}}

	list := Rank(entries, 99, acme, nil, nil)
	assertRankInvariant(t, list)
	assert.True(t, list[2].IsCurrentBrand)

	list = Rank(entries, -3, acme, nil, nil)
	assertRankInvariant(t, list)
	assert.True(t, list[0].IsCurrentBrand)
}

func TestRank_FiltersBeforeRenumbering(t *testing.T) {
	entries := []map[string]any{
		{"name": "Globex", "domain": "globex.test"},
		{"domain": "nameless.test"},
		{"name": "Unknown Competitor"},
		{"name": "acme", "domain": "other.test"},
		{"name": "Acme Cloud", "domain": "app.acme.test"},
		{"name": "Initech", "domain": "initech.test", "isCurrentBrand": true},
	}

	list := Rank(entries, 3, acme, nil, nil)
	assertRankInvariant(t, list)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Globex", "Initech", "Acme"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.False(t, list[1].IsCurrentBrand)
}

func TestRank_Enrichment(t *testing.T) {
	own := &intel.CompanyRecord{Name: "Acme", Funding: ptrF(1e6), Employees: ptrI(12), Founded: ptrI(2019), Description: "Acme record"}
	cands := []intel.CompetitorCandidate{
		{Name: "Globex Corp", Domain: "globex.test", Funding: ptrF(5e6), Employees: ptrI(50), Description: "From lookup"},
		{Name: "initech", Domain: "initech.io", Employees: ptrI(8)},
	}
	entries := []map[string]any{
		{"name": "Globex", "domain": "www.globex.test", "funding": 1.0, "description": "From model"},
		{"name": "Initech", "domain": "initech.test", "founded": 2001.0},
		{"name": "Hooli", "domain": "hooli.test", "employees": 300.0},
	}

	list := Rank(entries, 1, acme, own, cands)
	assertRankInvariant(t, list)

	brand := list[0]
	assert.InDelta(t, 1e6, *brand.Funding, 0)
	assert.Equal(t, 12, *brand.Employees)
	assert.Equal(t, 2019, *brand.Founded)
	assert.Equal(t, "Acme record", brand.Description)

	globex := list[1]
	assert.InDelta(t, 5e6, *globex.Funding, 0)
	assert.Equal(t, 50, *globex.Employees)
	assert.Equal(t, "From lookup", globex.Description)

	initech := list[2]
	assert.Equal(t, 8, *initech.Employees)
	assert.Equal(t, 2001, *initech.Founded)
	assert.Nil(t, initech.Funding)

	hooli := list[3]
	assert.Equal(t, 300, *hooli.Employees)
	assert.Equal(t, "hooli.test", hooli.Domain)
}

func TestFallback(t *testing.T) {
	cands := []intel.CompetitorCandidate{
		{Name: "Globex", Domain: "globex.test", Similarity: 0.826},
		{Name: "Acme", Domain: "acme.test", Similarity: 0.9},
		{Name: "Initech", Domain: "initech.test", Similarity: 0.5},
	}

	list := Fallback(acme, nil, cands)
	assertRankInvariant(t, list)
	require.Len(t, list, 3)
	assert.True(t, list[0].IsCurrentBrand)
	assert.InDelta(t, 83, list[1].Score, 0)
	assert.InDelta(t, 83, list[1].MarketOverlap, 0)
	assert.Equal(t, EnrichedStrengths, list[1].Strengths)
	assert.InDelta(t, 50, list[2].Score, 0)
}

func TestFallback_BrandOnly(t *testing.T) {
	list := Fallback(acme, nil, nil)
	assertRankInvariant(t, list)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.InDelta(t, 0, list[0].Score, 0)
}

func TestNumber(t *testing.T) {
	n, ok := number(" 42 ")
	assert.True(t, ok)
	assert.InDelta(t, 42, n, 0)
	_, ok = number("abc")
	assert.False(t, ok)
	_, ok = number(nil)
	assert.False(t, ok)
	_, ok = number(true)
	assert.False(t, ok)
}
