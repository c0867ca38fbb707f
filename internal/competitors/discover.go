// Package competitors finds and ranks the analyzed brand's competitors.
package competitors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/intel"
	"github.com/jonathan/geo-visibility/internal/llm"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/prompts"
	"github.com/jonathan/geo-visibility/internal/types"
)

const (
	// CandidateLimit caps how many competitors are requested from the lookup.
	CandidateLimit = 5
	// Temperature for the ranking call.
	Temperature = 0.8

	maxInsightChars = 500
)

// Discoverer merges lookup candidates with a generative ranking.
type Discoverer struct {
	client llm.Client
	source intel.Source
	logger logrus.FieldLogger
}

// NewDiscoverer creates a Discoverer. source may be nil.
func NewDiscoverer(client llm.Client, source intel.Source, logger logrus.FieldLogger) *Discoverer {
	if source == nil {
		source = intel.Disabled{}
	}
	return &Discoverer{client: client, source: source, logger: logging.OrDiscard(logger)}
}

type lookup struct {
	own      *intel.CompanyRecord
	cands    []intel.CompetitorCandidate
	insights string
}

type rankResponse struct {
	Competitors []any `json:"competitors"`
	YourRank    any   `json:"yourRank"`
}

// Discover returns the ranked competitor list. It never fails and the result
// always contains the brand exactly once.
func (d *Discoverer) Discover(ctx context.Context, brand types.BrandInfo, facts types.PageFacts) []types.Competitor {
	log := d.logger.WithField("domain", brand.Domain)
	lk := d.lookup(ctx, brand, log)

	if d.client == nil {
		return Fallback(brand, lk.own, lk.cands)
	}

	prompt, err := d.prompt(brand, facts, lk)
	if err != nil {
		log.WithError(err).Error("competitor prompt unavailable")
		return Fallback(brand, lk.own, lk.cands)
	}

	resp, err := d.client.GenerateJSON(ctx, prompt, llm.Options{Tier: llm.TierStandard, Temperature: Temperature})
	if err != nil {
		log.WithError(err).Warn("competitor ranking failed, using lookup data")
		return Fallback(brand, lk.own, lk.cands)
	}

	var parsed rankResponse
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil || parsed.Competitors == nil {
		if err == nil {
			err = fmt.Errorf("missing competitors array")
		}
		log.WithError(err).Warn("competitor response malformed, using lookup data")
		return Fallback(brand, lk.own, lk.cands)
	}

	yourRank := 1
	if n, ok := number(parsed.YourRank); ok && int(n) != 0 {
		yourRank = int(n)
	}

	entries := make([]map[string]any, 0, len(parsed.Competitors))
	for _, item := range parsed.Competitors {
		if m, ok := item.(map[string]any); ok {
			entries = append(entries, m)
		}
	}

	ranked := Rank(entries, yourRank, brand, lk.own, lk.cands)
	if len(ranked) == 1 && len(lk.cands) > 0 {
		log.Warn("model returned no usable competitors, using lookup data")
		return Fallback(brand, lk.own, lk.cands)
	}
	log.WithField("count", len(ranked)-1).Debug("competitors ranked")
	return ranked
}

func (d *Discoverer) lookup(ctx context.Context, brand types.BrandInfo, log logrus.FieldLogger) lookup {
	var lk lookup
	if !d.source.Available() {
		return lk
	}

	cands, err := d.source.GetCompetitors(ctx, brand.Domain, CandidateLimit)
	if err != nil {
		log.WithError(err).Warn("competitor lookup failed")
	}
	lk.cands = cands

	own, err := d.source.SearchCompany(ctx, brand.Domain)
	if err != nil {
		log.WithError(err).Warn("company lookup failed")
	}
	lk.own = own

	if insighter, ok := d.source.(intel.IndustryInsighter); ok && brand.Industry != "" && brand.Industry != "Unknown" {
		insights, err := insighter.GetIndustryInsights(ctx, brand.Industry)
		if err != nil {
			log.WithError(err).Debug("industry insights unavailable")
		} else if len(insights) > 0 {
			if raw, err := json.Marshal(insights); err == nil {
				lk.insights = truncate(string(raw), maxInsightChars)
			}
		}
	}

	log.WithField("candidates", len(lk.cands)).Debug("lookup complete")
	return lk
}

func (d *Discoverer) prompt(brand types.BrandInfo, facts types.PageFacts, lk lookup) (string, error) {
	known := ""
	taskKey := "rank-competitors-discover-task"
	if len(lk.cands) > 0 {
		names := make([]string, len(lk.cands))
		for i, c := range lk.cands {
			names[i] = fmt.Sprintf("%s (%s)", c.Name, c.Domain)
		}
		known = "- Known competitors: " + strings.Join(names, ", ")
		taskKey = "rank-competitors-known-task"
	}

	task, err := prompts.Get("analysis.json", taskKey)
	if err != nil {
		return "", err
	}

	industryContext := ""
	if lk.insights != "" {
		industryContext = "- Industry insights: " + lk.insights
	}

	description := brand.Description
	if description == "" {
		description = facts.Description
	}

	return prompts.Render("analysis.json", "rank-competitors", map[string]string{
		"BrandName":        brand.Name,
		"Domain":           brand.Domain,
		"Industry":         brand.Industry,
		"Description":      description,
		"KnownCompetitors": known,
		"IndustryContext":  industryContext,
		"Task":             task,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
