// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/geo-visibility/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// bar renders a 0-100 score as a 20-cell gauge.
func bar(score int) string {
	score = max(0, min(100, score))
	filled := score / 5
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// PrintSummary prints every section of a finished report.
func (p *Printer) PrintSummary(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	p.PrintBrand(result)
	p.PrintScores(result)
	p.PrintCompetitors(result.Competitors)
	p.PrintGaps(result.Gaps)
	p.PrintRecommendations(result.Recommendations)
}

// PrintBrand outputs the identified brand and the analyzed URL.
func (p *Printer) PrintBrand(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand:    %s\n", result.BrandInfo.Name))
	sb.WriteString(fmt.Sprintf("Domain:   %s\n", result.BrandInfo.Domain))
	if result.BrandInfo.Industry != "" {
		sb.WriteString(fmt.Sprintf("Industry: %s\n", result.BrandInfo.Industry))
	}
	sb.WriteString(fmt.Sprintf("URL:      %s", result.URL))

	p.printBox("BRAND", sb.String())
}

// PrintScores outputs the overall, per-platform and per-dimension scores.
func (p *Printer) PrintScores(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall: %d/100\n", result.OverallScore))
	if result.GEOMetrics != nil {
		m := result.GEOMetrics
		sb.WriteString(fmt.Sprintf("GEO:     %.2f (AIC %.1f, CES %.1f, MTS %.1f)\n", m.Overall, m.AIC, m.CES, m.MTS))
	}

	if len(result.PlatformScores) > 0 {
		sb.WriteString("\nPlatforms:\n")
		for _, ps := range result.PlatformScores {
			sb.WriteString(fmt.Sprintf("  %-12s %s %3d\n", truncate(ps.Platform, 12), bar(ps.Score), ps.Score))
		}
	}
	if len(result.DimensionScores) > 0 {
		sb.WriteString("\nDimensions:\n")
		for _, ds := range result.DimensionScores {
			sb.WriteString(fmt.Sprintf("  %-15s %3d\n", ds.Dimension, ds.Score))
		}
	}
	if result.LiveProbe != nil && result.LiveProbe.Configured {
		sb.WriteString(fmt.Sprintf("\nLive probe (%s): %s\n", result.LiveProbe.Platform, result.LiveProbe.Summary))
	}

	p.printBox("VISIBILITY SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompetitors outputs the top of the ranked competitor list.
func (p *Printer) PrintCompetitors(competitors []types.Competitor) {
	if len(competitors) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(competitors), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := competitors[i]
		marker := " "
		if c.IsCurrentBrand {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s#%d  %-28s %5.1f\n", marker, c.Rank, truncate(c.Name, 28), c.Score))
	}
	if len(competitors) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(competitors)-maxItemsToShow))
	}

	p.printBox("COMPETITOR RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGaps outputs the content elements that were not found on the page.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintGaps(gaps []types.Gap) {
	var missing []types.Gap
	for _, g := range gaps {
		if !g.Found {
			missing = append(missing, g)
		}
	}
	if len(missing) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CONTENT GAPS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Missing %d of %d elements:\n\n", len(missing), len(gaps)))
	for _, g := range missing {
		sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", g.Element, g.Impact))
	}

	p.printBox("CONTENT GAPS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the highest priority recommendations.
func (p *Printer) PrintRecommendations(recs []types.Recommendation) {
	if len(recs) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := recs[i]
		sb.WriteString(fmt.Sprintf("[%s] %s\n", r.Priority, r.Title))
		if len(r.ActionItems) > 0 {
			sb.WriteString(fmt.Sprintf("  • %s\n", r.ActionItems[0]))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more recommendations\n", len(recs)-maxItemsToShow))
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
