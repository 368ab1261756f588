package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/finscreen/internal/models"
)

func formatResolution(title, ticker string, res models.Resolution) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s: %s\n\n", title, ticker))

	if !res.Available() {
		sb.WriteString(res.Info + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Source:** %s\n\n", res.Source))
	if len(res.Metrics) == 0 {
		sb.WriteString("No metrics found.\n")
		return sb.String()
	}
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	for _, k := range res.Metrics.Keys() {
		sb.WriteString(fmt.Sprintf("| %s | %.4f |\n", k, res.Metrics[k]))
	}
	return sb.String()
}

func formatScreeningReport(r *models.ScreeningReport) string {
	var sb strings.Builder
	sb.WriteString("# Screening Results\n\n")

	parts := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		parts = append(parts, fmt.Sprintf("%s %g", c.Metric, c.Threshold))
	}
	sb.WriteString(fmt.Sprintf("**Criteria:** %s\n", strings.Join(parts, ", ")))
	sb.WriteString(fmt.Sprintf("**Matched:** %d of %d\n\n", r.Matched, len(r.Results)))

	sb.WriteString("| Ticker | Status | Source | Reasons |\n|--------|--------|--------|---------|\n")
	for _, v := range r.Results {
		source := v.Source
		if source == "" {
			source = "-"
		}
		reason := v.Reason()
		if reason == "" {
			reason = "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", v.Ticker, v.Status, source, reason))
	}
	return sb.String()
}

func formatTranscript(a *models.TranscriptAnalysis) string {
	var sb strings.Builder
	sb.WriteString("# Transcript Sentiment\n\n")
	sb.WriteString(fmt.Sprintf("**URL:** %s\n", a.URL))
	sb.WriteString(fmt.Sprintf("**Overall:** %s (compound %.3f)\n\n", a.Label, a.Score.Compound))
	sb.WriteString("| Negative | Neutral | Positive |\n|----------|---------|----------|\n")
	sb.WriteString(fmt.Sprintf("| %.3f | %.3f | %.3f |\n\n", a.Score.Negative, a.Score.Neutral, a.Score.Positive))
	sb.WriteString(fmt.Sprintf("Scored %d paragraphs (%d characters) with %s.\n", a.Paragraphs, a.Characters, a.Scorer))
	return sb.String()
}
