package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Direction is the comparison a screening criterion enforces
type Direction int

const (
	// Unenforced metrics are reported but never fail a ticker
	Unenforced Direction = iota
	// HigherIsBetter fails when value < threshold
	HigherIsBetter
	// LowerIsBetter fails when value > threshold
	LowerIsBetter
)

func (d Direction) String() string {
	switch d {
	case HigherIsBetter:
		return "higher_is_better"
	case LowerIsBetter:
		return "lower_is_better"
	default:
		return "unenforced"
	}
}

// DirectionTable declares the comparison direction per metric
type DirectionTable map[MetricID]Direction

// DefaultDirections returns the standard classification: returns and growth
// rates are higher-is-better, leverage is lower-is-better, valuation
// multiples are unenforced.
func DefaultDirections() DirectionTable {
	return DirectionTable{
		MetricROE:                HigherIsBetter,
		MetricROCE:               HigherIsBetter,
		MetricRevenueGrowth:      HigherIsBetter,
		MetricNetIncomeGrowth:    HigherIsBetter,
		MetricEPSGrowth:          HigherIsBetter,
		MetricFreeCashFlowGrowth: HigherIsBetter,
		MetricDebtToEquity:       LowerIsBetter,
	}
}

// For returns the direction for a metric, Unenforced when undeclared
func (t DirectionTable) For(m MetricID) Direction {
	if t == nil {
		return Unenforced
	}
	return t[m]
}

// Criterion is a single metric threshold
type Criterion struct {
	Metric    MetricID `json:"metric"`
	Threshold float64  `json:"threshold"`
}

// Criteria is an ordered list of thresholds
type Criteria []Criterion

// CriteriaFromMap builds criteria ordered by the canonical metric vocabulary.
// Names are resolved with ParseMetricID; unknown names sort last alphabetically.
// When several names resolve to one metric, the alphabetically first name
// supplies the threshold.
func CriteriaFromMap(m map[string]float64) Criteria {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[MetricID]bool, len(names))
	out := make(Criteria, 0, len(names))
	for _, name := range names {
		id, _ := ParseMetricID(name)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Criterion{Metric: id, Threshold: m[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := metricRank(out[i].Metric), metricRank(out[j].Metric)
		if ri != rj {
			return ri < rj
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}

// ParseCriteria is CriteriaFromMap that rejects unknown metric names and
// names that resolve to a metric already given under another name.
func ParseCriteria(m map[string]float64) (Criteria, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[MetricID]string, len(names))
	for _, name := range names {
		id, ok := ParseMetricID(name)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("metric %s given twice (%q and %q)", id, prev, name)
		}
		seen[id] = name
	}
	return CriteriaFromMap(m), nil
}

// DefaultCriteria is ROE >= 15% and Debt/Equity <= 1.0
func DefaultCriteria() Criteria {
	return Criteria{
		{Metric: MetricROE, Threshold: 0.15},
		{Metric: MetricDebtToEquity, Threshold: 1.0},
	}
}

// NeedsGrowth reports whether any criterion references a growth metric
func (c Criteria) NeedsGrowth() bool {
	for _, cr := range c {
		if cr.Metric.IsGrowth() {
			return true
		}
	}
	return false
}

// Screening verdict statuses
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// ScreeningVerdict is the immutable outcome of screening one ticker
type ScreeningVerdict struct {
	Ticker  string    `json:"ticker"`
	Status  string    `json:"status"`
	Passed  bool      `json:"passed"`
	Metrics MetricSet `json:"metrics"`
	Reasons []string  `json:"reasons"`
	Source  string    `json:"source,omitempty"`
	Info    string    `json:"info,omitempty"`
}

// Reason joins the failure reasons into a single line
func (v ScreeningVerdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// ScreeningReport wraps the verdicts of one screening run
type ScreeningReport struct {
	RunID      string             `json:"run_id"`
	Criteria   Criteria           `json:"criteria"`
	Results    []ScreeningVerdict `json:"results"`
	Matched    int                `json:"matched"`
	Failed     int                `json:"failed"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// Passed returns the verdicts that passed, in input order
func (r *ScreeningReport) Passed() []ScreeningVerdict {
	var out []ScreeningVerdict
	for _, v := range r.Results {
		if v.Passed {
			out = append(out, v)
		}
	}
	return out
}

// ParseTickers splits a comma-separated ticker list, dropping blanks
func ParseTickers(s string) []string {
	return CleanTickers(strings.Split(s, ","))
}

// CleanTickers trims every ticker and drops the blank ones
func CleanTickers(tickers []string) []string {
	var out []string
	for _, t := range tickers {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseFallbackMap parses "TICKER|URL" lines into a ticker → URL map.
// Lines without a "|" are ignored.
func ParseFallbackMap(s string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(s, "\n") {
		ticker, u, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		out[strings.TrimSpace(ticker)] = strings.TrimSpace(u)
	}
	return out
}
