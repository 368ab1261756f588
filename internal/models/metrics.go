// Package models defines data structures for finscreen
package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// MetricID identifies a canonical financial metric
type MetricID string

const (
	MetricROE                MetricID = "ROE"
	MetricROCE               MetricID = "ROCE"
	MetricDebtToEquity       MetricID = "Debt/Equity"
	MetricPE                 MetricID = "P/E"
	MetricPB                 MetricID = "P/B"
	MetricEVToEBITDA         MetricID = "EV/EBITDA"
	MetricRevenueGrowth      MetricID = "Revenue Growth YoY"
	MetricNetIncomeGrowth    MetricID = "Net Income Growth YoY"
	MetricEPSGrowth          MetricID = "EPS Growth YoY"
	MetricFreeCashFlowGrowth MetricID = "Free Cash Flow Growth YoY"
)

var metricOrder = []MetricID{
	MetricROE,
	MetricROCE,
	MetricDebtToEquity,
	MetricPE,
	MetricPB,
	MetricEVToEBITDA,
	MetricRevenueGrowth,
	MetricNetIncomeGrowth,
	MetricEPSGrowth,
	MetricFreeCashFlowGrowth,
}

// legacy spellings accepted from callers
var metricAliases = map[string]MetricID{
	"revenue growth (yoy)":        MetricRevenueGrowth,
	"net income growth (yoy)":     MetricNetIncomeGrowth,
	"eps growth (yoy)":            MetricEPSGrowth,
	"free cash flow growth (yoy)": MetricFreeCashFlowGrowth,
	"debt to equity":              MetricDebtToEquity,
	"return on equity":            MetricROE,
	"return on capital employed":  MetricROCE,
}

// AllMetrics returns the metric vocabulary in canonical order
func AllMetrics() []MetricID {
	out := make([]MetricID, len(metricOrder))
	copy(out, metricOrder)
	return out
}

// IsGrowth reports whether the metric is a year-over-year growth metric
func (m MetricID) IsGrowth() bool {
	switch m {
	case MetricRevenueGrowth, MetricNetIncomeGrowth, MetricEPSGrowth, MetricFreeCashFlowGrowth:
		return true
	}
	return false
}

// ParseMetricID resolves a caller-supplied metric name to its canonical id.
// Unknown names are returned as-is with ok=false.
func ParseMetricID(name string) (MetricID, bool) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, m := range metricOrder {
		if strings.ToLower(string(m)) == lower {
			return m, true
		}
	}
	if m, ok := metricAliases[lower]; ok {
		return m, true
	}
	return MetricID(trimmed), false
}

func metricRank(m MetricID) int {
	for i, known := range metricOrder {
		if known == m {
			return i
		}
	}
	return len(metricOrder)
}

// MetricSet maps metric ids to canonical values. An absent key means unknown, not zero.
type MetricSet map[MetricID]float64

// Get returns the value for a metric and whether it is known
func (s MetricSet) Get(m MetricID) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s[m]
	return v, ok
}

// Keys returns the set's metric ids in canonical order
func (s MetricSet) Keys() []MetricID {
	keys := make([]MetricID, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortMetricIDs(keys)
	return keys
}

// Clone returns a shallow copy of the set
func (s MetricSet) Clone() MetricSet {
	out := make(MetricSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func sortMetricIDs(ids []MetricID) {
	sort.SliceStable(ids, func(i, j int) bool {
		ri, rj := metricRank(ids[i]), metricRank(ids[j])
		if ri != rj {
			return ri < rj
		}
		return ids[i] < ids[j]
	})
}

// ResolutionStatus tags a Resolution
type ResolutionStatus string

const (
	ResolutionAvailable   ResolutionStatus = "available"
	ResolutionUnavailable ResolutionStatus = "unavailable"
)

// Resolution is the outcome of resolving a metric set for a ticker.
// An unavailable resolution is distinct from an available one with no metrics:
// it means every source was tried and none produced data.
type Resolution struct {
	Status  ResolutionStatus
	Metrics MetricSet
	Source  string
	Info    string
}

// Resolved builds an available resolution
func Resolved(source string, metrics MetricSet) Resolution {
	return Resolution{Status: ResolutionAvailable, Metrics: metrics, Source: source}
}

// UnavailableResolution builds the "no data" sentinel resolution
func UnavailableResolution(info string) Resolution {
	return Resolution{Status: ResolutionUnavailable, Info: info}
}

// Available reports whether the resolution carries metrics
func (r Resolution) Available() bool {
	return r.Status == ResolutionAvailable
}

// MarshalJSON renders an available resolution as the plain metric map and an
// unavailable one as the single-entry {"Info": "..."} sentinel.
func (r Resolution) MarshalJSON() ([]byte, error) {
	if !r.Available() {
		return json.Marshal(map[string]string{"Info": r.Info})
	}
	out := make(map[string]float64, len(r.Metrics))
	for k, v := range r.Metrics {
		out[string(k)] = v
	}
	return json.Marshal(out)
}
