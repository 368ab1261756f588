package models

import (
	"strings"
	"time"
)

// EODBar represents a single period's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// TableRow is a labelled row of raw cell values
type TableRow struct {
	Label  string `json:"label"`
	Values []any  `json:"values"`
}

// Table is provider-neutral tabular data. For financial statements rows are
// line items and columns are reporting periods, most recent first.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Find returns the row whose label contains a keyword (case-insensitive).
// Keywords are tried in order; for each keyword rows are scanned in order,
// so an earlier keyword beats an earlier row.
func (t *Table) Find(keywords ...string) (TableRow, bool) {
	if t == nil {
		return TableRow{}, false
	}
	for _, k := range keywords {
		k = strings.ToLower(k)
		for _, row := range t.Rows {
			if strings.Contains(strings.ToLower(row.Label), k) {
				return row, true
			}
		}
	}
	return TableRow{}, false
}

// First returns the row's first cell, nil when the row has no cells
func (r TableRow) First() any {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// HTMLTable is a table extracted from a web page, cells as text
type HTMLTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// KeyMetrics holds a provider's named key metrics in one of two shapes:
// a flat key → value mapping, or a time-indexed table where each row is a
// metric and the first column is the most recent period.
type KeyMetrics struct {
	Flat  map[string]any `json:"flat,omitempty"`
	Table *Table         `json:"table,omitempty"`
}

// Latest flattens the metrics to key → value using the most recent column
func (k *KeyMetrics) Latest() map[string]any {
	if k == nil {
		return nil
	}
	if k.Table != nil {
		out := make(map[string]any, len(k.Table.Rows))
		for _, row := range k.Table.Rows {
			out[row.Label] = row.First()
		}
		return out
	}
	return k.Flat
}

// Statements bundles the structured financial statements for a ticker
type Statements struct {
	Ticker          string         `json:"ticker"`
	BalanceSheet    *Table         `json:"balance_sheet"`
	IncomeStatement *Table         `json:"income_statement"`
	CashFlow        *Table         `json:"cash_flow,omitempty"`
	QuickInfo       map[string]any `json:"quick_info,omitempty"`
}

// Period types used in FinancialRow
const (
	PeriodAnnual    = "12M"
	PeriodQuarterly = "3M"
)

// Financial series column names
const (
	ColumnTotalRevenue = "TotalRevenue"
	ColumnNetIncome    = "NetIncome"
	ColumnDilutedEPS   = "DilutedEPS"
	ColumnFreeCashFlow = "FreeCashFlow"
	ColumnEBIT         = "EBIT"
	ColumnTotalAssets  = "TotalAssets"
)

// FinancialRow is one (asOfDate, periodType) row of named numeric columns.
// A missing column means the provider had no value for that period.
type FinancialRow struct {
	AsOfDate   time.Time          `json:"as_of_date"`
	PeriodType string             `json:"period_type"`
	Values     map[string]float64 `json:"values"`
}

// FinancialSeries is a provider's time-series financial data
type FinancialSeries []FinancialRow

// Document is a fetched web resource
type Document struct {
	URL         string
	ContentType string
	Body        []byte
}
