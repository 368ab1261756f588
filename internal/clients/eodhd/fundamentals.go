package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

// fundamentalsResponse is the subset of /fundamentals used by finscreen.
// Highlights and Valuation stay untyped so every provider key reaches the
// alias matching in the key-metrics source.
type fundamentalsResponse struct {
	General struct {
		Code string `json:"Code"`
		Name string `json:"Name"`
		Type string `json:"Type"`
	} `json:"General"`
	Highlights flexObject `json:"Highlights"`
	Valuation  flexObject `json:"Valuation"`
	Financials struct {
		BalanceSheet    statementSection `json:"Balance_Sheet"`
		IncomeStatement statementSection `json:"Income_Statement"`
		CashFlow        statementSection `json:"Cash_Flow"`
	} `json:"Financials"`
	Earnings struct {
		Annual periodMap `json:"Annual"`
	} `json:"Earnings"`
}

type statementSection struct {
	CurrencySymbol string    `json:"currency_symbol"`
	Quarterly      periodMap `json:"quarterly"`
	Yearly         periodMap `json:"yearly"`
}

// fields in a statement period that describe the period rather than a line item
var periodMetaFields = map[string]struct{}{
	"date":            {},
	"filing_date":     {},
	"currency_symbol": {},
}

func (c *Client) fundamentals(ctx context.Context, ticker string) (*fundamentalsResponse, error) {
	var resp fundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, fmt.Errorf("fundamentals %s: %w", ticker, err)
	}
	return &resp, nil
}

// Statements returns the yearly balance sheet, income statement and cash
// flow as tables with one column per fiscal year, most recent first.
func (c *Client) Statements(ctx context.Context, ticker string) (*models.Statements, error) {
	resp, err := c.fundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	quick := map[string]any{}
	if v, ok := resp.Valuation["TrailingPE"]; ok && v != nil {
		quick["trailingPE"] = v
	}
	if v, ok := resp.Highlights["PERatio"]; ok && v != nil {
		quick["PERatio"] = v
	}
	if v, ok := resp.Valuation["PriceBookMRQ"]; ok && v != nil {
		quick["priceToBook"] = v
	}
	if v, ok := resp.Highlights["EarningsShare"]; ok && v != nil {
		quick["epsTrailingTwelveMonths"] = v
	}

	return &models.Statements{
		Ticker:          ticker,
		BalanceSheet:    periodTable(resp.Financials.BalanceSheet.Yearly),
		IncomeStatement: periodTable(resp.Financials.IncomeStatement.Yearly),
		CashFlow:        periodTable(resp.Financials.CashFlow.Yearly),
		QuickInfo:       quick,
	}, nil
}

// KeyMetrics returns Highlights and Valuation flattened into one mapping.
// EODHD reports no leverage ratio there, so totalDebtToEquity is derived
// from the latest yearly balance sheet when both inputs are present.
func (c *Client) KeyMetrics(ctx context.Context, ticker string) (*models.KeyMetrics, error) {
	resp, err := c.fundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]any, len(resp.Highlights)+len(resp.Valuation)+1)
	for k, v := range resp.Highlights {
		flat[k] = v
	}
	for k, v := range resp.Valuation {
		flat[k] = v
	}

	if latest := latestPeriod(resp.Financials.BalanceSheet.Yearly); latest != nil {
		debt, okDebt := normalize.ToNumber(latest["shortLongTermDebtTotal"])
		equity, okEquity := normalize.ToNumber(latest["totalStockholderEquity"])
		if okDebt && okEquity && equity != 0 {
			flat["totalDebtToEquity"] = debt / equity
		}
	}

	return &models.KeyMetrics{Flat: flat}, nil
}

// series columns taken from each statement section
var seriesFields = []struct {
	section func(*fundamentalsResponse) statementSection
	field   string
	column  string
}{
	{func(r *fundamentalsResponse) statementSection { return r.Financials.IncomeStatement }, "totalRevenue", models.ColumnTotalRevenue},
	{func(r *fundamentalsResponse) statementSection { return r.Financials.IncomeStatement }, "netIncome", models.ColumnNetIncome},
	{func(r *fundamentalsResponse) statementSection { return r.Financials.IncomeStatement }, "ebit", models.ColumnEBIT},
	{func(r *fundamentalsResponse) statementSection { return r.Financials.CashFlow }, "freeCashFlow", models.ColumnFreeCashFlow},
	{func(r *fundamentalsResponse) statementSection { return r.Financials.BalanceSheet }, "totalAssets", models.ColumnTotalAssets},
}

// FinancialData returns yearly ("12M") and quarterly ("3M") rows keyed by
// period end date, oldest first. DilutedEPS comes from annual earnings.
func (c *Client) FinancialData(ctx context.Context, ticker string) (models.FinancialSeries, error) {
	resp, err := c.fundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}

	type rowKey struct {
		date   string
		period string
	}
	rows := make(map[rowKey]map[string]float64)
	put := func(date, period, column string, raw any) {
		v, ok := normalize.ToNumber(raw)
		if !ok {
			return
		}
		k := rowKey{date, period}
		if rows[k] == nil {
			rows[k] = make(map[string]float64)
		}
		rows[k][column] = v
	}

	for _, f := range seriesFields {
		section := f.section(resp)
		for date, fields := range section.Yearly {
			put(date, models.PeriodAnnual, f.column, fields[f.field])
		}
		for date, fields := range section.Quarterly {
			put(date, models.PeriodQuarterly, f.column, fields[f.field])
		}
	}
	for date, fields := range resp.Earnings.Annual {
		put(date, models.PeriodAnnual, models.ColumnDilutedEPS, fields["epsActual"])
	}

	series := make(models.FinancialSeries, 0, len(rows))
	for k, values := range rows {
		asOf, err := time.Parse("2006-01-02", k.date)
		if err != nil {
			continue
		}
		series = append(series, models.FinancialRow{AsOfDate: asOf, PeriodType: k.period, Values: values})
	}
	sort.Slice(series, func(i, j int) bool {
		if !series[i].AsOfDate.Equal(series[j].AsOfDate) {
			return series[i].AsOfDate.Before(series[j].AsOfDate)
		}
		return series[i].PeriodType > series[j].PeriodType
	})

	return series, nil
}

// periodTable pivots date → fields into a table whose columns are dates,
// most recent first, and whose rows are line items sorted by name.
func periodTable(periods periodMap) *models.Table {
	if len(periods) == 0 {
		return &models.Table{}
	}

	dates := make([]string, 0, len(periods))
	labels := map[string]struct{}{}
	for date, fields := range periods {
		dates = append(dates, date)
		for k := range fields {
			if _, meta := periodMetaFields[k]; !meta {
				labels[k] = struct{}{}
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)

	table := &models.Table{Columns: dates, Rows: make([]models.TableRow, 0, len(names))}
	for _, name := range names {
		row := models.TableRow{Label: name, Values: make([]any, len(dates))}
		for i, date := range dates {
			row.Values[i] = periods[date][name]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func latestPeriod(periods periodMap) flexObject {
	var latest string
	for date := range periods {
		if date > latest {
			latest = date
		}
	}
	if latest == "" {
		return nil
	}
	return periods[latest]
}
