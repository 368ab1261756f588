package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/sources"
)

var errUnknownTicker = errors.New("ticker not found")

// fakeSource returns a fixed outcome and counts calls
type fakeSource struct {
	name  string
	out   sources.Outcome
	calls int
	panic bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, ticker string) sources.Outcome {
	f.calls++
	if f.panic {
		panic("malformed payload")
	}
	return f.out
}

// fakePage records the URLs it was asked to read
type fakePage struct {
	out  sources.Outcome
	urls []string
}

func (f *fakePage) Name() string { return "page" }

func (f *fakePage) FetchPage(ctx context.Context, url string) sources.Outcome {
	f.urls = append(f.urls, url)
	return f.out
}

// fakeProvider serves canned market data per ticker
type fakeProvider struct {
	bars       map[string][]models.EODBar
	keyMetrics map[string]*models.KeyMetrics
	statements map[string]*models.Statements
	series     map[string]models.FinancialSeries
	historyOpt interfaces.HistoryParams
}

func (f *fakeProvider) History(ctx context.Context, ticker string, opts ...interfaces.HistoryOption) ([]models.EODBar, error) {
	for _, opt := range opts {
		opt(&f.historyOpt)
	}
	bars, ok := f.bars[ticker]
	if !ok {
		return nil, errUnknownTicker
	}
	return bars, nil
}

func (f *fakeProvider) KeyMetrics(ctx context.Context, ticker string) (*models.KeyMetrics, error) {
	km, ok := f.keyMetrics[ticker]
	if !ok {
		return nil, errUnknownTicker
	}
	return km, nil
}

func (f *fakeProvider) Statements(ctx context.Context, ticker string) (*models.Statements, error) {
	st, ok := f.statements[ticker]
	if !ok {
		return nil, errUnknownTicker
	}
	return st, nil
}

func (f *fakeProvider) FinancialData(ctx context.Context, ticker string) (models.FinancialSeries, error) {
	s, ok := f.series[ticker]
	if !ok {
		return nil, errUnknownTicker
	}
	return s, nil
}

// fakeTables serves HTML tables keyed by URL
type fakeTables map[string][]models.HTMLTable

func (f fakeTables) FetchTables(ctx context.Context, url string) ([]models.HTMLTable, error) {
	t, ok := f[url]
	if !ok {
		return nil, errors.New("404")
	}
	return t, nil
}

func annualRow(date string, values map[string]float64) models.FinancialRow {
	d, _ := time.Parse("2006-01-02", date)
	return models.FinancialRow{AsOfDate: d, PeriodType: models.PeriodAnnual, Values: values}
}

func dailyBars(n int, start time.Time) []models.EODBar {
	bars := make([]models.EODBar, n)
	for i := range bars {
		price := 100 + float64(i%7) - float64(i%3)
		bars[i] = models.EODBar{Date: start.AddDate(0, 0, i), Open: price, High: price + 1, Low: price - 1, Close: price, AdjClose: price, Volume: 1000}
	}
	return bars
}

func hasReason(reasons []string, parts ...string) bool {
	for _, r := range reasons {
		ok := true
		for _, p := range parts {
			if !strings.Contains(r, p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
