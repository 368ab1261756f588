// Package interfaces defines provider and service contracts for finscreen
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/finscreen/internal/models"
)

// PriceHistoryProvider returns OHLC price history
type PriceHistoryProvider interface {
	// History retrieves bars for a ticker, oldest first. An unknown ticker
	// yields an empty slice or an error, depending on the provider.
	History(ctx context.Context, ticker string, opts ...HistoryOption) ([]models.EODBar, error)
}

// HistoryOption configures price history requests
type HistoryOption func(*HistoryParams)

// HistoryParams holds price history query parameters
type HistoryParams struct {
	From     time.Time
	To       time.Time
	Interval string // d=daily, w=weekly, m=monthly
	Order    string // a=ascending, d=descending
	Limit    int
}

// WithDateRange sets the date range for the history query
func WithDateRange(from, to time.Time) HistoryOption {
	return func(p *HistoryParams) {
		p.From = from
		p.To = to
	}
}

// WithInterval sets the bar interval (d, w or m)
func WithInterval(interval string) HistoryOption {
	return func(p *HistoryParams) {
		p.Interval = interval
	}
}

// WithLimit caps the number of bars returned
func WithLimit(limit int) HistoryOption {
	return func(p *HistoryParams) {
		p.Limit = limit
	}
}

// StatementsProvider returns structured financial statements
type StatementsProvider interface {
	// Statements returns balance sheet and income statement tables, one
	// column per reporting period, most recent first.
	Statements(ctx context.Context, ticker string) (*models.Statements, error)
}

// KeyMetricsProvider returns a provider's named key metrics
type KeyMetricsProvider interface {
	KeyMetrics(ctx context.Context, ticker string) (*models.KeyMetrics, error)
}

// FinancialDataProvider returns time-series financial data
type FinancialDataProvider interface {
	FinancialData(ctx context.Context, ticker string) (models.FinancialSeries, error)
}

// TableFetcher fetches a web page and parses its tables
type TableFetcher interface {
	FetchTables(ctx context.Context, url string) ([]models.HTMLTable, error)
}

// DocumentFetcher fetches a raw web resource
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*models.Document, error)
}

// SentimentScorer maps text to a sentiment score
type SentimentScorer interface {
	Name() string
	Score(ctx context.Context, text string) (models.SentimentScore, error)
}

// MarketDataProvider is the full set of market data a single provider
// such as EODHD can serve.
type MarketDataProvider interface {
	PriceHistoryProvider
	StatementsProvider
	KeyMetricsProvider
	FinancialDataProvider
}
