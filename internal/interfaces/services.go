package interfaces

import (
	"context"

	"github.com/bobmcallan/finscreen/internal/models"
)

// MarketService handles market data, ratio resolution and screening
type MarketService interface {
	// History returns price bars for a period such as "1y" or "6mo" at an
	// interval of "1d", "1wk" or "1mo".
	History(ctx context.Context, ticker, period, interval string) ([]models.EODBar, error)

	// Chart renders the closing price history as a PNG
	Chart(ctx context.Context, ticker, period string) ([]byte, error)

	// Statements returns the raw financial statements
	Statements(ctx context.Context, ticker string) (*models.Statements, error)

	// Ratios resolves the ratio metric set. fallbackURL enables the scraped
	// page source when non-empty.
	Ratios(ctx context.Context, ticker, fallbackURL string) models.Resolution

	// Growth resolves year-over-year growth metrics
	Growth(ctx context.Context, ticker string) models.Resolution

	// Screen runs the screening engine over tickers
	Screen(ctx context.Context, req ScreenRequest) *models.ScreeningReport
}

// ScreenRequest configures a screening run
type ScreenRequest struct {
	Tickers      []string
	Criteria     models.Criteria   // empty means the configured defaults
	FallbackURLs map[string]string // ticker → fallback ratios page
}

// TranscriptService scores earnings-call transcripts
type TranscriptService interface {
	Analyze(ctx context.Context, url string) (*models.TranscriptAnalysis, error)
}
