package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finscreen/internal/app"
	"github.com/bobmcallan/finscreen/internal/clients/scrape"
	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/sentiment"
	"github.com/bobmcallan/finscreen/internal/services/market"
	"github.com/bobmcallan/finscreen/internal/services/transcript"
)

type mockMarketService struct {
	history    func(ctx context.Context, ticker, period, interval string) ([]models.EODBar, error)
	chart      func(ctx context.Context, ticker, period string) ([]byte, error)
	statements func(ctx context.Context, ticker string) (*models.Statements, error)
	ratios     map[string]models.Resolution
	lastURL    string
	lastScreen interfaces.ScreenRequest
}

func (m *mockMarketService) History(ctx context.Context, ticker, period, interval string) ([]models.EODBar, error) {
	return m.history(ctx, ticker, period, interval)
}

func (m *mockMarketService) Chart(ctx context.Context, ticker, period string) ([]byte, error) {
	return m.chart(ctx, ticker, period)
}

func (m *mockMarketService) Statements(ctx context.Context, ticker string) (*models.Statements, error) {
	return m.statements(ctx, ticker)
}

func (m *mockMarketService) Ratios(ctx context.Context, ticker, fallbackURL string) models.Resolution {
	m.lastURL = fallbackURL
	if r, ok := m.ratios[ticker]; ok {
		return r
	}
	return models.UnavailableResolution(market.RatiosUnavailable)
}

func (m *mockMarketService) Growth(ctx context.Context, ticker string) models.Resolution {
	return models.UnavailableResolution(market.GrowthUnavailable)
}

func (m *mockMarketService) Screen(ctx context.Context, req interfaces.ScreenRequest) *models.ScreeningReport {
	m.lastScreen = req
	report := &models.ScreeningReport{RunID: "run-1", Criteria: req.Criteria}
	for _, t := range req.Tickers {
		v := models.ScreeningVerdict{Ticker: t, Status: models.StatusPass, Passed: true, Metrics: models.MetricSet{}, Reasons: []string{}}
		if t == "GHOST_TICKER_X" {
			v = models.ScreeningVerdict{Ticker: t, Status: models.StatusFail, Metrics: models.MetricSet{},
				Reasons: []string{"ROE: Missing", "Debt/Equity: Missing"}, Info: market.RatiosUnavailable}
			report.Failed++
		} else {
			report.Matched++
		}
		report.Results = append(report.Results, v)
	}
	return report
}

type mockTranscriptService struct {
	err error
}

func (m *mockTranscriptService) Analyze(ctx context.Context, url string) (*models.TranscriptAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.TranscriptAnalysis{URL: url, Paragraphs: 2, Label: "neutral", Scorer: "fake"}, nil
}

func newTestServer(svc *mockMarketService, ts *mockTranscriptService) *Server {
	if ts == nil {
		ts = &mockTranscriptService{}
	}
	a := &app.App{
		Config:            common.NewDefaultConfig(),
		Logger:            common.NewSilentLogger(),
		Metrics:           metrics.NewManager(),
		MarketService:     svc,
		TranscriptService: ts,
		StartupTime:       time.Now(),
	}
	return NewServer(a)
}

func serve(srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)

	rec := serve(srv, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = serve(srv, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, common.GetVersion(), v["version"])

	rec = serve(srv, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCorrelationIDPropagates(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestStockRatios(t *testing.T) {
	svc := &mockMarketService{ratios: map[string]models.Resolution{
		"AAPL.US": models.Resolved("key_metrics", models.MetricSet{models.MetricROE: 0.0156}),
	}}
	srv := newTestServer(svc, nil)

	rec := serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/ratios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ROE":0.0156}`, rec.Body.String())

	rec = serve(srv, http.MethodGet, "/api/market/stocks/GHOST_TICKER_X/ratios?fallback_url=https://example.com/r", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Info":"Ratios not available for this ticker"}`, rec.Body.String())
	assert.Equal(t, "https://example.com/r", svc.lastURL)

	rec = serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/growth", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Info":"Growth data not available"}`, rec.Body.String())
}

func TestStockRoutes_BadPaths(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)

	assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/quote", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(srv, http.MethodPost, "/api/market/stocks/AAPL.US/ratios", nil).Code)
}

func TestStockHistory(t *testing.T) {
	svc := &mockMarketService{
		history: func(ctx context.Context, ticker, period, interval string) ([]models.EODBar, error) {
			switch period {
			case "bogus":
				return nil, fmt.Errorf("%w: %q", market.ErrInvalidPeriod, period)
			case "5d":
				return nil, market.ErrNoPriceData
			case "1y":
				return []models.EODBar{{Close: 1}, {Close: 2}}, nil
			}
			return nil, errors.New("upstream down")
		},
	}
	srv := newTestServer(svc, nil)

	rec := serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/history?period=1y&interval=1d", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Ticker string          `json:"ticker"`
		Bars   []models.EODBar `json:"bars"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AAPL.US", resp.Ticker)
	assert.Len(t, resp.Bars, 2)

	assert.Equal(t, http.StatusBadRequest, serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/history?period=bogus", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/history?period=5d", nil).Code)
	assert.Equal(t, http.StatusBadGateway, serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/history?period=max", nil).Code)
}

func TestStockChartAndStatements(t *testing.T) {
	svc := &mockMarketService{
		chart: func(ctx context.Context, ticker, period string) ([]byte, error) {
			return []byte("\x89PNG\r\n"), nil
		},
		statements: func(ctx context.Context, ticker string) (*models.Statements, error) {
			if ticker == "MSFT.US" {
				return &models.Statements{Ticker: ticker}, nil
			}
			return nil, errors.New("not found")
		},
	}
	srv := newTestServer(svc, nil)

	rec := serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = serve(srv, http.MethodGet, "/api/market/stocks/MSFT.US/statements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"MSFT.US"`)

	assert.Equal(t, http.StatusBadGateway, serve(srv, http.MethodGet, "/api/market/stocks/NOPE/statements", nil).Code)
}

func TestScreen(t *testing.T) {
	svc := &mockMarketService{}
	srv := newTestServer(svc, nil)

	body := []byte(`{
		"tickers": [" AAPL.US ", "GHOST_TICKER_X"],
		"criteria": {"ROE": 0.15, "debt/equity": 1.0},
		"fallback_urls": {"TCS.NS": "https://example.com/tcs"},
		"fallback_map": "INFY.NS|https://example.com/infy\nTCS.NS|https://example.com/old"
	}`)
	rec := serve(srv, http.MethodPost, "/api/screen", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"AAPL.US", "GHOST_TICKER_X"}, svc.lastScreen.Tickers)
	assert.Equal(t, models.DefaultCriteria(), svc.lastScreen.Criteria)
	assert.Equal(t, map[string]string{
		"TCS.NS":  "https://example.com/tcs",
		"INFY.NS": "https://example.com/infy",
	}, svc.lastScreen.FallbackURLs)

	var report models.ScreeningReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	require.Len(t, report.Results, 2)
	assert.Equal(t, []string{"ROE: Missing", "Debt/Equity: Missing"}, report.Results[1].Reasons)
	assert.Equal(t, 1, report.Matched)
}

func TestScreen_DefaultCriteriaLeftToService(t *testing.T) {
	svc := &mockMarketService{}
	srv := newTestServer(svc, nil)

	rec := serve(srv, http.MethodPost, "/api/screen", []byte(`{"tickers":["AAPL.US"]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastScreen.Criteria)
}

func TestScreen_Validation(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"no tickers", `{"tickers": []}`},
		{"blank ticker", `{"tickers": ["  "]}`},
		{"bad fallback url", `{"tickers": ["A"], "fallback_urls": {"A": "not a url"}}`},
		{"unknown metric", `{"tickers": ["A"], "criteria": {"Beta": 1}}`},
		{"metric given twice", `{"tickers": ["A"], "criteria": {"ROE": 0.15, "return on equity": 0.2}}`},
		{"invalid json", `{"tickers": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, http.MethodPost, "/api/screen", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusMethodNotAllowed, serve(srv, http.MethodGet, "/api/screen", nil).Code)
}

func TestTranscriptSentiment(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)
	rec := serve(srv, http.MethodPost, "/api/transcripts/sentiment", []byte(`{"url":"https://example.com/call"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scorer":"fake"`)

	rec = serve(srv, http.MethodPost, "/api/transcripts/sentiment", []byte(`{"url":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w at x", transcript.ErrNoTranscriptText), http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to fetch transcript: %w", scrape.ErrBodyTooLarge), http.StatusUnprocessableEntity},
		{fmt.Errorf("none scoring failed: %w", sentiment.ErrNoProvider), http.StatusServiceUnavailable},
		{errors.New("timeout"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		srv := newTestServer(&mockMarketService{}, &mockTranscriptService{err: tt.err})
		rec := serve(srv, http.MethodPost, "/api/transcripts/sentiment", []byte(`{"url":"https://example.com/call"}`))
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)
	serve(srv, http.MethodGet, "/api/health", nil)
	serve(srv, http.MethodGet, "/api/market/stocks/AAPL.US/growth", nil)
	serve(srv, http.MethodGet, "/api/market/stocks/MSFT.US/growth", nil)

	count, err := testutil.GatherAndCount(srv.app.Metrics.Registry(), "finscreen_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := serve(srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/market/stocks/{ticker}/growth"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&mockMarketService{}, nil)
	rec := serve(srv, http.MethodOptions, "/api/screen", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/market/stocks/{ticker}/ratios", routeLabel("/api/market/stocks/AAPL.US/ratios"))
	assert.Equal(t, "/api/screen", routeLabel("/api/screen"))
}

func TestPathParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/market/stocks/BHP.AU/ratios", nil)
	assert.Equal(t, "BHP.AU", PathParam(r, "/api/market/stocks/", "/ratios"))
	assert.Equal(t, "BHP.AU", PathParam(r, "/api/market/stocks/", ""))
	assert.Equal(t, "", PathParam(r, "/api/portfolios/", ""))
}
