package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/finscreen/internal/clients/scrape"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/sentiment"
	"github.com/bobmcallan/finscreen/internal/services/market"
	"github.com/bobmcallan/finscreen/internal/services/transcript"
)

// --- Market handlers ---

func (s *Server) handleStockRatios(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	res := s.app.MarketService.Ratios(r.Context(), ticker, r.URL.Query().Get("fallback_url"))
	WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleStockGrowth(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.MarketService.Growth(r.Context(), ticker))
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	bars, err := s.app.MarketService.History(r.Context(), ticker, q.Get("period"), q.Get("interval"))
	if err != nil {
		s.writeMarketError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"bars":   bars,
	})
}

func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.MarketService.Chart(r.Context(), ticker, r.URL.Query().Get("period"))
	if err != nil {
		s.writeMarketError(w, ticker, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleStockStatements(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	st, err := s.app.MarketService.Statements(r.Context(), ticker)
	if err != nil {
		s.writeMarketError(w, ticker, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

func (s *Server) writeMarketError(w http.ResponseWriter, ticker string, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidPeriod), errors.Is(err, market.ErrInvalidInterval):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, market.ErrNoPriceData):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Market data request failed")
		WriteError(w, http.StatusBadGateway, err.Error())
	}
}

// --- Screening ---

// screenRequest is the body of POST /api/screen. fallback_map holds
// "TICKER|URL" lines and is merged under fallback_urls.
type screenRequest struct {
	Tickers      []string           `json:"tickers" validate:"required,min=1,max=200,dive,required"`
	Criteria     map[string]float64 `json:"criteria"`
	FallbackURLs map[string]string  `json:"fallback_urls" validate:"omitempty,dive,keys,required,endkeys,url"`
	FallbackMap  string             `json:"fallback_map"`
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body screenRequest
	if !DecodeJSON(w, r, &body) {
		return
	}
	for i := range body.Tickers {
		body.Tickers[i] = strings.TrimSpace(body.Tickers[i])
	}
	if !ValidateBody(w, &body) {
		return
	}

	var criteria models.Criteria
	if len(body.Criteria) > 0 {
		c, err := models.ParseCriteria(body.Criteria)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		criteria = c
	}

	fallbacks := models.ParseFallbackMap(body.FallbackMap)
	for ticker, u := range body.FallbackURLs {
		fallbacks[ticker] = u
	}

	report := s.app.MarketService.Screen(r.Context(), interfaces.ScreenRequest{
		Tickers:      body.Tickers,
		Criteria:     criteria,
		FallbackURLs: fallbacks,
	})
	WriteJSON(w, http.StatusOK, report)
}

// --- Transcripts ---

type transcriptRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (s *Server) handleTranscriptSentiment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body transcriptRequest
	if !DecodeJSON(w, r, &body) {
		return
	}
	if !ValidateBody(w, &body) {
		return
	}

	analysis, err := s.app.TranscriptService.Analyze(r.Context(), body.URL)
	if err != nil {
		switch {
		case errors.Is(err, transcript.ErrNoTranscriptText), errors.Is(err, scrape.ErrBodyTooLarge):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, sentiment.ErrNoProvider):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.logger.Warn().Err(err).Str("url", body.URL).Msg("Transcript analysis failed")
			WriteError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}
