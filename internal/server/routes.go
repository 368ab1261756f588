package server

import (
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finscreen/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// MCP over Streamable HTTP
	if s.app.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
			mcpserver.WithStateLess(true),
		))
	}

	// Market data
	mux.HandleFunc("/api/market/stocks/", s.routeMarketStocks)

	// Screening
	mux.HandleFunc("/api/screen", s.handleScreen)

	// Transcripts
	mux.HandleFunc("/api/transcripts/sentiment", s.handleTranscriptSentiment)
}

// routeMarketStocks dispatches /api/market/stocks/{ticker}/* to the appropriate handler.
func (s *Server) routeMarketStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/market/stocks/")
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		WriteError(w, http.StatusBadRequest, "ticker and resource are required in path")
		return
	}
	ticker, resource := path[:idx], path[idx+1:]

	switch resource {
	case "ratios":
		s.handleStockRatios(w, r, ticker)
	case "growth":
		s.handleStockGrowth(w, r, ticker)
	case "history":
		s.handleStockHistory(w, r, ticker)
	case "chart":
		s.handleStockChart(w, r, ticker)
	case "statements":
		s.handleStockStatements(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Unknown stock resource: "+resource)
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}
