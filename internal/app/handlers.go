package app

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/normalize"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("finscreen MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetRatios implements the get_ratios tool
func handleGetRatios(marketService interfaces.MarketService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		fallbackURL := request.GetString("fallback_url", "")

		res := marketService.Ratios(ctx, ticker, fallbackURL)
		logger.Debug().Str("ticker", ticker).Bool("available", res.Available()).Msg("get_ratios")
		return textResult(formatResolution("Ratios", ticker, res)), nil
	}
}

// handleGetGrowth implements the get_growth tool
func handleGetGrowth(marketService interfaces.MarketService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		res := marketService.Growth(ctx, ticker)
		logger.Debug().Str("ticker", ticker).Bool("available", res.Available()).Msg("get_growth")
		return textResult(formatResolution("Growth", ticker, res)), nil
	}
}

// handleScreenStocks implements the screen_stocks tool
func handleScreenStocks(marketService interfaces.MarketService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tickers := models.CleanTickers(request.GetStringSlice("tickers", nil))
		if len(tickers) == 0 {
			return errorResult("Error: tickers parameter is required"), nil
		}

		criteria, err := criteriaArgument(request.GetArguments()["criteria"])
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		report := marketService.Screen(ctx, interfaces.ScreenRequest{
			Tickers:      tickers,
			Criteria:     criteria,
			FallbackURLs: models.ParseFallbackMap(request.GetString("fallback_map", "")),
		})
		logger.Info().
			Str("run_id", report.RunID).
			Int("matched", report.Matched).
			Msg("screen_stocks")
		return textResult(formatScreeningReport(report)), nil
	}
}

// handleTranscriptSentiment implements the transcript_sentiment tool
func handleTranscriptSentiment(transcriptService interfaces.TranscriptService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil || url == "" {
			return errorResult("Error: url parameter is required"), nil
		}

		analysis, err := transcriptService.Analyze(ctx, url)
		if err != nil {
			logger.Error().Err(err).Str("url", url).Msg("Transcript sentiment failed")
			return errorResult(fmt.Sprintf("Transcript error: %v", err)), nil
		}
		return textResult(formatTranscript(analysis)), nil
	}
}

// criteriaArgument reads a {"metric": threshold} object. Thresholds may be
// numbers or numeric strings. A missing argument yields nil criteria.
func criteriaArgument(raw any) (models.Criteria, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("criteria must be an object of metric thresholds")
	}

	thresholds := make(map[string]float64, len(obj))
	for name, v := range obj {
		f, ok := normalize.ToNumber(v)
		if !ok {
			return nil, fmt.Errorf("threshold for %q is not a number", name)
		}
		thresholds[name] = f
	}
	return models.ParseCriteria(thresholds)
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
