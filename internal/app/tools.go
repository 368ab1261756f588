package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the finscreen server version and status. Use this to verify connectivity."),
	)
}

// createGetRatiosTool returns the get_ratios tool definition
func createGetRatiosTool() mcp.Tool {
	return mcp.NewTool("get_ratios",
		mcp.WithDescription("Resolve fundamental ratios (ROE, ROCE, Debt/Equity, P/E, P/B, EV/EBITDA) for a ticker. Sources are tried in priority order: provider key metrics, ratios computed from financial statements, then an optional fallback ratios page."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'AAPL.US', 'BHP.AU')"),
		),
		mcp.WithString("fallback_url",
			mcp.Description("Optional URL of an HTML page with a ratios table, used when structured sources have no data"),
		),
	)
}

// createGetGrowthTool returns the get_growth tool definition
func createGetGrowthTool() mcp.Tool {
	return mcp.NewTool("get_growth",
		mcp.WithDescription("Compute year-over-year growth (revenue, net income, EPS, free cash flow) from the two most recent annual periods."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'AAPL.US')"),
		),
	)
}

// createScreenStocksTool returns the screen_stocks tool definition
func createScreenStocksTool() mcp.Tool {
	return mcp.NewTool("screen_stocks",
		mcp.WithDescription("Screen tickers against fundamental thresholds. Returns PASS/FAIL per ticker with every failing reason. Defaults to ROE >= 0.15 and Debt/Equity <= 1.0."),
		mcp.WithArray("tickers",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("Tickers to screen (e.g., ['AAPL.US', 'MSFT.US'])"),
		),
		mcp.WithObject("criteria",
			mcp.Description("Metric thresholds as decimals, e.g. {\"ROE\": 0.15, \"Debt/Equity\": 1.0, \"Revenue Growth YoY\": 0.1}"),
		),
		mcp.WithString("fallback_map",
			mcp.Description("Optional fallback ratio pages, one 'TICKER|URL' per line"),
		),
	)
}

// createTranscriptSentimentTool returns the transcript_sentiment tool definition
func createTranscriptSentimentTool() mcp.Tool {
	return mcp.NewTool("transcript_sentiment",
		mcp.WithDescription("Score the sentiment of an earnings-call transcript page or PDF."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the transcript (HTML page or PDF)"),
		),
	)
}
