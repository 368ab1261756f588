package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finscreen/internal/clients/eodhd"
	"github.com/bobmcallan/finscreen/internal/clients/scrape"
	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/sentiment"
	"github.com/bobmcallan/finscreen/internal/services/market"
	"github.com/bobmcallan/finscreen/internal/services/transcript"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by both cmd/finscreen-server and cmd/finscreen-mcp.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	Metrics           *metrics.Manager
	EODHDClient       *eodhd.Client
	ScrapeClient      *scrape.Client
	Scorer            interfaces.SentimentScorer
	MarketService     interfaces.MarketService
	TranscriptService interfaces.TranscriptService
	MCPServer         *server.MCPServer
	StartupTime       time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all clients and services.
// configPath may be empty, in which case FINSCREEN_CONFIG, the binary
// directory and then config/finscreen.toml are tried.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FINSCREEN_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finscreen.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finscreen.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppFromConfig(context.Background(), config, logger)
}

// NewAppFromConfig wires the application from an already loaded config
func NewAppFromConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	for _, key := range config.ValidateRequired() {
		logger.Warn().Str("setting", key).Msg("Required setting not configured - some features may be limited")
	}

	m := metrics.NewManager()

	eodhdClient := eodhd.NewClientFromConfig(config.Clients.EODHD, logger)
	scrapeClient := scrape.NewClientFromConfig(config.Clients.Scrape, logger)

	scorer, err := sentiment.NewScorer(ctx, config, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentiment scorer unavailable - falling back to vader")
		scorer = sentiment.NewVader()
	}

	marketService := market.NewService(eodhdClient, scrapeClient, config.Screening.DefaultCriteria(), logger, m)
	transcriptService := transcript.NewService(scrapeClient, scorer, logger)

	a := &App{
		Config:            config,
		Logger:            logger,
		Metrics:           m,
		EODHDClient:       eodhdClient,
		ScrapeClient:      scrapeClient,
		Scorer:            scorer,
		MarketService:     marketService,
		TranscriptService: transcriptService,
		MCPServer:         newMCPServer(),
		StartupTime:       startupStart,
	}

	a.registerTools()

	logger.Info().
		Str("sentiment", scorer.Name()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

func newMCPServer() *server.MCPServer {
	return server.NewMCPServer(
		"finscreen",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
}

// Close releases resources held by the App
func (a *App) Close() {
	a.Logger.Debug().Dur("uptime", time.Since(a.StartupTime)).Msg("App closed")
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetRatiosTool(), handleGetRatios(a.MarketService, logger))
	s.AddTool(createGetGrowthTool(), handleGetGrowth(a.MarketService, logger))
	s.AddTool(createScreenStocksTool(), handleScreenStocks(a.MarketService, logger))
	s.AddTool(createTranscriptSentimentTool(), handleTranscriptSentiment(a.TranscriptService, logger))
}
