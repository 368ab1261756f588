package market

import (
	"context"
	"strings"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/metrics"
	"github.com/bobmcallan/finscreen/internal/models"
	"github.com/bobmcallan/finscreen/internal/sources"
)

// RatiosUnavailable is the info text of an unavailable ratio resolution
const RatiosUnavailable = "Ratios not available for this ticker"

// RatioResolver tries metric sources in priority order and returns the
// first one that finds anything. Results are never merged across sources.
type RatioResolver struct {
	chain   []sources.Source
	page    sources.PageSource
	logger  *common.Logger
	metrics *metrics.Manager
}

// NewRatioResolver creates a resolver over chain. page is only consulted
// when a fallback URL is supplied and may be nil.
func NewRatioResolver(chain []sources.Source, page sources.PageSource, logger *common.Logger, m *metrics.Manager) *RatioResolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &RatioResolver{chain: chain, page: page, logger: logger, metrics: m}
}

// Resolve returns the first source's metrics, or the unavailable sentinel
// when every source comes up empty.
func (r *RatioResolver) Resolve(ctx context.Context, ticker, fallbackURL string) models.Resolution {
	for _, src := range r.sourcesFor(fallbackURL) {
		out := sources.SafeFetch(ctx, src, ticker)
		if out.OK() {
			r.metrics.Resolution("ratios", string(models.ResolutionAvailable))
			r.logger.Debug().Str("ticker", ticker).Str("source", src.Name()).Msg("Ratios resolved")
			return models.Resolved(src.Name(), out.Metrics)
		}
	}

	r.metrics.Resolution("ratios", string(models.ResolutionUnavailable))
	r.logger.Info().Str("ticker", ticker).Msg("Ratios not available")
	return models.UnavailableResolution(RatiosUnavailable)
}

func (r *RatioResolver) sourcesFor(fallbackURL string) []sources.Source {
	fallbackURL = strings.TrimSpace(fallbackURL)
	if fallbackURL == "" || r.page == nil {
		return r.chain
	}
	chain := make([]sources.Source, 0, len(r.chain)+1)
	chain = append(chain, r.chain...)
	return append(chain, sources.Bind(r.page, fallbackURL))
}
