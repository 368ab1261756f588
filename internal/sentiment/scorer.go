// Package sentiment selects the transcript sentiment scorer from config.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/finscreen/internal/clients/gemini"
	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
)

// ErrNoProvider is returned by the disabled scorer
var ErrNoProvider = errors.New("sentiment scoring is disabled")

// Provider names accepted in [sentiment].provider
const (
	ProviderGemini = "gemini"
	ProviderVader  = "vader"
	ProviderNone   = "none"
)

// NewScorer returns the scorer named by cfg.Sentiment.Provider. An empty
// provider means gemini.
func NewScorer(ctx context.Context, cfg *common.Config, logger *common.Logger) (interfaces.SentimentScorer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Sentiment.Provider))
	switch provider {
	case "", ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.Clients.Gemini.APIKey,
			gemini.WithModel(cfg.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderVader:
		return NewVader(), nil
	case ProviderNone, "disabled":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.Sentiment.Provider)
	}
}

// Disabled is a scorer that always fails with ErrNoProvider
type Disabled struct{}

func (Disabled) Name() string { return ProviderNone }

func (Disabled) Score(ctx context.Context, text string) (models.SentimentScore, error) {
	return models.SentimentScore{}, ErrNoProvider
}

var _ interfaces.SentimentScorer = Disabled{}
