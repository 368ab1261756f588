package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
)

// Vader scores text offline with the VADER lexicon
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader builds a lexicon scorer; it needs no API key
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Name() string { return ProviderVader }

// Score returns the polarity breakdown of the whole text
func (v *Vader) Score(ctx context.Context, text string) (models.SentimentScore, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.SentimentScore{}, fmt.Errorf("no text to score")
	}
	if err := ctx.Err(); err != nil {
		return models.SentimentScore{}, err
	}

	s := v.analyzer.PolarityScores(text)
	return models.SentimentScore{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}, nil
}

var _ interfaces.SentimentScorer = (*Vader)(nil)
