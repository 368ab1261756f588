// Package gemini provides a Gemini-backed sentiment scorer
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultMaxChars = 200_000
)

// generateFunc sends a prompt and returns the model's text
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Client scores text sentiment with a Gemini model
type Client struct {
	client   *genai.Client
	model    string
	maxChars int
	logger   *common.Logger
	generate generateFunc
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxChars caps the transcript text sent to the model
func WithMaxChars(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := newClient(opts...)
	c.client = genaiClient
	c.generate = c.generateJSON
	return c, nil
}

func newClient(opts ...ClientOption) *Client {
	c := &Client{
		model:    DefaultModel,
		maxChars: DefaultMaxChars,
		logger:   common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the scorer in analysis results
func (c *Client) Name() string {
	return "gemini"
}

// Score asks the model for a negative/neutral/positive/compound breakdown
func (c *Client) Score(ctx context.Context, text string) (models.SentimentScore, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.SentimentScore{}, fmt.Errorf("no text to score")
	}
	text = common.TruncateUTF8(text, c.maxChars)

	c.logger.Debug().Str("model", c.model).Int("chars", len(text)).Msg("Scoring sentiment")

	out, err := c.generate(ctx, buildSentimentPrompt(text))
	if err != nil {
		return models.SentimentScore{}, err
	}
	return parseScore(out)
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func buildSentimentPrompt(text string) string {
	return `You are scoring the sentiment of an earnings-call transcript.
Return only a JSON object with these fields:
- "neg": proportion of negative tone, 0 to 1
- "neu": proportion of neutral tone, 0 to 1
- "pos": proportion of positive tone, 0 to 1
- "compound": overall polarity, -1 (very negative) to 1 (very positive)
neg, neu and pos should sum to 1.

Transcript:
` + text
}

// parseScore decodes the model output, tolerating markdown code fences,
// and clamps each field into its valid range.
func parseScore(raw string) (models.SentimentScore, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}

	var score models.SentimentScore
	if err := json.Unmarshal([]byte(s), &score); err != nil {
		return models.SentimentScore{}, fmt.Errorf("failed to parse sentiment response: %w", err)
	}

	score.Negative = clamp(score.Negative, 0, 1)
	score.Neutral = clamp(score.Neutral, 0, 1)
	score.Positive = clamp(score.Positive, 0, 1)
	score.Compound = clamp(score.Compound, -1, 1)
	return score, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

var _ interfaces.SentimentScorer = (*Client)(nil)
