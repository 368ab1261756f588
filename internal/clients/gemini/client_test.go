package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		compound float64
		pos      float64
		wantErr  bool
	}{
		{"plain", `{"neg":0.05,"neu":0.7,"pos":0.25,"compound":0.82}`, 0.82, 0.25, false},
		{"fenced", "```json\n{\"neg\":0.1,\"neu\":0.8,\"pos\":0.1,\"compound\":0.0}\n```", 0, 0.1, false},
		{"prose around", `Here you go: {"neg":0,"neu":1,"pos":0,"compound":-0.3} done`, -0.3, 0, false},
		{"clamped", `{"neg":0,"neu":0,"pos":1.4,"compound":3}`, 1, 1, false},
		{"garbage", `not json`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.compound, got.Compound, 1e-9)
			assert.InDelta(t, tt.pos, got.Positive, 1e-9)
		})
	}
}

func TestScore_TruncatesAndPrompts(t *testing.T) {
	c := newClient(WithMaxChars(10))
	var prompt string
	c.generate = func(ctx context.Context, p string) (string, error) {
		prompt = p
		return `{"neg":0,"neu":0.5,"pos":0.5,"compound":0.6}`, nil
	}

	score, err := c.Score(context.Background(), "  revenue grew strongly this quarter  ")
	require.NoError(t, err)

	assert.Equal(t, "positive", score.Label())
	assert.True(t, strings.HasSuffix(prompt, "revenue gr"))
	assert.Equal(t, "gemini", c.Name())
}

func TestScore_TruncatesOnCharacterBoundary(t *testing.T) {
	c := newClient(WithMaxChars(7))
	var prompt string
	c.generate = func(ctx context.Context, p string) (string, error) {
		prompt = p
		return `{"neg":0,"neu":1,"pos":0,"compound":0}`, nil
	}

	// "₹" is three bytes; a seven byte cut lands inside the third one
	_, err := c.Score(context.Background(), "₹₹₹ crore")
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(prompt))
	assert.True(t, strings.HasSuffix(prompt, "₹₹"))
}

func TestScore_Errors(t *testing.T) {
	c := newClient()
	c.generate = func(ctx context.Context, p string) (string, error) {
		return "", errors.New("quota exceeded")
	}

	_, err := c.Score(context.Background(), "")
	assert.Error(t, err)

	_, err = c.Score(context.Background(), "some text")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}
