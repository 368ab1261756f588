// Package transcript scores the sentiment of earnings-call transcripts.
package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bobmcallan/finscreen/internal/clients/scrape"
	"github.com/bobmcallan/finscreen/internal/common"
	"github.com/bobmcallan/finscreen/internal/interfaces"
	"github.com/bobmcallan/finscreen/internal/models"
)

// ErrNoTranscriptText is returned when a page yields no readable text
var ErrNoTranscriptText = errors.New("no transcript text found")

// maxPDFChars caps extracted PDF text
const maxPDFChars = 50000

// Service implements TranscriptService
type Service struct {
	fetcher interfaces.DocumentFetcher
	scorer  interfaces.SentimentScorer
	logger  *common.Logger
}

// NewService creates a transcript service
func NewService(fetcher interfaces.DocumentFetcher, scorer interfaces.SentimentScorer, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{fetcher: fetcher, scorer: scorer, logger: logger}
}

// Analyze fetches the transcript at url and scores its text. PDFs are read
// page by page; HTML pages contribute their paragraph texts.
func (s *Service) Analyze(ctx context.Context, url string) (*models.TranscriptAnalysis, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("transcript url is required")
	}

	doc, err := s.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}

	var paragraphs []string
	if isPDF(doc) {
		text, err := extractPDFText(doc.Body)
		if err != nil {
			return nil, err
		}
		if text != "" {
			paragraphs = []string{text}
		}
	} else {
		paragraphs, err = scrape.Paragraphs(bytes.NewReader(doc.Body))
		if err != nil {
			return nil, fmt.Errorf("failed to parse transcript page: %w", err)
		}
	}

	text := strings.TrimSpace(strings.Join(paragraphs, " "))
	if text == "" {
		return nil, fmt.Errorf("%w at %s", ErrNoTranscriptText, url)
	}

	score, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s scoring failed: %w", s.scorer.Name(), err)
	}

	s.logger.Info().
		Str("url", url).
		Int("paragraphs", len(paragraphs)).
		Float64("compound", score.Compound).
		Msg("Transcript scored")

	return &models.TranscriptAnalysis{
		URL:        url,
		Paragraphs: len(paragraphs),
		Characters: len(text),
		Score:      score,
		Label:      score.Label(),
		Scorer:     s.scorer.Name(),
	}, nil
}

func isPDF(doc *models.Document) bool {
	if strings.Contains(strings.ToLower(doc.ContentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(doc.Body, []byte("%PDF"))
}

// extractPDFText concatenates the plain text of every page
func extractPDFText(body []byte) (text string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
		if sb.Len() > maxPDFChars {
			break
		}
	}

	return common.TruncateUTF8(strings.TrimSpace(sb.String()), maxPDFChars), nil
}

var _ interfaces.TranscriptService = (*Service)(nil)
