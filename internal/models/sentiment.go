package models

// SentimentScore is a polarity breakdown of a text
type SentimentScore struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Label classifies the compound score using the conventional ±0.05 cut-offs
func (s SentimentScore) Label() string {
	switch {
	case s.Compound >= 0.05:
		return "positive"
	case s.Compound <= -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

// TranscriptAnalysis is the sentiment of an earnings-call transcript
type TranscriptAnalysis struct {
	URL        string         `json:"url"`
	Paragraphs int            `json:"paragraphs"`
	Characters int            `json:"characters"`
	Score      SentimentScore `json:"score"`
	Label      string         `json:"label"`
	Scorer     string         `json:"scorer"`
}
