package models

import (
	"strings"
	"time"
)

// Sentiment is the coarse tone classification of an article toward the
// subject company.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentUnknown  Sentiment = "Unknown"
)

// ParseSentiment maps free-form model output onto the enumerated label set.
// Anything unrecognized becomes SentimentUnknown.
func ParseSentiment(s string) Sentiment {
	switch {
	case containsFold(s, "positive"):
		return SentimentPositive
	case containsFold(s, "negative"):
		return SentimentNegative
	case containsFold(s, "neutral"):
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

// NewsArticle is one surfaced news item for a ticker.
type NewsArticle struct {
	ID          string    `json:"id"`      // unique within a response
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Content     string    `json:"content"` // AI input, capped; independent of display
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Summary     string    `json:"summary"`   // AI-generated, sentinel on failure
	Sentiment   Sentiment `json:"sentiment"` // Unknown until analysis completes
}

// MarketArticle is a general market-news item from the RSS feeds,
// independent of the per-ticker insight pipeline.
type MarketArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
