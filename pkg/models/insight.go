package models

import "time"

// InsightResponse is the aggregated result for one ticker submission.
// It is constructed fresh on every request and never mutated afterwards.
type InsightResponse struct {
	StockData      StockData     `json:"stock_data"`
	HistoricalData []PricePoint  `json:"historical_data"`
	News           []NewsArticle `json:"news"`
	AISummary      string        `json:"ai_summary,omitempty"`
	FetchedAt      time.Time     `json:"fetched_at"`
}
