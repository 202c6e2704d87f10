// Package models defines the core data structures used throughout TickerLens.
package models

import "time"

// StockData is the quote + fundamentals view for a single ticker.
// Every numeric pointer field is either a valid finite number or nil
// ("unavailable"); NaN is never stored here.
type StockData struct {
	Ticker      string     `json:"ticker"`       // e.g., "AAPL"
	Name        string     `json:"name"`         // company name, or a placeholder containing the ticker
	Price       float64    `json:"price"`        // last traded price
	Change      float64    `json:"change"`       // absolute change vs previous close
	ChangePct   float64    `json:"change_pct"`   // percent change vs previous close
	MarketCap   string     `json:"market_cap"`   // formatted, e.g. "2.95T" or "N/A"
	Volume      string     `json:"volume"`       // formatted, e.g. "58.91M" or "N/A"
	PERatio     *float64   `json:"pe_ratio,omitempty"`
	EPS         *float64   `json:"eps,omitempty"`
	WeekHigh52  *float64   `json:"week_high_52,omitempty"`
	WeekLow52   *float64   `json:"week_low_52,omitempty"`
	PrevClose   *float64   `json:"prev_close,omitempty"`
	Open        *float64   `json:"open,omitempty"`
	DayHigh     *float64   `json:"day_high,omitempty"`
	DayLow      *float64   `json:"day_low,omitempty"`
	LastUpdated time.Time  `json:"last_updated"` // source timestamp, or fetch time if unparseable
}

// PricePoint is one daily bar of the historical series.
// Date is an ISO calendar date ("2006-01-02"); sequences of PricePoints are
// strictly ascending by date with no duplicates.
type PricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// YearRange holds the numeric grounding for the narrative summary,
// derived from the historical series. Every field is optional.
type YearRange struct {
	YearStartPrice *float64 `json:"year_start_price,omitempty"`
	YearEndPrice   *float64 `json:"year_end_price,omitempty"`
	High52Week     *float64 `json:"high_52_week,omitempty"`
	Low52Week      *float64 `json:"low_52_week,omitempty"`
}

// Complete reports whether all four range values are present.
func (yr YearRange) Complete() bool {
	return yr.YearStartPrice != nil && yr.YearEndPrice != nil &&
		yr.High52Week != nil && yr.Low52Week != nil
}
