package datasource

import (
	"log"
	"sort"
	"time"

	"github.com/seenimoa/tickerlens/pkg/models"
	"github.com/seenimoa/tickerlens/pkg/utils"
)

// maxHistoryPoints caps the historical series at the most recent trading year.
const maxHistoryPoints = 365

// DailyBar is one raw OHLCV entry of the provider's daily time series.
// All fields arrive as strings and are validated during series building.
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// BuildDailySeries converts a raw date → OHLCV mapping into an ascending,
// deduplicated, date-validated sequence of price points, capped at the most
// recent maxHistoryPoints entries. Individually malformed entries (bad date,
// non-finite close) are dropped rather than failing the batch. An empty
// result is logged but is not an error; presentation handles empty history.
func BuildDailySeries(raw map[string]DailyBar) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(raw))
	for date, bar := range raw {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		closePrice := utils.SafeParseFloat(bar.Close)
		if closePrice == nil {
			continue
		}

		p := models.PricePoint{
			Date:  date,
			Close: *closePrice,
		}
		if v := utils.SafeParseFloat(bar.Open); v != nil {
			p.Open = *v
		}
		if v := utils.SafeParseFloat(bar.High); v != nil {
			p.High = *v
		}
		if v := utils.SafeParseFloat(bar.Low); v != nil {
			p.Low = *v
		}
		if v := utils.SafeParseFloat(bar.Volume); v != nil {
			p.Volume = int64(*v)
		}
		points = append(points, p)
	}

	// Map keys are unique, so dates cannot repeat; sorting by the already
	// validated ISO dates gives chronological order.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	if len(points) > maxHistoryPoints {
		points = points[len(points)-maxHistoryPoints:]
	}
	if len(points) == 0 && len(raw) > 0 {
		log.Printf("daily series: all %d raw entries were malformed, passing through empty history", len(raw))
	}
	return points
}
