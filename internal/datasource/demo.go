package datasource

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/seenimoa/tickerlens/pkg/models"
	"github.com/seenimoa/tickerlens/pkg/utils"
)

// demoCompanies is the hardcoded demo set: tickers the service can serve
// with synthetic data when no market-data credential is configured. The
// table is read-only after init.
var demoCompanies = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"AMZN":  "Amazon.com, Inc.",
	"TSLA":  "Tesla, Inc.",
	"NVDA":  "NVIDIA Corporation",
}

// demoBasePrices anchor the synthetic random walk per ticker.
var demoBasePrices = map[string]float64{
	"AAPL":  180,
	"MSFT":  420,
	"GOOGL": 150,
	"AMZN":  185,
	"TSLA":  250,
	"NVDA":  140,
}

// IsDemoTicker reports whether a ticker is in the demo set.
func IsDemoTicker(ticker string) bool {
	_, ok := demoCompanies[ticker]
	return ok
}

// DemoCompanyName returns the demo company name for a ticker, or "".
func DemoCompanyName(ticker string) string {
	return demoCompanies[ticker]
}

// SyntheticStockData builds a placeholder quote and a year of synthetic
// daily history for a demo ticker. The data is randomized and clearly
// labeled as not real; it exists so the rest of the pipeline can be
// exercised without provider credentials.
func SyntheticStockData(ticker string) (*models.StockData, []models.PricePoint) {
	base, ok := demoBasePrices[ticker]
	if !ok {
		base = 100
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	history := syntheticHistory(base, rng)

	last := history[len(history)-1]
	prev := history[len(history)-2]
	change := last.Close - prev.Close
	changePct := 0.0
	if prev.Close != 0 {
		changePct = change / prev.Close * 100
	}

	marketCap := last.Close * float64(1_000_000_000+rng.Intn(15_000_000_000))
	volume := float64(20_000_000 + rng.Intn(80_000_000))
	pe := 15 + rng.Float64()*25
	eps := last.Close / pe

	high52, low52 := last.Close, last.Close
	for _, p := range history {
		high52 = math.Max(high52, p.Close)
		low52 = math.Min(low52, p.Close)
	}

	stock := &models.StockData{
		Ticker:      ticker,
		Name:        fmt.Sprintf("%s (demo data)", demoCompanies[ticker]),
		Price:       round2(last.Close),
		Change:      round2(change),
		ChangePct:   round2(changePct),
		MarketCap:   utils.FormatMagnitude(&marketCap),
		Volume:      utils.FormatMagnitude(&volume),
		PERatio:     ptr(round2(pe)),
		EPS:         ptr(round2(eps)),
		WeekHigh52:  ptr(round2(high52)),
		WeekLow52:   ptr(round2(low52)),
		PrevClose:   ptr(round2(prev.Close)),
		Open:        ptr(round2(last.Open)),
		DayHigh:     ptr(round2(last.High)),
		DayLow:      ptr(round2(last.Low)),
		LastUpdated: time.Now().UTC(),
	}
	return stock, history
}

// syntheticHistory generates a 365-point bounded random walk ending today.
func syntheticHistory(base float64, rng *rand.Rand) []models.PricePoint {
	points := make([]models.PricePoint, 0, maxHistoryPoints)
	price := base * (0.75 + rng.Float64()*0.2)
	day := time.Now().UTC().AddDate(0, 0, -maxHistoryPoints)

	for i := 0; i < maxHistoryPoints; i++ {
		drift := (rng.Float64() - 0.48) * base * 0.02
		price = math.Max(base*0.3, price+drift)

		open := price * (1 + (rng.Float64()-0.5)*0.01)
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)

		points = append(points, models.PricePoint{
			Date:   day.AddDate(0, 0, i).Format("2006-01-02"),
			Close:  round2(price),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Volume: int64(10_000_000 + rng.Intn(90_000_000)),
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }
