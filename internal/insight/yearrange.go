package insight

import (
	"time"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// ExtractYearRange derives the numeric grounding for the narrative summary
// from an ascending daily series. Year-start is the close of the latest
// point dated on-or-before one year ago, falling back to the earliest point
// when the whole series is younger than a year. The 52-week high/low cover
// the trailing 365 days, falling back to the whole series when no point is
// that recent (stale data keeps its label; see DESIGN.md).
func ExtractYearRange(series []models.PricePoint, now time.Time) models.YearRange {
	var yr models.YearRange
	if len(series) == 0 {
		return yr
	}
	cutoff := now.AddDate(0, 0, -365).Format("2006-01-02")

	start := series[0].Close
	for _, p := range series {
		if p.Date > cutoff {
			break
		}
		start = p.Close
	}
	end := series[len(series)-1].Close
	yr.YearStartPrice = &start
	yr.YearEndPrice = &end

	var high, low float64
	inWindow := 0
	for _, p := range series {
		if p.Date <= cutoff {
			continue
		}
		if inWindow == 0 {
			high, low = p.Close, p.Close
		} else {
			if p.Close > high {
				high = p.Close
			}
			if p.Close < low {
				low = p.Close
			}
		}
		inWindow++
	}
	if inWindow == 0 {
		high, low = series[0].Close, series[0].Close
		for _, p := range series[1:] {
			if p.Close > high {
				high = p.Close
			}
			if p.Close < low {
				low = p.Close
			}
		}
	}
	yr.High52Week = &high
	yr.Low52Week = &low
	return yr
}
