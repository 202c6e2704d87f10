// Package utils provides common utility functions for TickerLens.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SafeParseFloat parses a heterogeneous numeric field from an upstream API.
// Returns nil for empty strings, the provider's "not available" sentinels
// ("None", "N/A", "-", "null"), and anything that does not parse to a finite
// number. Callers never see NaN or Inf from this function.
func SafeParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "none", "n/a", "na", "null", "nan", "-":
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatMagnitude formats a large magnitude (market cap, volume) into a
// human-readable abbreviated string: 2.95e12 → "2.95T", 1.2e9 → "1.20B",
// 5.8e6 → "5.80M", smaller values as a grouped integer ("999,999").
// Returns "N/A" for nil.
func FormatMagnitude(v *float64) string {
	if v == nil {
		return "N/A"
	}
	n := *v
	sign := ""
	if n < 0 {
		sign = "-"
		n = math.Abs(n)
	}
	switch {
	case n >= 1e12:
		return fmt.Sprintf("%s%.2fT", sign, n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, n/1e6)
	default:
		return sign + groupThousands(int64(math.Round(n)))
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// NormalizeTicker uppercases and trims an exchange symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// groupThousands formats an integer with comma grouping (groups of 3).
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(groups, ",")
}
