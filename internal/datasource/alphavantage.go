package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerlens/pkg/models"
	"github.com/seenimoa/tickerlens/pkg/utils"
)

// AlphaVantage implements quote, company overview, and daily time-series
// fetching against the Alpha Vantage HTTP API.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	cache   *Cache
	limiter *RateLimiter
}

// AlphaVantageOption configures the client.
type AlphaVantageOption func(*AlphaVantage)

// WithAlphaVantageBaseURL sets a custom base URL (used by tests).
func WithAlphaVantageBaseURL(u string) AlphaVantageOption {
	return func(av *AlphaVantage) { av.baseURL = strings.TrimRight(u, "/") }
}

// NewAlphaVantage creates an Alpha Vantage client. An empty apiKey yields an
// unconfigured client; that is a valid state (the insight pipeline falls back
// to synthetic demo data), not a constructor error.
func NewAlphaVantage(apiKey string, opts ...AlphaVantageOption) *AlphaVantage {
	av := &AlphaVantage{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co",
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(5, time.Minute), // free tier: 5 req/min
	}
	for _, opt := range opts {
		opt(av)
	}
	return av
}

// Name returns the data source name.
func (av *AlphaVantage) Name() string { return "Alpha Vantage" }

// Configured reports whether an API key is present.
func (av *AlphaVantage) Configured() bool { return av.apiKey != "" }

// --- Alpha Vantage payload types ---

// avEnvelope captures the prose-only error surface Alpha Vantage uses in
// place of structured error codes: a "Note" for rate limiting, an
// "Information" notice for premium-only endpoints, and an "Error Message"
// for invalid calls or unknown symbols.
type avEnvelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

type avQuoteResponse struct {
	GlobalQuote avGlobalQuote `json:"Global Quote"`
	avEnvelope
}

type avGlobalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PrevClose        string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

type avOverview struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	MarketCap     string `json:"MarketCapitalization"`
	PERatio       string `json:"PERatio"`
	EPS           string `json:"EPS"`
	WeekHigh52    string `json:"52WeekHigh"`
	WeekLow52     string `json:"52WeekLow"`
	avEnvelope
}

type avDailyResponse struct {
	Series map[string]DailyBar `json:"Time Series (Daily)"`
	avEnvelope
}

// checkEnvelope reclassifies the provider's prose error payloads into typed
// sentinel errors. The field that is present decides the class; substring
// matching is only the last resort for notes that arrive in the wrong field.
func (e avEnvelope) checkEnvelope() error {
	switch {
	case e.Note != "":
		return fmt.Errorf("%w: %s", ErrRateLimited, e.Note)
	case e.ErrorMessage != "":
		return fmt.Errorf("%w: %s", ErrBadSymbol, e.ErrorMessage)
	case e.Information != "":
		if strings.Contains(strings.ToLower(e.Information), "rate limit") {
			return fmt.Errorf("%w: %s", ErrRateLimited, e.Information)
		}
		return fmt.Errorf("%w: %s", ErrBadSymbol, e.Information)
	}
	return nil
}

// --- Individual endpoint calls ---

// Quote fetches the GLOBAL_QUOTE payload for a ticker.
func (av *AlphaVantage) Quote(ctx context.Context, ticker string) (*avGlobalQuote, error) {
	cacheKey := "quote:" + ticker
	if cached, ok := av.cache.Get(cacheKey); ok {
		return cached.(*avGlobalQuote), nil
	}

	var resp avQuoteResponse
	if err := av.call(ctx, "GLOBAL_QUOTE", ticker, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.checkEnvelope(); err != nil {
		return nil, err
	}
	if resp.GlobalQuote.Symbol == "" || resp.GlobalQuote.Price == "" {
		return nil, ErrNoQuote
	}

	av.cache.Set(cacheKey, &resp.GlobalQuote)
	return &resp.GlobalQuote, nil
}

// Overview fetches the company OVERVIEW payload for a ticker.
func (av *AlphaVantage) Overview(ctx context.Context, ticker string) (*avOverview, error) {
	cacheKey := "overview:" + ticker
	if cached, ok := av.cache.Get(cacheKey); ok {
		return cached.(*avOverview), nil
	}

	var resp avOverview
	if err := av.call(ctx, "OVERVIEW", ticker, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.checkEnvelope(); err != nil {
		return nil, err
	}
	if resp.Symbol == "" && resp.Name == "" {
		return nil, fmt.Errorf("empty overview for %s", ticker)
	}

	av.cache.SetWithTTL(cacheKey, &resp, 1*time.Hour)
	return &resp, nil
}

// DailySeries fetches the trailing daily OHLCV series for a ticker.
func (av *AlphaVantage) DailySeries(ctx context.Context, ticker string) (map[string]DailyBar, error) {
	cacheKey := "daily:" + ticker
	if cached, ok := av.cache.Get(cacheKey); ok {
		return cached.(map[string]DailyBar), nil
	}

	var resp avDailyResponse
	if err := av.call(ctx, "TIME_SERIES_DAILY", ticker, map[string]string{"outputsize": "full"}, &resp); err != nil {
		return nil, err
	}
	if err := resp.checkEnvelope(); err != nil {
		return nil, err
	}
	if len(resp.Series) == 0 {
		return nil, ErrNoHistory
	}

	av.cache.SetWithTTL(cacheKey, resp.Series, 15*time.Minute)
	return resp.Series, nil
}

// call performs one Alpha Vantage API request and decodes the JSON body.
func (av *AlphaVantage) call(ctx context.Context, function, ticker string, params map[string]string, out any) error {
	if !av.Configured() {
		return ErrNotConfigured
	}
	if err := av.limiter.Wait(ctx); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", ticker)
	q.Set("apikey", av.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}

	body, _, err := doGet(ctx, av.baseURL+"/query?"+q.Encode(), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return fmt.Errorf("alphavantage %s %s: %w", function, ticker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse alphavantage %s: %w", function, err)
	}
	return nil
}

// --- Aggregated fetch ---

// FetchStockData issues the three fundamentals calls (quote, overview, daily
// series) concurrently, captures each outcome independently, and assembles
// the stock view plus the historical series. The quote and daily series are
// mandatory; the overview is optional and its absence only degrades the
// affected fields to "unavailable" sentinels.
func (av *AlphaVantage) FetchStockData(ctx context.Context, ticker string) (*models.StockData, []models.PricePoint, error) {
	var (
		mu       sync.Mutex
		quote    *avGlobalQuote
		overview *avOverview
		series   map[string]DailyBar
		quoteErr error
		dailyErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, err := av.Quote(gctx, ticker)
		mu.Lock()
		quote, quoteErr = q, err
		mu.Unlock()
		return nil // captured, never cancels siblings
	})
	g.Go(func() error {
		o, err := av.Overview(gctx, ticker)
		if err == nil {
			mu.Lock()
			overview = o
			mu.Unlock()
		}
		return nil // overview is optional
	})
	g.Go(func() error {
		s, err := av.DailySeries(gctx, ticker)
		mu.Lock()
		series, dailyErr = s, err
		mu.Unlock()
		return nil
	})

	_ = g.Wait() // closures always return nil

	if quoteErr != nil {
		return nil, nil, quoteError(ticker, quoteErr)
	}
	if quote == nil {
		return nil, nil, fmt.Errorf("%w for %s", ErrNoQuote, ticker)
	}
	if dailyErr != nil {
		return nil, nil, historyError(ticker, dailyErr)
	}

	history := BuildDailySeries(series)
	stock := assembleStockData(ticker, quote, overview)
	return stock, history, nil
}

// quoteError specializes a failed mandatory quote fetch. Recognized upstream
// conditions (rate limit, premium/invalid symbol) keep their rewritten
// message; everything else becomes a "no current quote data" error naming
// the ticker.
func quoteError(ticker string, err error) error {
	switch {
	case isRecognized(err):
		return fmt.Errorf("%s: %w", ticker, err)
	case errors.Is(err, ErrNoQuote):
		return fmt.Errorf("%w for %s", ErrNoQuote, ticker)
	default:
		return fmt.Errorf("%w for %s: %v", ErrNoQuote, ticker, err)
	}
}

// historyError does the same for the mandatory daily series.
func historyError(ticker string, err error) error {
	switch {
	case isRecognized(err):
		return fmt.Errorf("%s: %w", ticker, err)
	case errors.Is(err, ErrNoHistory):
		return fmt.Errorf("%w for %s", ErrNoHistory, ticker)
	default:
		return fmt.Errorf("%w for %s: %v", ErrNoHistory, ticker, err)
	}
}

func isRecognized(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrBadSymbol)
}

// assembleStockData builds the stock view from the quote and (optional)
// overview payloads, normalizing every numeric field.
func assembleStockData(ticker string, q *avGlobalQuote, o *avOverview) *models.StockData {
	stock := &models.StockData{
		Ticker:      ticker,
		Name:        fmt.Sprintf("%s (name unavailable)", ticker),
		MarketCap:   "N/A",
		LastUpdated: time.Now().UTC(),
	}

	if v := utils.SafeParseFloat(q.Price); v != nil {
		stock.Price = *v
	}
	if v := utils.SafeParseFloat(q.Change); v != nil {
		stock.Change = *v
	}
	if v := utils.SafeParseFloat(strings.TrimSuffix(q.ChangePercent, "%")); v != nil {
		stock.ChangePct = *v
	}
	stock.PrevClose = utils.SafeParseFloat(q.PrevClose)
	stock.Open = utils.SafeParseFloat(q.Open)
	stock.DayHigh = utils.SafeParseFloat(q.High)
	stock.DayLow = utils.SafeParseFloat(q.Low)
	stock.Volume = utils.FormatMagnitude(utils.SafeParseFloat(q.Volume))

	if t, err := time.Parse("2006-01-02", q.LatestTradingDay); err == nil {
		stock.LastUpdated = t
	}

	if o != nil {
		if o.Name != "" {
			stock.Name = o.Name
		}
		stock.MarketCap = utils.FormatMagnitude(utils.SafeParseFloat(o.MarketCap))
		stock.PERatio = utils.SafeParseFloat(o.PERatio)
		stock.EPS = utils.SafeParseFloat(o.EPS)
		stock.WeekHigh52 = utils.SafeParseFloat(o.WeekHigh52)
		stock.WeekLow52 = utils.SafeParseFloat(o.WeekLow52)
	}

	return stock
}
