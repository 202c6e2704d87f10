// Package insight orchestrates the per-ticker aggregation pipeline: quote
// and history, news, per-article AI enrichment, year-range extraction, and
// the narrative summary, assembled into one response with graceful
// degradation for every optional input.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/seenimoa/tickerlens/internal/datasource"
	"github.com/seenimoa/tickerlens/internal/llm"
	"github.com/seenimoa/tickerlens/pkg/models"
	"github.com/seenimoa/tickerlens/pkg/utils"
)

// Stage identifies where a request currently is in the pipeline.
type Stage string

const (
	StageIdle    Stage = "idle"
	StageQuote   Stage = "fetching-quote-and-history"
	StageNews    Stage = "fetching-news"
	StageEnrich  Stage = "enriching-articles"
	StageSummary Stage = "generating-summary"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// ProgressFunc receives stage transitions during a request. It is called
// synchronously from the pipeline goroutine.
type ProgressFunc func(Stage)

// MarketData supplies the quote, fundamentals, and daily history for a
// ticker. A single failed mandatory call surfaces as an error; optional
// data degrades inside the implementation.
type MarketData interface {
	Configured() bool
	FetchStockData(ctx context.Context, ticker string) (*models.StockData, []models.PricePoint, error)
}

// NewsSource supplies recent articles for a company. Implementations never
// fail; absence of news is an empty slice.
type NewsSource interface {
	FetchNews(ctx context.Context, companyName, ticker string) []models.NewsArticle
}

// Narrative-summary sentinels substituted when generation is skipped or fails.
const (
	insufficientDataSummary = "Insufficient data to generate an AI summary."
	summaryFailurePrefix    = "AI summary could not be generated: "
)

// Service runs the aggregation pipeline. The LLM provider may be nil, in
// which case all AI fields degrade to their sentinels.
type Service struct {
	market   MarketData
	news     NewsSource
	provider llm.Provider
	chat     *llm.ChatOptions
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithChatOptions sets the options passed to every LLM call.
func WithChatOptions(opts llm.ChatOptions) Option {
	return func(s *Service) { s.chat = &opts }
}

// NewService wires the pipeline's collaborators together. provider may be nil.
func NewService(market MarketData, news NewsSource, provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		market:   market,
		news:     news,
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchInsights runs the full pipeline for one ticker.
func (s *Service) FetchInsights(ctx context.Context, ticker string) (*models.InsightResponse, error) {
	return s.FetchInsightsWithProgress(ctx, ticker, nil)
}

// FetchInsightsWithProgress is FetchInsights with stage reporting, used by
// the WebSocket surface. It is the single error boundary of the pipeline:
// every failure comes back as one human-readable error, never alongside
// partial data.
func (s *Service) FetchInsightsWithProgress(ctx context.Context, ticker string, progress ProgressFunc) (*models.InsightResponse, error) {
	report := func(st Stage) {
		if progress != nil {
			progress(st)
		}
	}

	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		report(StageFailed)
		return nil, errors.New("ticker must not be empty")
	}

	report(StageQuote)
	stock, history, err := s.fetchMarketData(ctx, ticker)
	if err != nil {
		report(StageFailed)
		return nil, humanizeError(ticker, err)
	}

	report(StageNews)
	var articles []models.NewsArticle
	if s.news != nil {
		articles = s.news.FetchNews(ctx, stock.Name, ticker)
	}

	report(StageEnrich)
	articles = s.enrichArticles(ctx, ticker, articles)

	now := s.now()
	recent := recentArticles(articles, now)
	yr := ExtractYearRange(history, now)

	report(StageSummary)
	summary := s.narrativeSummary(ctx, ticker, stock.Name, recent, yr)

	report(StageDone)
	return &models.InsightResponse{
		StockData:      *stock,
		HistoricalData: history,
		News:           articles,
		AISummary:      summary,
		FetchedAt:      now.UTC(),
	}, nil
}

// fetchMarketData routes to the live provider, or to the synthetic demo set
// when no provider credential is configured.
func (s *Service) fetchMarketData(ctx context.Context, ticker string) (*models.StockData, []models.PricePoint, error) {
	if !s.market.Configured() {
		if !datasource.IsDemoTicker(ticker) {
			return nil, nil, fmt.Errorf("unsupported ticker %q: no market data provider is configured and %q is not in the demo set", ticker, ticker)
		}
		log.Printf("no market data credential, serving synthetic demo data for %s", ticker)
		stock, history := datasource.SyntheticStockData(ticker)
		return stock, history, nil
	}
	return s.market.FetchStockData(ctx, ticker)
}

// recentArticles re-filters to the trailing 30 days. The news provider
// applies its own date filter but it is not trusted here.
func recentArticles(articles []models.NewsArticle, now time.Time) []models.NewsArticle {
	cutoff := now.AddDate(0, 0, -30)
	var recent []models.NewsArticle
	for _, a := range articles {
		if a.PublishedAt.After(cutoff) {
			recent = append(recent, a)
		}
	}
	return recent
}

func (s *Service) narrativeSummary(ctx context.Context, ticker, company string, recent []models.NewsArticle, yr models.YearRange) string {
	if len(recent) == 0 && !yr.Complete() {
		return insufficientDataSummary
	}
	if s.provider == nil {
		return summaryFailurePrefix + "no language model configured"
	}
	resp, err := s.provider.Chat(ctx, narrativePrompt(ticker, company, recent, yr), s.chat)
	if err != nil {
		log.Printf("narrative summary failed for %s: %v", ticker, err)
		return summaryFailurePrefix + err.Error()
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return summaryFailurePrefix + "empty model response"
	}
	return content
}

// humanizeError respecializes provider rate-limit and bad-symbol failures
// into messages suitable for direct display; everything else already carries
// ticker context from the datasource layer.
func humanizeError(ticker string, err error) error {
	switch {
	case errors.Is(err, datasource.ErrRateLimited):
		return errors.New("the market data provider is rate limiting requests, wait a minute and retry")
	case errors.Is(err, datasource.ErrBadSymbol):
		return fmt.Errorf("%q was not recognized: the symbol may be invalid or require a premium data plan", ticker)
	default:
		return err
	}
}
