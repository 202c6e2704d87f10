package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/tickerlens/internal/datasource"
	"github.com/seenimoa/tickerlens/internal/llm"
	"github.com/seenimoa/tickerlens/pkg/models"
)

type stubMarket struct {
	configured bool
	stock      *models.StockData
	history    []models.PricePoint
	err        error
}

func (m *stubMarket) Configured() bool { return m.configured }

func (m *stubMarket) FetchStockData(ctx context.Context, ticker string) (*models.StockData, []models.PricePoint, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.stock, m.history, nil
}

type stubNews struct{ articles []models.NewsArticle }

func (n *stubNews) FetchNews(ctx context.Context, companyName, ticker string) []models.NewsArticle {
	return n.articles
}

// stubProvider routes every chat call through fn; the flattened prompt text
// lets tests target individual summary or sentiment calls.
type stubProvider struct {
	fn func(prompt string) (string, error)
}

func (p *stubProvider) Name() string                   { return "stub" }
func (p *stubProvider) Ping(ctx context.Context) error { return nil }

func (p *stubProvider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	content, err := p.fn(b.String())
	if err != nil {
		return nil, err
	}
	return &llm.Response{Content: content, Provider: "stub"}, nil
}

func testArticles(n int, published time.Time) []models.NewsArticle {
	articles := make([]models.NewsArticle, n)
	for i := range articles {
		articles[i] = models.NewsArticle{
			ID:          fmt.Sprintf("T-api-%d-0", i),
			Title:       fmt.Sprintf("Article %d", i+1),
			Source:      "Test Wire",
			URL:         fmt.Sprintf("https://example.com/%d", i+1),
			Content:     fmt.Sprintf("content-%d", i+1),
			PublishedAt: published,
			Sentiment:   models.SentimentUnknown,
		}
	}
	return articles
}

func TestEnrichArticlesFaultIsolation(t *testing.T) {
	articles := testArticles(6, time.Now().UTC())

	provider := &stubProvider{fn: func(prompt string) (string, error) {
		isSentiment := strings.Contains(prompt, "sentiment")
		switch {
		case !isSentiment && strings.Contains(prompt, "Article 3"):
			return "", errors.New("summary backend down")
		case isSentiment && strings.Contains(prompt, "content-5"):
			return "", errors.New("sentiment backend down")
		case isSentiment:
			return "Positive", nil
		default:
			return "A fine summary.", nil
		}
	}}

	s := NewService(&stubMarket{}, nil, provider)
	enriched := s.enrichArticles(context.Background(), "AAPL", articles)

	if len(enriched) != 6 {
		t.Fatalf("got %d articles, want 6", len(enriched))
	}
	for i, a := range enriched {
		want := fmt.Sprintf("Article %d", i+1)
		if a.Title != want {
			t.Fatalf("order broken at %d: got %q, want %q", i, a.Title, want)
		}
	}
	if enriched[2].Summary != summaryFallback {
		t.Errorf("article 3 summary = %q, want fallback", enriched[2].Summary)
	}
	if enriched[2].Sentiment != models.SentimentPositive {
		t.Errorf("article 3 sentiment = %q, want Positive despite summary failure", enriched[2].Sentiment)
	}
	if enriched[4].Sentiment != models.SentimentUnknown {
		t.Errorf("article 5 sentiment = %q, want Unknown", enriched[4].Sentiment)
	}
	if enriched[4].Summary != "A fine summary." {
		t.Errorf("article 5 summary = %q, want success despite sentiment failure", enriched[4].Summary)
	}
	for _, i := range []int{0, 1, 3, 5} {
		if enriched[i].Summary != "A fine summary." || enriched[i].Sentiment != models.SentimentPositive {
			t.Errorf("article %d degraded without a failure: %+v", i+1, enriched[i])
		}
	}
}

func TestEnrichArticlesNoProvider(t *testing.T) {
	s := NewService(&stubMarket{}, nil, nil)
	enriched := s.enrichArticles(context.Background(), "AAPL", testArticles(3, time.Now()))
	for _, a := range enriched {
		if a.Summary != summaryFallback || a.Sentiment != models.SentimentUnknown {
			t.Errorf("article %q not degraded to sentinels: %+v", a.Title, a)
		}
	}
}

func TestFetchInsightsEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			_ = json.NewEncoder(w).Encode(map[string]any{"Global Quote": map[string]string{
				"01. symbol":             "AAPL",
				"05. price":              "170.34",
				"07. latest trading day": "2025-08-29",
				"09. change":             "1.23",
				"10. change percent":     "0.72%",
			}})
		case "OVERVIEW":
			_ = json.NewEncoder(w).Encode(map[string]string{"Symbol": "AAPL", "Name": "Apple Inc."})
		case "TIME_SERIES_DAILY":
			series := make(map[string]datasource.DailyBar, 400)
			start := time.Now().UTC().AddDate(0, 0, -400)
			for i := 0; i < 400; i++ {
				series[start.AddDate(0, 0, i).Format("2006-01-02")] = datasource.DailyBar{Close: "165.00"}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"Time Series (Daily)": series})
		default:
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
	}))
	defer srv.Close()

	av := datasource.NewAlphaVantage("test-key", datasource.WithAlphaVantageBaseURL(srv.URL))
	news := &stubNews{articles: testArticles(2, time.Now().UTC())}
	provider := &stubProvider{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "sentiment") {
			return "Neutral", nil
		}
		if strings.Contains(prompt, "financial analyst") {
			return "Apple had a steady year.", nil
		}
		return "Short summary.", nil
	}}

	var stages []Stage
	s := NewService(av, news, provider)
	resp, err := s.FetchInsightsWithProgress(context.Background(), "aapl", func(st Stage) {
		stages = append(stages, st)
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if len(resp.HistoricalData) != 365 {
		t.Errorf("history length = %d, want 365", len(resp.HistoricalData))
	}
	if resp.StockData.Name != "Apple Inc." {
		t.Errorf("name = %q, want Apple Inc.", resp.StockData.Name)
	}
	if resp.StockData.Price != 170.34 {
		t.Errorf("price = %v, want 170.34", resp.StockData.Price)
	}
	if resp.AISummary != "Apple had a steady year." {
		t.Errorf("summary = %q", resp.AISummary)
	}
	if len(resp.News) != 2 || resp.News[0].Sentiment != models.SentimentNeutral {
		t.Errorf("news not enriched: %+v", resp.News)
	}

	want := []Stage{StageQuote, StageNews, StageEnrich, StageSummary, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage %d = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestFetchInsightsMandatoryFailure(t *testing.T) {
	market := &stubMarket{
		configured: true,
		err:        fmt.Errorf("%w for ZZZZ", datasource.ErrNoQuote),
	}
	s := NewService(market, &stubNews{}, nil)

	resp, err := s.FetchInsights(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error for missing quote")
	}
	if resp != nil {
		t.Fatal("partial data returned alongside an error")
	}
	if !strings.Contains(err.Error(), "ZZZZ") || !strings.Contains(err.Error(), "quote") {
		t.Errorf("error %q must name the ticker and the quote", err.Error())
	}
}

func TestFetchInsightsDemoFallback(t *testing.T) {
	s := NewService(&stubMarket{configured: false}, &stubNews{}, nil)

	resp, err := s.FetchInsights(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("demo ticker must succeed without a credential: %v", err)
	}
	if resp.StockData.Price <= 0 || resp.StockData.Price > 10_000 {
		t.Errorf("synthetic price %v outside sane range", resp.StockData.Price)
	}
	if len(resp.HistoricalData) == 0 {
		t.Error("synthetic history missing")
	}

	if _, err := s.FetchInsights(context.Background(), "ZZZZ"); err == nil {
		t.Fatal("non-demo ticker must fail without a credential")
	} else if !strings.Contains(err.Error(), "unsupported ticker") {
		t.Errorf("error = %q, want an unsupported-ticker message", err.Error())
	}
}

func TestFetchInsightsRateLimitRespecialized(t *testing.T) {
	market := &stubMarket{
		configured: true,
		err:        fmt.Errorf("GLOBAL_QUOTE: %w", datasource.ErrRateLimited),
	}
	s := NewService(market, &stubNews{}, nil)

	_, err := s.FetchInsights(context.Background(), "AAPL")
	if err == nil || !strings.Contains(err.Error(), "rate limiting") {
		t.Fatalf("error = %v, want a rate-limit message", err)
	}
}

func TestNarrativeSummarySentinels(t *testing.T) {
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	recent := testArticles(1, now.AddDate(0, 0, -2))

	t.Run("no inputs skips the call", func(t *testing.T) {
		called := false
		s := NewService(&stubMarket{}, nil, &stubProvider{fn: func(string) (string, error) {
			called = true
			return "x", nil
		}})
		got := s.narrativeSummary(context.Background(), "AAPL", "Apple Inc.", nil, models.YearRange{})
		if got != insufficientDataSummary {
			t.Errorf("summary = %q, want insufficient-data sentinel", got)
		}
		if called {
			t.Error("provider must not be called without grounding inputs")
		}
	})

	t.Run("nil provider", func(t *testing.T) {
		s := NewService(&stubMarket{}, nil, nil)
		got := s.narrativeSummary(context.Background(), "AAPL", "Apple Inc.", recent, models.YearRange{})
		if !strings.HasPrefix(got, summaryFailurePrefix) || !strings.Contains(got, "no language model") {
			t.Errorf("summary = %q", got)
		}
	})

	t.Run("generation failure", func(t *testing.T) {
		s := NewService(&stubMarket{}, nil, &stubProvider{fn: func(string) (string, error) {
			return "", errors.New("model overloaded")
		}})
		got := s.narrativeSummary(context.Background(), "AAPL", "Apple Inc.", recent, models.YearRange{})
		if got != summaryFailurePrefix+"model overloaded" {
			t.Errorf("summary = %q", got)
		}
	})
}

func TestRecentArticlesRefilter(t *testing.T) {
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	articles := []models.NewsArticle{
		{Title: "fresh", PublishedAt: now.AddDate(0, 0, -5)},
		{Title: "stale", PublishedAt: now.AddDate(0, 0, -45)},
		{Title: "today", PublishedAt: now},
	}
	recent := recentArticles(articles, now)
	if len(recent) != 2 {
		t.Fatalf("got %d recent articles, want 2", len(recent))
	}
	for _, a := range recent {
		if a.Title == "stale" {
			t.Error("stale article survived the 30-day re-filter")
		}
	}
}
