package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/tickerlens/pkg/models"
)

const (
	// newsWindowDays is the trailing window articles are searched in.
	newsWindowDays = 30
	// newsFetchSize over-fetches so incomplete articles can be filtered out.
	newsFetchSize = 15
	// newsDisplayLimit caps the surviving articles per response.
	newsDisplayLimit = 6
	// newsContentCap bounds article content used as AI input, which in turn
	// bounds downstream prompt size.
	newsContentCap = 20000
	// removedTitle is the sentinel NewsAPI uses for retracted articles.
	removedTitle = "[Removed]"
	// placeholderImage is used when an article carries no image.
	placeholderImage = "https://placehold.co/600x400?text=News"
)

// NewsAPI fetches recent articles mentioning a company from a NewsAPI-style
// "search everything" endpoint. Absence of a credential, provider errors,
// and non-ok statuses all degrade to a static fallback set; news absence
// never aborts an insight request.
type NewsAPI struct {
	apiKey  string
	baseURL string
	limiter *RateLimiter
}

// NewsAPIOption configures the client.
type NewsAPIOption func(*NewsAPI)

// WithNewsAPIBaseURL sets a custom base URL (used by tests).
func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(n *NewsAPI) { n.baseURL = strings.TrimRight(u, "/") }
}

// NewNewsAPI creates a news client. An empty apiKey is valid and selects the
// fallback path.
func NewNewsAPI(apiKey string, opts ...NewsAPIOption) *NewsAPI {
	n := &NewsAPI{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org",
		limiter: NewRateLimiter(2, time.Second),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

// Configured reports whether an API key is present.
func (n *NewsAPI) Configured() bool { return n.apiKey != "" }

// --- NewsAPI payload types ---

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// FetchNews returns up to newsDisplayLimit articles mentioning the company
// name or ticker within the trailing window. It never fails: every error
// path falls back to the static set for known demo tickers (empty list
// otherwise).
func (n *NewsAPI) FetchNews(ctx context.Context, companyName, ticker string) []models.NewsArticle {
	if !n.Configured() {
		return fallbackArticles(ticker)
	}

	articles, err := n.search(ctx, companyName, ticker)
	if err != nil {
		log.Printf("news fetch for %s failed, using fallback: %v", ticker, err)
		return fallbackArticles(ticker)
	}
	return articles
}

func (n *NewsAPI) search(ctx context.Context, companyName, ticker string) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%q OR %s", companyName, ticker))
	q.Set("from", time.Now().AddDate(0, 0, -newsWindowDays).Format("2006-01-02"))
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprintf("%d", newsFetchSize))

	body, _, err := doGet(ctx, n.baseURL+"/v2/everything?"+q.Encode(), map[string]string{
		"X-Api-Key": n.apiKey,
		"Accept":    "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi everything: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse newsapi response: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s", resp.Status, resp.Message)
	}

	return mapArticles(ticker, resp.Articles), nil
}

// mapArticles filters removed/incomplete articles and maps the survivors
// (capped at newsDisplayLimit) into news records with synthesized ids.
func mapArticles(ticker string, raw []newsAPIArticle) []models.NewsArticle {
	articles := make([]models.NewsArticle, 0, newsDisplayLimit)
	for i, a := range raw {
		if len(articles) >= newsDisplayLimit {
			break
		}
		if a.Title == "" || a.Title == removedTitle || a.URL == "" {
			continue
		}
		content := a.Content
		if content == "" {
			content = a.Description
		}
		if content == "" {
			continue
		}
		if len(content) > newsContentCap {
			content = content[:newsContentCap]
		}

		published := time.Now().UTC()
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			published = t
		}

		sourceID := a.Source.ID
		if sourceID == "" {
			sourceID = "api"
		}

		image := a.URLToImage
		if image == "" {
			image = placeholderImage
		}

		articles = append(articles, models.NewsArticle{
			ID:          fmt.Sprintf("%s-%s-%d-%d", ticker, sourceID, i, published.Unix()),
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			Content:     content,
			PublishedAt: published,
			ImageURL:    image,
			Summary:     "",
			Sentiment:   models.SentimentUnknown,
		})
	}
	return articles
}

// fallbackArticles returns the static mock set for known demo tickers. This
// is the deliberate degrade-gracefully path, not an error.
func fallbackArticles(ticker string) []models.NewsArticle {
	name, ok := demoCompanies[ticker]
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	stubs := []struct {
		title   string
		content string
		daysAgo int
	}{
		{
			title:   fmt.Sprintf("%s posts quarterly results ahead of analyst expectations", name),
			content: fmt.Sprintf("%s reported quarterly revenue and earnings ahead of consensus estimates, driven by continued demand across its core product lines.", name),
			daysAgo: 2,
		},
		{
			title:   fmt.Sprintf("Analysts weigh in on %s's growth outlook", name),
			content: fmt.Sprintf("Several analysts revisited their price targets for %s (%s) this week, citing shifting market conditions and the company's latest product roadmap.", name, ticker),
			daysAgo: 5,
		},
		{
			title:   fmt.Sprintf("%s expands into new markets", name),
			content: fmt.Sprintf("%s announced an expansion of its operations, a move the company says positions it for long-term growth.", name),
			daysAgo: 9,
		},
	}

	articles := make([]models.NewsArticle, 0, len(stubs))
	for i, s := range stubs {
		published := now.AddDate(0, 0, -s.daysAgo)
		articles = append(articles, models.NewsArticle{
			ID:          fmt.Sprintf("%s-demo-%d-%d", ticker, i, published.Unix()),
			Title:       s.title,
			Source:      "TickerLens Demo Wire",
			URL:         fmt.Sprintf("https://example.com/news/%s/%d", strings.ToLower(ticker), i),
			Content:     s.content,
			PublishedAt: published,
			ImageURL:    placeholderImage,
			Summary:     "",
			Sentiment:   models.SentimentUnknown,
		})
	}
	return articles
}
