package datasource

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// FeedSource is one financial news RSS feed.
type FeedSource struct {
	Name   string
	RSSURL string
}

// DefaultFeedSources lists the configured market-news RSS feeds.
var DefaultFeedSources = []FeedSource{
	{
		Name:   "Yahoo Finance",
		RSSURL: "https://finance.yahoo.com/news/rssindex",
	},
	{
		Name:   "CNBC Markets",
		RSSURL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258",
	},
	{
		Name:   "MarketWatch Top Stories",
		RSSURL: "https://feeds.content.dowjones.io/public/rss/mw_topstories",
	},
	{
		Name:   "Investing.com Stock News",
		RSSURL: "https://www.investing.com/rss/news_25.rss",
	},
}

// MarketNews fetches general market headlines from RSS feeds. It backs the
// dashboard's market-news panel and is independent of the per-ticker insight
// pipeline.
type MarketNews struct {
	sources []FeedSource
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewMarketNews creates a market-news source with the default feeds.
func NewMarketNews() *MarketNews {
	return NewMarketNewsWithSources(DefaultFeedSources)
}

// NewMarketNewsWithSources creates a market-news source with custom feeds.
func NewMarketNewsWithSources(sources []FeedSource) *MarketNews {
	return &MarketNews{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (m *MarketNews) Name() string { return "Market News Feeds" }

// GetMarketNews returns recent market headlines from all configured feeds.
// Failed feeds are skipped; only a total miss across every source surfaces
// as an empty list.
func (m *MarketNews) GetMarketNews(ctx context.Context, limit int) ([]models.MarketArticle, error) {
	cacheKey := "marketnews"
	if cached, ok := m.cache.Get(cacheKey); ok {
		return capArticles(cached.([]models.MarketArticle), limit), nil
	}

	var all []models.MarketArticle
	for _, src := range m.sources {
		articles, err := m.fetchFeed(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, articles...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	m.cache.Set(cacheKey, all)
	return capArticles(all, limit), nil
}

// fetchFeed parses one RSS feed into market articles.
func (m *MarketNews) fetchFeed(ctx context.Context, src FeedSource) ([]models.MarketArticle, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := m.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, err
	}

	articles := make([]models.MarketArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.MarketArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func capArticles(articles []models.MarketArticle, limit int) []models.MarketArticle {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
