package insight

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// summaryFallback replaces a per-article summary when generation fails.
const summaryFallback = "Summary unavailable."

// enrichArticles fills in the AI summary and sentiment for each article.
// One goroutine per article, two independent calls per goroutine; every
// outcome is settled into its own indexed slot so a slow or failing article
// never delays or aborts the batch, and output order matches input order.
func (s *Service) enrichArticles(ctx context.Context, ticker string, articles []models.NewsArticle) []models.NewsArticle {
	out := make([]models.NewsArticle, len(articles))
	copy(out, articles)

	if s.provider == nil {
		for i := range out {
			out[i].Summary = summaryFallback
			out[i].Sentiment = models.SentimentUnknown
		}
		return out
	}

	var wg sync.WaitGroup
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var inner sync.WaitGroup
			inner.Add(2)
			go func() {
				defer inner.Done()
				out[i].Summary = s.summarizeArticle(ctx, ticker, articles[i])
			}()
			go func() {
				defer inner.Done()
				out[i].Sentiment = s.classifySentiment(ctx, articles[i])
			}()
			inner.Wait()
		}(i)
	}
	wg.Wait()
	return out
}

func (s *Service) summarizeArticle(ctx context.Context, ticker string, a models.NewsArticle) string {
	resp, err := s.provider.Chat(ctx, articleSummaryPrompt(ticker, a), s.chat)
	if err != nil {
		log.Printf("article summary failed for %s (%s): %v", ticker, a.ID, err)
		return summaryFallback
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return summaryFallback
	}
	return content
}

func (s *Service) classifySentiment(ctx context.Context, a models.NewsArticle) models.Sentiment {
	resp, err := s.provider.Chat(ctx, articleSentimentPrompt(a), s.chat)
	if err != nil {
		log.Printf("sentiment classification failed for %s: %v", a.ID, err)
		return models.SentimentUnknown
	}
	return models.ParseSentiment(resp.Content)
}
