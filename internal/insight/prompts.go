package insight

import (
	"fmt"
	"strings"

	"github.com/seenimoa/tickerlens/internal/llm"
	"github.com/seenimoa/tickerlens/pkg/models"
)

func articleSummaryPrompt(ticker string, a models.NewsArticle) []llm.Message {
	system := "You are a financial news editor. Summarize articles in 2-3 plain sentences " +
		"focused on what matters for investors in the named company. No preamble, no bullet points."
	user := fmt.Sprintf("Ticker: %s\nTitle: %s\nURL: %s\n\n%s", ticker, a.Title, a.URL, a.Content)
	return []llm.Message{llm.SystemMessage(system), llm.UserMessage(user)}
}

func articleSentimentPrompt(a models.NewsArticle) []llm.Message {
	system := "Classify the sentiment of the following article toward the company it covers. " +
		"Reply with exactly one word: Positive, Negative, Neutral, or Unknown."
	user := fmt.Sprintf("Title: %s\n\n%s", a.Title, a.Content)
	return []llm.Message{llm.SystemMessage(system), llm.UserMessage(user)}
}

func narrativePrompt(ticker, company string, recent []models.NewsArticle, yr models.YearRange) []llm.Message {
	system := "You are a financial analyst writing for a retail investor dashboard. " +
		"Write one concise paragraph summarizing the company's recent performance and news. " +
		"Ground every numeric claim in the figures provided. Do not give investment advice."

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n", company, ticker)
	fmt.Fprintf(&b, "Price one year ago: %s\n", fmtPrice(yr.YearStartPrice))
	fmt.Fprintf(&b, "Latest price: %s\n", fmtPrice(yr.YearEndPrice))
	fmt.Fprintf(&b, "52-week high: %s\n", fmtPrice(yr.High52Week))
	fmt.Fprintf(&b, "52-week low: %s\n", fmtPrice(yr.Low52Week))

	if len(recent) > 0 {
		b.WriteString("\nRecent news (last 30 days):\n")
		for _, a := range recent {
			fmt.Fprintf(&b, "- [%s, %s] %s: %s\n",
				a.Source, a.PublishedAt.Format("2006-01-02"), a.Title, capForPrompt(a.Content, 500))
		}
	} else {
		b.WriteString("\nNo recent news available; base the summary on the price figures alone.\n")
	}

	return []llm.Message{llm.SystemMessage(system), llm.UserMessage(b.String())}
}

func fmtPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func capForPrompt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
