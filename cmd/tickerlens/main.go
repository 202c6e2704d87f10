// TickerLens — single-ticker stock insight dashboard backend.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/tickerlens/api"
	"github.com/seenimoa/tickerlens/internal/config"
	"github.com/seenimoa/tickerlens/internal/datasource"
	"github.com/seenimoa/tickerlens/internal/insight"
	"github.com/seenimoa/tickerlens/internal/llm"
	"github.com/seenimoa/tickerlens/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerlens",
	Short: "TickerLens — one-ticker stock insight with AI narrative",
	Long: `TickerLens aggregates a market quote, a year of daily history, and recent
news for a single ticker, then layers AI-generated article summaries,
sentiment tags, and a narrative financial summary on top. Every upstream
source degrades gracefully: missing credentials fall back to demo data and
static news, and a missing language model falls back to plain sentinels.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(insightCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("TickerLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Insight Command ---

var insightCmd = &cobra.Command{
	Use:   "insight [ticker]",
	Short: "Fetch the full insight bundle for a ticker and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])

		svc := buildService(cfg)
		resp, err := svc.FetchInsightsWithProgress(cmd.Context(), ticker, func(st insight.Stage) {
			fmt.Fprintf(os.Stderr, "· %s\n", st)
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := api.NewServer(cfg, buildService(cfg), datasource.NewMarketNews())
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

// buildService wires the pipeline from config. A missing LLM credential is
// not fatal; the service degrades AI fields to sentinels.
func buildService(cfg *config.Config) *insight.Service {
	market := datasource.NewAlphaVantage(cfg.MarketData.APIKey)
	if !market.Configured() {
		log.Println("no market data API key configured, only demo tickers will resolve")
	}
	news := datasource.NewNewsAPI(cfg.News.APIKey)

	provider, err := llm.NewFromConfig(llm.Config{
		Provider:  cfg.LLM.Provider,
		OpenAIKey: cfg.LLM.OpenAIKey,
		OllamaURL: cfg.LLM.OllamaURL,
		Model:     cfg.LLM.Model,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrNoProviders) {
			log.Printf("LLM setup failed (%v), AI fields degrade to sentinels", err)
		} else {
			log.Println("no language model configured, AI fields degrade to sentinels")
		}
		provider = nil
	}

	return insight.NewService(market, news, provider, insight.WithChatOptions(llm.ChatOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}))
}
