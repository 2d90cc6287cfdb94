package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/caselawlab/courtcrawl/pkg/analysis"
	"github.com/caselawlab/courtcrawl/pkg/cache"
	"github.com/caselawlab/courtcrawl/pkg/client"
	"github.com/caselawlab/courtcrawl/pkg/config"
	"github.com/caselawlab/courtcrawl/pkg/crawler"
	"github.com/caselawlab/courtcrawl/pkg/export"
	"github.com/caselawlab/courtcrawl/pkg/logging"
	"github.com/caselawlab/courtcrawl/pkg/record"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl dockets, clusters, and opinions into flattened records",
		Long: `Crawl walks the CourtListener hierarchy and produces one flattened
record per opinion that resolves through all three levels.

The docket listing can be filtered by court and capped. Failed cluster or
opinion fetches are logged and skipped; an interrupted run (Ctrl-C) still
writes the records collected so far.

Examples:
  # 200 Supreme Court dockets to CSV
  courtcrawl crawl --court scotus --limit 200 --csv cases.csv

  # Full export set with a Redis resource cache
  courtcrawl crawl --court ca9 --limit 50 --redis localhost:6379 \
    --csv cases.csv --json cases.json --text-dir ./case_texts`,
		RunE: runCrawl,
	}

	cmd.Flags().String("token", "", "CourtListener API token (or COURTLISTENER_TOKEN)")
	cmd.Flags().String("base-url", "", "API base URL override")
	cmd.Flags().String("court", "", `Court filter, e.g. "scotus" or "ca9"`)
	cmd.Flags().Int("limit", 0, "Maximum dockets to crawl (0 = unbounded)")
	cmd.Flags().Int("concurrency", 0, "Parallel opinion fetches per cluster (default 1, sequential)")
	cmd.Flags().String("redis", "", "Redis address for the resource cache (empty = no cache)")
	cmd.Flags().String("csv", "", "Write records to this CSV file")
	cmd.Flags().String("json", "", "Write records to this JSON file")
	cmd.Flags().String("text-dir", "", "Write per-opinion text files to this directory")
	cmd.Flags().Bool("analyze", false, "Log certainty/hedging lexical metrics for the crawled text")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	apiClient, err := client.New(client.Config{
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout.Std(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheManager := setupCache(ctx, cfg)

	cr, err := crawler.New(crawler.Config{
		Getter:          apiClient,
		BaseURL:         cfg.BaseURL,
		Court:           cfg.Court,
		DocketCap:       cfg.DocketCap,
		DocketPageDelay: cfg.DocketPageDelay.Std(),
		ResourceDelay:   cfg.ResourceDelay.Std(),
		Concurrency:     cfg.Concurrency,
		Cache:           cacheManager,
	})
	if err != nil {
		return err
	}

	records, runErr := cr.Run(ctx)
	if runErr != nil {
		// Cancellation is the only error Run returns; the records so
		// far are a valid prefix and still worth writing.
		logger.Warn().Err(runErr).Int("records", len(records)).
			Msg("Crawl interrupted, writing partial results")
	}

	if err := writeOutputs(cfg, records); err != nil {
		return err
	}

	if analyze, _ := cmd.Flags().GetBool("analyze"); analyze {
		logLexicalSummary(records)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Crawl complete: %d records from %d dockets\n",
		cr.Stats().Records, cr.Stats().DocketsProcessed)
	return nil
}

// loadConfig merges the config file, environment, and command flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("court") {
		cfg.Court, _ = flags.GetString("court")
	}
	if flags.Changed("limit") {
		cfg.DocketCap, _ = flags.GetInt("limit")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("redis") {
		cfg.RedisAddr, _ = flags.GetString("redis")
	}
	if flags.Changed("csv") {
		cfg.CSVPath, _ = flags.GetString("csv")
	}
	if flags.Changed("json") {
		cfg.JSONPath, _ = flags.GetString("json")
	}
	if flags.Changed("text-dir") {
		cfg.TextDir, _ = flags.GetString("text-dir")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("pretty") {
		cfg.LogPretty, _ = flags.GetBool("pretty")
	}

	return cfg, nil
}

// setupCache connects the optional Redis resource cache. A cache that is
// configured but unreachable downgrades to no cache with a warning; the
// crawl itself does not depend on it.
func setupCache(ctx context.Context, cfg config.Config) *cache.Manager {
	if cfg.RedisAddr == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	cacheLogger := logging.NewLogger("cache")
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cacheLogger.Warn().Err(err).Str("addr", cfg.RedisAddr).
			Msg("Redis unreachable, continuing without resource cache")
		redisClient.Close()
		return nil
	}

	cacheLogger.Info().Str("addr", cfg.RedisAddr).Msg("Resource cache enabled")
	return cache.NewManager(redisClient, cfg.CacheTTL.Std())
}

// writeOutputs serializes records to the configured sinks.
func writeOutputs(cfg config.Config, records []record.CrawlRecord) error {
	logger := logging.NewLogger("export")

	if cfg.CSVPath != "" {
		f, err := os.Create(cfg.CSVPath)
		if err != nil {
			return fmt.Errorf("create csv file: %w", err)
		}
		if err := export.WriteCSV(f, records); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close csv file: %w", err)
		}
		logger.Info().Str("path", cfg.CSVPath).Int("records", len(records)).Msg("Wrote CSV")
	}

	if cfg.JSONPath != "" {
		f, err := os.Create(cfg.JSONPath)
		if err != nil {
			return fmt.Errorf("create json file: %w", err)
		}
		if err := export.WriteJSON(f, records); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close json file: %w", err)
		}
		logger.Info().Str("path", cfg.JSONPath).Int("records", len(records)).Msg("Wrote JSON")
	}

	if cfg.TextDir != "" {
		if err := export.WriteTextFiles(cfg.TextDir, records); err != nil {
			return err
		}
		logger.Info().Str("dir", cfg.TextDir).Int("files", len(records)).Msg("Wrote text files")
	}

	return nil
}

// logLexicalSummary logs aggregate certainty/hedging metrics across the
// crawled opinion texts.
func logLexicalSummary(records []record.CrawlRecord) {
	logger := logging.NewLogger("analysis")
	if len(records) == 0 {
		logger.Info().Msg("No records to analyze")
		return
	}

	var totalWords int
	var certaintySum, hedgingSum float64
	for _, r := range records {
		m := analysis.Analyze(r.OpinionTextPlain)
		totalWords += m.TotalWords
		certaintySum += m.CertaintyPer1000
		hedgingSum += m.HedgingPer1000
	}

	n := float64(len(records))
	logger.Info().
		Int("opinions", len(records)).
		Int("total_words", totalWords).
		Float64("avg_certainty_per_1000", certaintySum/n).
		Float64("avg_hedging_per_1000", hedgingSum/n).
		Msg("Lexical metrics")
}
