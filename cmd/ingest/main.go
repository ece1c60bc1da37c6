package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajsalagundi/Stock-Intelligence/internal/api/finnhub"
	"github.com/ajsalagundi/Stock-Intelligence/internal/assemble"
	"github.com/ajsalagundi/Stock-Intelligence/internal/config"
	"github.com/ajsalagundi/Stock-Intelligence/internal/dates"
	"github.com/ajsalagundi/Stock-Intelligence/internal/ingest"
	badgerstore "github.com/ajsalagundi/Stock-Intelligence/internal/storage/badger"
	"github.com/ajsalagundi/Stock-Intelligence/internal/universe"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	newsSymbol := flag.String("news", "", "fetch company news for one symbol instead of running ingestion")
	newsFrom := flag.String("from", "", "news start date (YYYY-MM-DD)")
	newsTo := flag.String("to", "", "news end date (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	norm := dates.Normalizer{
		TZOffset:     time.Duration(cfg.TZOffsetHours) * time.Hour,
		WeeklyShift:  cfg.WeeklyShiftDays,
		MonthlyShift: cfg.MonthlyShiftDays,
	}
	if err := norm.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid date configuration")
	}

	client := finnhub.NewClient(finnhub.ClientOptions{
		APIKey:          cfg.FinnhubAPIKey,
		BaseURL:         cfg.FinnhubBaseURL,
		RequestTimeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerMin:  cfg.RequestsPerMin,
		MaxRetryElapsed: time.Duration(cfg.MaxRetryElapsed) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *newsSymbol != "" {
		runNews(ctx, client, norm, *newsSymbol, *newsFrom, *newsTo)
		return
	}

	db, err := badgerstore.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer db.Close()

	runner := ingest.NewRunner(
		universe.New(universe.Options{
			URL:         cfg.UniverseURL,
			CachePath:   cfg.UniverseCachePath,
			CacheMaxAge: time.Duration(cfg.CacheMaxAgeHours) * time.Hour,
		}),
		assemble.New(client, assemble.Options{
			Normalizer: norm,
			StartEpoch: cfg.StartEpoch,
			Workers:    cfg.WorkerCount,
		}),
		badgerstore.NewTickerStorage(db),
		client,
		norm,
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Run interrupted")
	}
	if summary == nil || len(summary.Succeeded) == 0 {
		os.Exit(1)
	}
}

func runNews(ctx context.Context, client *finnhub.Client, norm dates.Normalizer, symbol, from, to string) {
	if from == "" || to == "" {
		log.Fatal().Msg("-news requires -from and -to dates (YYYY-MM-DD)")
	}

	runner := ingest.NewRunner(nil, nil, nil, client, norm)
	articles, err := runner.News(ctx, symbol, from, to)
	if err != nil {
		log.Fatal().Err(err).Str("symbol", symbol).Msg("Failed to fetch news")
	}

	for _, article := range articles {
		fmt.Printf("%s  %s\n    %s\n", article.Datetime, article.Headline, article.URL)
	}
}
