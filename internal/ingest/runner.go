// Package ingest drives a full run: ticker universe in, one assembled and
// persisted record per ticker out, with per-ticker failure isolation.
package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajsalagundi/Stock-Intelligence/internal/api/finnhub"
	"github.com/ajsalagundi/Stock-Intelligence/internal/dates"
	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

// Universe produces the ordered list of symbols to process.
type Universe interface {
	Tickers(ctx context.Context) ([]string, error)
}

// Builder assembles the full record for one symbol.
type Builder interface {
	Build(ctx context.Context, symbol string) (*model.TickerRecord, error)
}

// Sink receives one assembled record per ticker.
type Sink interface {
	SaveRecord(rec *model.TickerRecord) error
}

// NewsFetcher fetches raw company news items.
type NewsFetcher interface {
	CompanyNews(ctx context.Context, symbol, from, to string) ([]finnhub.NewsItem, error)
}

// Summary reports the outcome of one run.
type Summary struct {
	Succeeded []string
	Failed    []string
	Duration  time.Duration
}

// Runner ties universe, assembler, and sink together.
type Runner struct {
	universe Universe
	builder  Builder
	sink     Sink
	news     NewsFetcher
	norm     dates.Normalizer
	logger   zerolog.Logger
}

// NewRunner creates a new Runner. news may be nil if news retrieval is not
// used.
func NewRunner(universe Universe, builder Builder, sink Sink, news NewsFetcher, norm dates.Normalizer) *Runner {
	return &Runner{
		universe: universe,
		builder:  builder,
		sink:     sink,
		news:     news,
		norm:     norm,
		logger:   log.With().Str("component", "runner").Logger(),
	}
}

// Run processes every ticker in the universe. A ticker that fails to fetch,
// align, or persist is logged and skipped; the run continues. Returns the
// summary along with the context error if the run was cut short.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	tickers, err := r.universe.Tickers(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Info().Int("tickers", len(tickers)).Msg("Starting ingestion run")

	summary := &Summary{}
	for _, symbol := range tickers {
		if ctx.Err() != nil {
			break
		}

		rec, err := r.builder.Build(ctx, symbol)
		if err != nil {
			r.logger.Error().Err(err).Str("symbol", symbol).Msg("Ticker failed")
			summary.Failed = append(summary.Failed, symbol)
			continue
		}

		if err := r.sink.SaveRecord(rec); err != nil {
			r.logger.Error().Err(err).Str("symbol", symbol).Msg("Persisting ticker failed")
			summary.Failed = append(summary.Failed, symbol)
			continue
		}

		r.logger.Info().Str("symbol", symbol).Msg("Ticker ingested")
		summary.Succeeded = append(summary.Succeeded, symbol)
	}

	summary.Duration = time.Since(start)
	r.logger.Info().
		Int("succeeded", len(summary.Succeeded)).
		Int("failed", len(summary.Failed)).
		Strs("failed_symbols", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Ingestion run finished")

	return summary, ctx.Err()
}

// News fetches company news for one symbol between two dates (YYYY-MM-DD)
// and formats the article timestamps.
func (r *Runner) News(ctx context.Context, symbol, from, to string) ([]model.NewsArticle, error) {
	items, err := r.news.CompanyNews(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	articles := make([]model.NewsArticle, len(items))
	for i, item := range items {
		articles[i] = model.NewsArticle{
			Headline: item.Headline,
			URL:      item.URL,
			Datetime: r.norm.DateTimeKey(item.Datetime),
		}
	}
	return articles, nil
}
