// Package assemble builds one complete TickerRecord per symbol: it fans the
// independent profile, price and indicator fetches out over a worker pool,
// aligns every series against its resolution's time axis, and nests the
// results into the persisted document shape.
package assemble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajsalagundi/Stock-Intelligence/internal/align"
	"github.com/ajsalagundi/Stock-Intelligence/internal/api/finnhub"
	"github.com/ajsalagundi/Stock-Intelligence/internal/dates"
	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

// Epoch for 2010-01-01, the default start of every history fetch.
const defaultStartEpoch = 1262304000

const defaultWorkers = 8

// Indicator family keys inside the record's indicators document.
const (
	familyEMA   = "ema"
	familyRSI   = "rsi"
	familyMACD  = "macd"
	familyStoch = "stoch"
	familyBBand = "bband"
)

// Fetcher is the slice of the data provider the assembler needs.
type Fetcher interface {
	CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
	Beta(ctx context.Context, symbol string) (*float64, error)
	Candles(ctx context.Context, symbol string, res model.Resolution, from, to int64) (*finnhub.CandleResponse, error)
	IndicatorEpochs(ctx context.Context, symbol string, res model.Resolution, from, to int64) ([]int64, error)
	EMA(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error)
	RSI(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error)
	MACD(ctx context.Context, symbol string, res model.Resolution, from, to int64, fast, slow, signal int) (*finnhub.MACDSeries, error)
	Stoch(ctx context.Context, symbol string, res model.Resolution, from, to int64, fastK, slowK, slowD int) (*finnhub.StochSeries, error)
	BBands(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod, nbDevUp, nbDevDn int) (*finnhub.BBandSeries, error)
}

// FetchError reports which upstream call failed while building a ticker.
type FetchError struct {
	Symbol     string
	Resolution model.Resolution // empty for per-ticker calls like the profile
	Call       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Resolution == "" {
		return fmt.Sprintf("fetch %s for %s: %v", e.Call, e.Symbol, e.Err)
	}
	return fmt.Sprintf("fetch %s for %s (%s): %v", e.Call, e.Symbol, e.Resolution, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options holds options for creating a new Assembler.
type Options struct {
	Normalizer dates.Normalizer
	Params     Params
	StartEpoch int64
	Workers    int

	// Now supplies the query end date; defaults to time.Now. Injected so
	// that identical fetch responses produce identical records in tests.
	Now func() time.Time
}

// Assembler builds TickerRecords from a Fetcher.
type Assembler struct {
	fetcher    Fetcher
	norm       dates.Normalizer
	params     Params
	startEpoch int64
	workers    int
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates a new Assembler.
func New(fetcher Fetcher, opts Options) *Assembler {
	if opts.Params.EMAPeriods == nil && opts.Params.RSIPeriods == nil {
		opts.Params = DefaultParams()
	}
	if opts.StartEpoch == 0 {
		opts.StartEpoch = defaultStartEpoch
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Assembler{
		fetcher:    fetcher,
		norm:       opts.Normalizer,
		params:     opts.Params,
		startEpoch: opts.StartEpoch,
		workers:    opts.Workers,
		now:        opts.Now,
		logger:     log.With().Str("component", "assembler").Logger(),
	}
}

// resolutionData collects everything fetched for one (symbol, resolution):
// the epoch axis plus every value array that will be aligned against it.
// Slots are pre-allocated before the fan-out so workers write disjoint
// fields without locking.
type resolutionData struct {
	epochs  []int64
	candles *finnhub.CandleResponse
	ema     [][]float64
	rsi     [][]float64
	macd    *finnhub.MACDSeries
	stoch   *finnhub.StochSeries
	bband   *finnhub.BBandSeries
}

// Build fetches, aligns, and assembles the full record for one ticker.
// All fetches for the ticker run concurrently through the worker pool; the
// first failure cancels the rest and fails the whole ticker, so a partial
// record is never returned.
func (a *Assembler) Build(ctx context.Context, symbol string) (*model.TickerRecord, error) {
	from := a.startEpoch
	to := a.now().Unix()

	var (
		profile *model.CompanyProfile
		beta    *float64
	)
	byRes := make(map[model.Resolution]*resolutionData, len(model.BarResolutions))
	for _, res := range model.BarResolutions {
		byRes[res] = &resolutionData{
			ema: make([][]float64, len(a.params.EMAPeriods[res])),
			rsi: make([][]float64, len(a.params.RSIPeriods[res])),
		}
	}

	tasks := []task{
		{"profile", "", func(ctx context.Context) error {
			p, err := a.fetcher.CompanyProfile(ctx, symbol)
			profile = p
			return err
		}},
		{"beta", "", func(ctx context.Context) error {
			b, err := a.fetcher.Beta(ctx, symbol)
			beta = b
			return err
		}},
	}

	for _, res := range model.BarResolutions {
		res := res
		d := byRes[res]

		tasks = append(tasks,
			task{"epochs", res, func(ctx context.Context) error {
				epochs, err := a.fetcher.IndicatorEpochs(ctx, symbol, res, from, to)
				d.epochs = epochs
				return err
			}},
			task{"candles", res, func(ctx context.Context) error {
				candles, err := a.fetcher.Candles(ctx, symbol, res, from, to)
				d.candles = candles
				return err
			}},
		)

		for i, period := range a.params.EMAPeriods[res] {
			i, period := i, period
			tasks = append(tasks, task{"ema", res, func(ctx context.Context) error {
				values, err := a.fetcher.EMA(ctx, symbol, res, from, to, period)
				d.ema[i] = values
				return err
			}})
		}
		for i, period := range a.params.RSIPeriods[res] {
			i, period := i, period
			tasks = append(tasks, task{"rsi", res, func(ctx context.Context) error {
				values, err := a.fetcher.RSI(ctx, symbol, res, from, to, period)
				d.rsi[i] = values
				return err
			}})
		}
		if containsResolution(a.params.MACDResolutions, res) {
			p := a.params.MACD
			tasks = append(tasks, task{"macd", res, func(ctx context.Context) error {
				series, err := a.fetcher.MACD(ctx, symbol, res, from, to, p.Fast, p.Slow, p.Signal)
				d.macd = series
				return err
			}})
		}
		if containsResolution(a.params.StochResolutions, res) {
			p := a.params.Stoch
			tasks = append(tasks, task{"stoch", res, func(ctx context.Context) error {
				series, err := a.fetcher.Stoch(ctx, symbol, res, from, to, p.FastK, p.SlowK, p.SlowD)
				d.stoch = series
				return err
			}})
		}
		if containsResolution(a.params.BBandResolutions, res) {
			p := a.params.BBands
			tasks = append(tasks, task{"bbands", res, func(ctx context.Context) error {
				series, err := a.fetcher.BBands(ctx, symbol, res, from, to, p.TimePeriod, p.NbDevUp, p.NbDevDn)
				d.bband = series
				return err
			}})
		}
	}

	a.logger.Debug().Str("symbol", symbol).Int("calls", len(tasks)).Msg("Assembling ticker record")

	if err := a.runTasks(ctx, symbol, tasks); err != nil {
		return nil, err
	}

	return a.merge(symbol, profile, beta, byRes)
}

// task is one upstream call with enough identity to build a FetchError.
type task struct {
	call string
	res  model.Resolution
	run  func(ctx context.Context) error
}

// runTasks drains the task list through the worker pool. The first error
// cancels the shared context; remaining tasks are consumed without running.
func (a *Assembler) runTasks(ctx context.Context, symbol string, tasks []task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskCh := make(chan task)
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				if err := t.run(ctx); err != nil {
					select {
					case errCh <- &FetchError{Symbol: symbol, Resolution: t.res, Call: t.call, Err: err}:
					default:
					}
					cancel()
				}
			}
		}()
	}

	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		// Covers cancellation of the parent context before any task failed.
		return ctx.Err()
	}
}

// merge aligns all fetched series per resolution and nests them into the
// final record. Runs after every task has completed, so each resolution's
// axis and value arrays form one consistent alignment unit.
func (a *Assembler) merge(symbol string, profile *model.CompanyProfile, beta *float64, byRes map[model.Resolution]*resolutionData) (*model.TickerRecord, error) {
	rec := model.NewRecord(symbol)
	rec.Name = profile.Name
	rec.Industry = profile.Industry
	rec.Exchange = profile.Exchange
	rec.IPO = profile.IPO
	rec.Currency = profile.Currency
	rec.Beta = beta

	for _, res := range model.BarResolutions {
		d := byRes[res]
		axis := a.norm.Axis(d.epochs, res)

		prices, err := align.Prices(axis, d.candles.Open, d.candles.High, d.candles.Low, d.candles.Close, d.candles.Volume)
		if err != nil {
			return nil, fmt.Errorf("aligning %s prices for %s: %w", res.Label(), symbol, err)
		}
		rec.Price[res.PriceLabel()] = prices

		if periods := a.params.EMAPeriods[res]; len(periods) > 0 {
			series := make([]model.MetricSeries, len(periods))
			for i, p := range periods {
				series[i] = model.MetricSeries{Name: res.PeriodLabel(p), Values: d.ema[i]}
			}
			entries, err := align.Merge(axis, series...)
			if err != nil {
				return nil, fmt.Errorf("aligning %s ema for %s: %w", res.Label(), symbol, err)
			}
			rec.SetIndicator(familyEMA, res.Label(), entries)
		}

		if periods := a.params.RSIPeriods[res]; len(periods) > 0 {
			series := make([]model.MetricSeries, len(periods))
			for i, p := range periods {
				series[i] = model.MetricSeries{Name: res.PeriodLabel(p), Values: d.rsi[i]}
			}
			entries, err := align.Merge(axis, series...)
			if err != nil {
				return nil, fmt.Errorf("aligning %s rsi for %s: %w", res.Label(), symbol, err)
			}
			rec.SetIndicator(familyRSI, res.Label(), entries)
		}

		if d.macd != nil {
			entries, err := align.Merge(axis,
				model.MetricSeries{Name: "macd", Values: d.macd.MACD},
				model.MetricSeries{Name: "macd_signal", Values: d.macd.Signal},
				model.MetricSeries{Name: "macd_histogram", Values: d.macd.Histogram},
			)
			if err != nil {
				return nil, fmt.Errorf("aligning %s macd for %s: %w", res.Label(), symbol, err)
			}
			rec.SetIndicator(familyMACD, res.Label(), entries)
		}

		if d.stoch != nil {
			entries, err := align.Merge(axis,
				model.MetricSeries{Name: "slowd", Values: d.stoch.SlowD},
				model.MetricSeries{Name: "slowk", Values: d.stoch.SlowK},
			)
			if err != nil {
				return nil, fmt.Errorf("aligning %s stoch for %s: %w", res.Label(), symbol, err)
			}
			rec.SetIndicator(familyStoch, res.Label(), entries)
		}

		if d.bband != nil {
			entries, err := align.Merge(axis,
				model.MetricSeries{Name: "lowerband", Values: d.bband.Lower},
				model.MetricSeries{Name: "middleband", Values: d.bband.Middle},
				model.MetricSeries{Name: "upperband", Values: d.bband.Upper},
			)
			if err != nil {
				return nil, fmt.Errorf("aligning %s bbands for %s: %w", res.Label(), symbol, err)
			}
			rec.SetIndicator(familyBBand, res.Label(), entries)
		}
	}

	return rec, nil
}
