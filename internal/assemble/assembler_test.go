package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajsalagundi/Stock-Intelligence/internal/align"
	"github.com/ajsalagundi/Stock-Intelligence/internal/api/finnhub"
	"github.com/ajsalagundi/Stock-Intelligence/internal/dates"
	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

// stubFetcher serves canned per-resolution data. Every value array has the
// same length as that resolution's epoch list unless a breakage is injected.
type stubFetcher struct {
	epochs  map[model.Resolution][]int64
	candles map[model.Resolution]*finnhub.CandleResponse

	failCall   string // call name that should error, "" for none
	shortRSI   bool   // weekly RSI arrays one element short
	callsTotal int64
}

func (s *stubFetcher) count() { atomic.AddInt64(&s.callsTotal, 1) }

func (s *stubFetcher) fail(call string) error {
	if s.failCall == call {
		return fmt.Errorf("injected %s failure", call)
	}
	return nil
}

func (s *stubFetcher) CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	s.count()
	if err := s.fail("profile"); err != nil {
		return nil, err
	}
	return &model.CompanyProfile{
		Name:     "Apple Inc",
		Industry: "Technology",
		Exchange: "NASDAQ",
		IPO:      "1980-12-12",
		Currency: "USD",
	}, nil
}

func (s *stubFetcher) Beta(ctx context.Context, symbol string) (*float64, error) {
	s.count()
	beta := 1.28
	return &beta, nil
}

func (s *stubFetcher) Candles(ctx context.Context, symbol string, res model.Resolution, from, to int64) (*finnhub.CandleResponse, error) {
	s.count()
	return s.candles[res], nil
}

func (s *stubFetcher) IndicatorEpochs(ctx context.Context, symbol string, res model.Resolution, from, to int64) ([]int64, error) {
	s.count()
	return s.epochs[res], nil
}

func (s *stubFetcher) series(res model.Resolution, base float64) []float64 {
	values := make([]float64, len(s.epochs[res]))
	for i := range values {
		values[i] = base + float64(i)
	}
	return values
}

func (s *stubFetcher) EMA(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error) {
	s.count()
	if err := s.fail("ema"); err != nil {
		return nil, err
	}
	return s.series(res, float64(timePeriod)), nil
}

func (s *stubFetcher) RSI(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error) {
	s.count()
	values := s.series(res, 50+float64(timePeriod))
	if s.shortRSI && res == model.Weekly {
		values = values[1:]
	}
	return values, nil
}

func (s *stubFetcher) MACD(ctx context.Context, symbol string, res model.Resolution, from, to int64, fast, slow, signal int) (*finnhub.MACDSeries, error) {
	s.count()
	return &finnhub.MACDSeries{
		MACD:      s.series(res, 0.5),
		Signal:    s.series(res, 0.4),
		Histogram: s.series(res, 0.1),
	}, nil
}

func (s *stubFetcher) Stoch(ctx context.Context, symbol string, res model.Resolution, from, to int64, fastK, slowK, slowD int) (*finnhub.StochSeries, error) {
	s.count()
	return &finnhub.StochSeries{
		SlowK: s.series(res, 80),
		SlowD: s.series(res, 75),
	}, nil
}

func (s *stubFetcher) BBands(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod, nbDevUp, nbDevDn int) (*finnhub.BBandSeries, error) {
	s.count()
	return &finnhub.BBandSeries{
		Lower:  s.series(res, 95),
		Middle: s.series(res, 100),
		Upper:  s.series(res, 105),
	}, nil
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		epochs: map[model.Resolution][]int64{
			// 2020-01-02 and 2020-01-03 midnight UTC
			model.Daily:   {1577923200, 1578009600},
			model.Weekly:  {1577923200},
			model.Monthly: {1577923200},
		},
		candles: map[model.Resolution]*finnhub.CandleResponse{
			model.Daily: {
				Open:   []float64{100, 101},
				High:   []float64{102, 103},
				Low:    []float64{99, 100},
				Close:  []float64{101, 102},
				Volume: []int64{1000, 1100},
				Status: "ok",
			},
			model.Weekly: {
				Open:   []float64{100},
				High:   []float64{103},
				Low:    []float64{99},
				Close:  []float64{102},
				Volume: []int64{5000},
				Status: "ok",
			},
			model.Monthly: {
				Open:   []float64{100},
				High:   []float64{110},
				Low:    []float64{95},
				Close:  []float64{108},
				Volume: []int64{20000},
				Status: "ok",
			},
		},
	}
}

func newTestAssembler(f Fetcher) *Assembler {
	return New(f, Options{
		Normalizer: dates.Default(),
		Workers:    4,
		Now:        func() time.Time { return time.Unix(1578009600, 0) },
	})
}

func TestBuildPrices(t *testing.T) {
	a := newTestAssembler(newStubFetcher())
	rec, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	daily := rec.Price["daily_prices"]
	require.Len(t, daily, 2)
	assert.Equal(t, model.PriceBar{Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000}, daily[0]["2020-01-02"])
	assert.Equal(t, model.PriceBar{Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100}, daily[1]["2020-01-03"])

	// Weekly bar dates carry the one-day chart shift.
	weekly := rec.Price["weekly_prices"]
	require.Len(t, weekly, 1)
	assert.Contains(t, weekly[0], "2020-01-03")

	// Monthly bar dates are shifted two days back.
	monthly := rec.Price["monthly_prices"]
	require.Len(t, monthly, 1)
	assert.Contains(t, monthly[0], "2019-12-31")
}

func TestBuildProfileFields(t *testing.T) {
	a := newTestAssembler(newStubFetcher())
	rec, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Ticker)
	assert.Equal(t, "Apple Inc", rec.Name)
	assert.Equal(t, "Technology", rec.Industry)
	assert.Equal(t, "NASDAQ", rec.Exchange)
	assert.Equal(t, "1980-12-12", rec.IPO)
	assert.Equal(t, "USD", rec.Currency)
	require.NotNil(t, rec.Beta)
	assert.Equal(t, 1.28, *rec.Beta)
}

func TestBuildIndicators(t *testing.T) {
	a := newTestAssembler(newStubFetcher())
	rec, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	params := DefaultParams()

	dailyEMA := rec.Indicators["ema"]["daily"]
	require.Len(t, dailyEMA, 2)
	values := dailyEMA[0]["2020-01-02"]
	require.Len(t, values, len(params.EMAPeriods[model.Daily]))
	// Stub EMA base value is the period itself.
	assert.Equal(t, 10.0, values["10-day"])
	assert.Equal(t, 200.0, values["200-day"])

	weeklyRSI := rec.Indicators["rsi"]["weekly"]
	require.Len(t, weeklyRSI, 1)
	assert.Len(t, weeklyRSI[0]["2020-01-03"], len(params.RSIPeriods[model.Weekly]))
	assert.Equal(t, 52.0, weeklyRSI[0]["2020-01-03"]["2-week"])

	dailyMACD := rec.Indicators["macd"]["daily"]
	require.Len(t, dailyMACD, 2)
	assert.Equal(t, map[string]float64{"macd": 0.5, "macd_signal": 0.4, "macd_histogram": 0.1}, dailyMACD[0]["2020-01-02"])

	dailyStoch := rec.Indicators["stoch"]["daily"]
	assert.Equal(t, map[string]float64{"slowk": 80, "slowd": 75}, dailyStoch[0]["2020-01-02"])

	weeklyBBand := rec.Indicators["bband"]["weekly"]
	assert.Equal(t, map[string]float64{"lowerband": 95, "middleband": 100, "upperband": 105}, weeklyBBand[0]["2020-01-03"])

	// No monthly coverage for families the parameter table restricts to
	// daily and weekly.
	assert.NotContains(t, rec.Indicators["rsi"], "monthly")
	assert.NotContains(t, rec.Indicators["macd"], "monthly")
	assert.Contains(t, rec.Indicators["ema"], "monthly")
}

func TestBuildCallCount(t *testing.T) {
	f := newStubFetcher()
	a := newTestAssembler(f)
	_, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	want := int64(DefaultParams().CallsPerTicker())
	assert.Equal(t, want, atomic.LoadInt64(&f.callsTotal))
}

func TestBuildFetchFailureFailsTicker(t *testing.T) {
	f := newStubFetcher()
	f.failCall = "ema"
	a := newTestAssembler(f)

	rec, err := a.Build(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Nil(t, rec)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "AAPL", fetchErr.Symbol)
	assert.Equal(t, "ema", fetchErr.Call)
}

func TestBuildProfileFailureFailsTicker(t *testing.T) {
	f := newStubFetcher()
	f.failCall = "profile"
	a := newTestAssembler(f)

	_, err := a.Build(context.Background(), "AAPL")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "profile", fetchErr.Call)
	assert.Equal(t, model.Resolution(""), fetchErr.Resolution)
}

func TestBuildRejectsMisalignedSeries(t *testing.T) {
	f := newStubFetcher()
	f.shortRSI = true
	a := newTestAssembler(f)

	_, err := a.Build(context.Background(), "AAPL")
	require.Error(t, err)

	var mismatch *align.MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBuildIdempotent(t *testing.T) {
	a := newTestAssembler(newStubFetcher())

	first, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)
	second, err := a.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAssembler(newStubFetcher())
	_, err := a.Build(ctx, "AAPL")
	require.ErrorIs(t, err, context.Canceled)
}
