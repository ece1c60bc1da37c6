package assemble

import "github.com/ajsalagundi/Stock-Intelligence/internal/model"

// MACDParams holds the fast/slow/signal EMA periods of one MACD request.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// StochParams holds the stochastic oscillator smoothing periods.
type StochParams struct {
	FastK int
	SlowK int
	SlowD int
}

// BBandParams holds the Bollinger band SMA period and band widths.
type BBandParams struct {
	TimePeriod int
	NbDevUp    int
	NbDevDn    int
}

// Params is the full indicator parameter table: which lookback periods each
// family is fetched with, per resolution. A family absent for a resolution
// is simply not fetched there.
type Params struct {
	EMAPeriods map[model.Resolution][]int
	RSIPeriods map[model.Resolution][]int

	MACD            MACDParams
	MACDResolutions []model.Resolution

	Stoch            StochParams
	StochResolutions []model.Resolution

	BBands           BBandParams
	BBandResolutions []model.Resolution
}

// DefaultParams returns the standard parameter table used for S&P 500
// ingestion runs.
func DefaultParams() Params {
	return Params{
		EMAPeriods: map[model.Resolution][]int{
			model.Daily:   {2, 5, 10, 20, 50, 100, 150, 200},
			model.Weekly:  {2, 4, 10, 20, 30, 40},
			model.Monthly: {2, 5, 7, 8, 10},
		},
		RSIPeriods: map[model.Resolution][]int{
			model.Daily:  {5, 7, 9, 14, 21, 28},
			model.Weekly: {2, 3, 4},
		},
		MACD:             MACDParams{Fast: 12, Slow: 26, Signal: 9},
		MACDResolutions:  []model.Resolution{model.Daily, model.Weekly},
		Stoch:            StochParams{FastK: 14, SlowK: 3, SlowD: 3},
		StochResolutions: []model.Resolution{model.Daily, model.Weekly},
		BBands:           BBandParams{TimePeriod: 20, NbDevUp: 2, NbDevDn: 2},
		BBandResolutions: []model.Resolution{model.Daily, model.Weekly},
	}
}

// CallsPerTicker is the number of upstream requests one ticker costs with
// these parameters: profile, beta, and per resolution one axis call, one
// candle call, and one call per indicator parameter set.
func (p Params) CallsPerTicker() int {
	calls := 2
	for _, res := range model.BarResolutions {
		calls += 2 // axis + candles
		calls += len(p.EMAPeriods[res])
		calls += len(p.RSIPeriods[res])
	}
	calls += len(p.MACDResolutions)
	calls += len(p.StochResolutions)
	calls += len(p.BBandResolutions)
	return calls
}

func containsResolution(list []model.Resolution, res model.Resolution) bool {
	for _, r := range list {
		if r == res {
			return true
		}
	}
	return false
}
