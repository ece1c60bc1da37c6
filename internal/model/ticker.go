package model

// TimeAxis is the canonical ordered list of date keys (YYYY-MM-DD) that all
// series fetched for one (ticker, resolution) pair are aligned against.
type TimeAxis []string

// MetricSeries is one named numeric array positionally aligned to a TimeAxis.
type MetricSeries struct {
	Name   string
	Values []float64
}

// PriceBar holds one OHLCV bar.
type PriceBar struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceEntry maps a single date key to its bar.
type PriceEntry map[string]PriceBar

// MetricEntry maps a single date key to that date's named metric values,
// e.g. {"2020-01-02": {"10-day": 101.3, "20-day": 100.8}}.
type MetricEntry map[string]map[string]float64

// CompanyProfile holds the identity fields fetched per ticker.
type CompanyProfile struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Exchange string `json:"exchange"`
	IPO      string `json:"ipo"`
	Currency string `json:"currency"`
}

// TickerRecord is the persisted document for one security: profile fields
// plus per-resolution price lists and per-family per-resolution indicator
// lists, every list keyed by date.
type TickerRecord struct {
	Ticker   string   `json:"ticker"`
	Name     string   `json:"name"`
	Industry string   `json:"industry"`
	Exchange string   `json:"exchange"`
	IPO      string   `json:"ipo"`
	Currency string   `json:"currency"`
	Beta     *float64 `json:"beta,omitempty"`

	// Price is keyed by resolution price label (daily_prices, weekly_prices,
	// monthly_prices).
	Price map[string][]PriceEntry `json:"price"`

	// Indicators is keyed by family (ema, rsi, macd, stoch, bband) then by
	// resolution label (daily, weekly, monthly).
	Indicators map[string]map[string][]MetricEntry `json:"indicators"`
}

// NewRecord returns a TickerRecord with the nested maps initialized.
func NewRecord(symbol string) *TickerRecord {
	return &TickerRecord{
		Ticker:     symbol,
		Price:      make(map[string][]PriceEntry),
		Indicators: make(map[string]map[string][]MetricEntry),
	}
}

// SetIndicator stores one family/resolution indicator list.
func (r *TickerRecord) SetIndicator(family, resolution string, entries []MetricEntry) {
	if r.Indicators[family] == nil {
		r.Indicators[family] = make(map[string][]MetricEntry)
	}
	r.Indicators[family][resolution] = entries
}
