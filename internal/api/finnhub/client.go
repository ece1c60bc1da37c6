// Package finnhub is the client for the Finnhub stock data API: company
// profiles, candles, and pre-computed technical indicator series.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
	platformhttp "github.com/ajsalagundi/Stock-Intelligence/internal/platform/http"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client is the Finnhub API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *platformhttp.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Finnhub client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerMin  int
	MaxRetryElapsed time.Duration
}

// NewClient creates a new Finnhub API client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerMin:  options.RequestsPerMin,
			MaxRetryElapsed: options.MaxRetryElapsed,
		}),
		logger: log.With().Str("component", "finnhub_client").Logger(),
	}
}

// get fetches one endpoint and decodes the JSON payload into out. Transport
// and status errors are retried inside the HTTP client; a payload that does
// not decode is a DataShapeError and is not retried.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("token", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().Str("path", path).Str("symbol", params.Get("symbol")).Msg("Fetching")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Error parsing JSON")
		return &DataShapeError{Endpoint: path, Detail: "malformed JSON: " + err.Error()}
	}
	return nil
}

// CompanyProfile fetches the basic company info for a ticker.
func (c *Client) CompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	var data struct {
		Name     string `json:"name"`
		Industry string `json:"finnhubIndustry"`
		Exchange string `json:"exchange"`
		IPO      string `json:"ipo"`
		Currency string `json:"currency"`
	}
	params := url.Values{"symbol": {symbol}}
	if err := c.get(ctx, "/stock/profile2", params, &data); err != nil {
		return nil, err
	}
	// Unknown symbols come back as an empty object with a 200 status.
	if data.Name == "" && data.Exchange == "" {
		return nil, &DataShapeError{Endpoint: "/stock/profile2", Detail: "empty profile for " + symbol}
	}
	return &model.CompanyProfile{
		Name:     data.Name,
		Industry: data.Industry,
		Exchange: data.Exchange,
		IPO:      data.IPO,
		Currency: data.Currency,
	}, nil
}

// Beta fetches the ticker's 5-year beta from the basic financials metrics.
// Returns nil when the provider has no beta for the symbol.
func (c *Client) Beta(ctx context.Context, symbol string) (*float64, error) {
	var data struct {
		Metric struct {
			Beta *float64 `json:"beta"`
		} `json:"metric"`
	}
	params := url.Values{"symbol": {symbol}, "metric": {"all"}}
	if err := c.get(ctx, "/stock/metric", params, &data); err != nil {
		return nil, err
	}
	return data.Metric.Beta, nil
}

// CandleResponse holds the parallel OHLCV arrays of one candle call,
// in provider order.
type CandleResponse struct {
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []int64   `json:"v"`
	Epochs []int64   `json:"t"`
	Status string    `json:"s"`
}

// Candles fetches OHLCV bars for a ticker between two epochs.
func (c *Client) Candles(ctx context.Context, symbol string, res model.Resolution, from, to int64) (*CandleResponse, error) {
	var data CandleResponse
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {string(res)},
		"from":       {strconv.FormatInt(from, 10)},
		"to":         {strconv.FormatInt(to, 10)},
	}
	if err := c.get(ctx, "/stock/candle", params, &data); err != nil {
		return nil, err
	}
	if data.Status != "ok" || data.Close == nil {
		return nil, &DataShapeError{Endpoint: "/stock/candle", Detail: "no candle data for " + symbol + " (" + string(res) + ")"}
	}
	return &data, nil
}

// IndicatorEpochs fetches the epoch axis for a (ticker, resolution) pair via
// a minimal indicator call. Every indicator array fetched for the same pair
// shares this axis.
func (c *Client) IndicatorEpochs(ctx context.Context, symbol string, res model.Resolution, from, to int64) ([]int64, error) {
	var data struct {
		Epochs []int64 `json:"t"`
	}
	params := c.indicatorParams(symbol, res, from, to, "sma")
	params.Set("timeperiod", "2")
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if len(data.Epochs) == 0 {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "no epochs for " + symbol + " (" + string(res) + ")"}
	}
	return data.Epochs, nil
}

// EMA fetches the exponential moving average series for one lookback period.
func (c *Client) EMA(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error) {
	var data struct {
		EMA []float64 `json:"ema"`
	}
	params := c.indicatorParams(symbol, res, from, to, "ema")
	params.Set("timeperiod", strconv.Itoa(timePeriod))
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if data.EMA == nil {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "missing ema values for " + symbol}
	}
	return data.EMA, nil
}

// RSI fetches the relative strength index series for one lookback period.
func (c *Client) RSI(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod int) ([]float64, error) {
	var data struct {
		RSI []float64 `json:"rsi"`
	}
	params := c.indicatorParams(symbol, res, from, to, "rsi")
	params.Set("timeperiod", strconv.Itoa(timePeriod))
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if data.RSI == nil {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "missing rsi values for " + symbol}
	}
	return data.RSI, nil
}

// MACDSeries holds the three MACD output lines.
type MACDSeries struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"macdSignal"`
	Histogram []float64 `json:"macdHist"`
}

// MACD fetches the MACD, signal and histogram lines.
func (c *Client) MACD(ctx context.Context, symbol string, res model.Resolution, from, to int64, fast, slow, signal int) (*MACDSeries, error) {
	var data MACDSeries
	params := c.indicatorParams(symbol, res, from, to, "macd")
	params.Set("fastperiod", strconv.Itoa(fast))
	params.Set("slowperiod", strconv.Itoa(slow))
	params.Set("signalperiod", strconv.Itoa(signal))
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if data.MACD == nil || data.Signal == nil || data.Histogram == nil {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "missing macd values for " + symbol}
	}
	return &data, nil
}

// StochSeries holds the slow %K and %D lines of the stochastic oscillator.
type StochSeries struct {
	SlowK []float64 `json:"slowk"`
	SlowD []float64 `json:"slowd"`
}

// Stoch fetches the stochastic oscillator slow lines.
func (c *Client) Stoch(ctx context.Context, symbol string, res model.Resolution, from, to int64, fastK, slowK, slowD int) (*StochSeries, error) {
	var data StochSeries
	params := c.indicatorParams(symbol, res, from, to, "stoch")
	params.Set("fastkperiod", strconv.Itoa(fastK))
	params.Set("slowkperiod", strconv.Itoa(slowK))
	params.Set("slowdperiod", strconv.Itoa(slowD))
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if data.SlowK == nil || data.SlowD == nil {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "missing stoch values for " + symbol}
	}
	return &data, nil
}

// BBandSeries holds the three Bollinger band lines.
type BBandSeries struct {
	Lower  []float64 `json:"lowerband"`
	Middle []float64 `json:"middleband"`
	Upper  []float64 `json:"upperband"`
}

// BBands fetches the Bollinger band lines.
func (c *Client) BBands(ctx context.Context, symbol string, res model.Resolution, from, to int64, timePeriod, nbDevUp, nbDevDn int) (*BBandSeries, error) {
	var data BBandSeries
	params := c.indicatorParams(symbol, res, from, to, "bbands")
	params.Set("timeperiod", strconv.Itoa(timePeriod))
	params.Set("nbdevup", strconv.Itoa(nbDevUp))
	params.Set("nbdevdn", strconv.Itoa(nbDevDn))
	if err := c.get(ctx, "/indicator", params, &data); err != nil {
		return nil, err
	}
	if data.Lower == nil || data.Middle == nil || data.Upper == nil {
		return nil, &DataShapeError{Endpoint: "/indicator", Detail: "missing bband values for " + symbol}
	}
	return &data, nil
}

// NewsItem is one raw company-news entry; Datetime is epoch seconds.
type NewsItem struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// CompanyNews fetches news articles for a ticker between two dates
// (YYYY-MM-DD).
func (c *Client) CompanyNews(ctx context.Context, symbol, from, to string) ([]NewsItem, error) {
	var data []NewsItem
	params := url.Values{
		"symbol": {symbol},
		"from":   {from},
		"to":     {to},
	}
	if err := c.get(ctx, "/company-news", params, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) indicatorParams(symbol string, res model.Resolution, from, to int64, indicator string) url.Values {
	return url.Values{
		"symbol":     {symbol},
		"resolution": {string(res)},
		"from":       {strconv.FormatInt(from, 10)},
		"to":         {strconv.FormatInt(to, 10)},
		"indicator":  {indicator},
	}
}
