// Package align zips independently fetched value arrays against a
// resolution's time axis. Every join is validated: the provider gives no
// date keys on indicator arrays, so equal length and order with the axis is
// the one assumption the rest of the pipeline depends on.
package align

import (
	"fmt"

	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

// MismatchError reports a series whose length disagrees with the time axis
// it was fetched for. Non-retryable: the payload itself is the wrong shape.
type MismatchError struct {
	Series string
	Got    int
	Want   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("series %q has %d values, axis has %d", e.Series, e.Got, e.Want)
}

// Merge joins named series position-wise against the axis, producing one
// entry per axis date with one key per series. Rejects any series whose
// length differs from the axis instead of silently truncating or padding.
func Merge(axis model.TimeAxis, series ...model.MetricSeries) ([]model.MetricEntry, error) {
	for _, s := range series {
		if len(s.Values) != len(axis) {
			return nil, &MismatchError{Series: s.Name, Got: len(s.Values), Want: len(axis)}
		}
	}

	entries := make([]model.MetricEntry, len(axis))
	for i, date := range axis {
		values := make(map[string]float64, len(series))
		for _, s := range series {
			values[s.Name] = s.Values[i]
		}
		entries[i] = model.MetricEntry{date: values}
	}
	return entries, nil
}

// Prices joins the five OHLCV arrays against the axis into dated bars,
// with the same length validation as Merge.
func Prices(axis model.TimeAxis, open, high, low, close []float64, volume []int64) ([]model.PriceEntry, error) {
	for _, s := range []struct {
		name string
		n    int
	}{
		{"open", len(open)},
		{"high", len(high)},
		{"low", len(low)},
		{"close", len(close)},
		{"volume", len(volume)},
	} {
		if s.n != len(axis) {
			return nil, &MismatchError{Series: s.name, Got: s.n, Want: len(axis)}
		}
	}

	entries := make([]model.PriceEntry, len(axis))
	for i, date := range axis {
		entries[i] = model.PriceEntry{date: model.PriceBar{
			Open:   open[i],
			High:   high[i],
			Low:    low[i],
			Close:  close[i],
			Volume: volume[i],
		}}
	}
	return entries, nil
}
