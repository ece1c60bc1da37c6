package align

import (
	"errors"
	"testing"

	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

func TestMerge(t *testing.T) {
	axis := model.TimeAxis{"2020-01-02", "2020-01-03", "2020-01-06"}
	entries, err := Merge(axis,
		model.MetricSeries{Name: "5-day", Values: []float64{1.1, 1.2, 1.3}},
		model.MetricSeries{Name: "10-day", Values: []float64{2.1, 2.2, 2.3}},
	)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if len(entries) != len(axis) {
		t.Fatalf("got %d entries, want %d", len(entries), len(axis))
	}
	for i, entry := range entries {
		values, ok := entry[axis[i]]
		if !ok {
			t.Fatalf("entry %d missing date %q", i, axis[i])
		}
		if len(values) != 2 {
			t.Errorf("entry %d has %d metrics, want 2", i, len(values))
		}
	}
	if entries[1]["2020-01-03"]["10-day"] != 2.2 {
		t.Errorf("entry 1 10-day = %v, want 2.2", entries[1]["2020-01-03"]["10-day"])
	}
}

func TestMergeEmptyAxis(t *testing.T) {
	entries, err := Merge(model.TimeAxis{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestMergeLengthMismatch(t *testing.T) {
	axis := model.TimeAxis{"2020-01-02", "2020-01-03"}

	tests := []struct {
		name   string
		series model.MetricSeries
	}{
		{"short", model.MetricSeries{Name: "rsi-14", Values: []float64{50}}},
		{"long", model.MetricSeries{Name: "rsi-14", Values: []float64{50, 51, 52}}},
		{"empty", model.MetricSeries{Name: "rsi-14", Values: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(axis, tt.series)
			var mismatch *MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("got %v, want MismatchError", err)
			}
			if mismatch.Series != "rsi-14" || mismatch.Want != 2 {
				t.Errorf("unexpected mismatch detail: %+v", mismatch)
			}
		})
	}
}

func TestPrices(t *testing.T) {
	axis := model.TimeAxis{"2020-01-02", "2020-01-03"}
	entries, err := Prices(axis,
		[]float64{100, 101},
		[]float64{102, 103},
		[]float64{99, 100},
		[]float64{101, 102},
		[]int64{1000, 1100},
	)
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	want0 := model.PriceBar{Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000}
	if bar := entries[0]["2020-01-02"]; bar != want0 {
		t.Errorf("entry 0 = %+v, want %+v", bar, want0)
	}
	want1 := model.PriceBar{Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100}
	if bar := entries[1]["2020-01-03"]; bar != want1 {
		t.Errorf("entry 1 = %+v, want %+v", bar, want1)
	}
}

func TestPricesLengthMismatch(t *testing.T) {
	axis := model.TimeAxis{"2020-01-02", "2020-01-03"}
	_, err := Prices(axis,
		[]float64{100, 101},
		[]float64{102, 103},
		[]float64{99},
		[]float64{101, 102},
		[]int64{1000, 1100},
	)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want MismatchError", err)
	}
	if mismatch.Series != "low" {
		t.Errorf("mismatch series = %q, want low", mismatch.Series)
	}
}
