package model

import "testing"

func TestResolutionLabels(t *testing.T) {
	tests := []struct {
		res        Resolution
		label      string
		priceLabel string
	}{
		{Daily, "daily", "daily_prices"},
		{Weekly, "weekly", "weekly_prices"},
		{Monthly, "monthly", "monthly_prices"},
		{Min15, "15min", "15min_prices"},
	}
	for _, tt := range tests {
		if got := tt.res.Label(); got != tt.label {
			t.Errorf("%s.Label() = %q, want %q", tt.res, got, tt.label)
		}
		if got := tt.res.PriceLabel(); got != tt.priceLabel {
			t.Errorf("%s.PriceLabel() = %q, want %q", tt.res, got, tt.priceLabel)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := Daily.PeriodLabel(10); got != "10-day" {
		t.Errorf("PeriodLabel = %q, want 10-day", got)
	}
	if got := Weekly.PeriodLabel(2); got != "2-week" {
		t.Errorf("PeriodLabel = %q, want 2-week", got)
	}
	if got := Monthly.PeriodLabel(5); got != "5-month" {
		t.Errorf("PeriodLabel = %q, want 5-month", got)
	}
}

func TestResolutionValid(t *testing.T) {
	for _, res := range []Resolution{Min1, Min5, Min15, Min30, Min60, Daily, Weekly, Monthly} {
		if !res.Valid() {
			t.Errorf("%s should be valid", res)
		}
	}
	if Resolution("X").Valid() {
		t.Error("X should be invalid")
	}
}
