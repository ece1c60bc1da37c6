package model

import "fmt"

// Resolution is the sampling interval of a series, using the provider's
// wire values ('1'..'60' for intraday minutes, 'D', 'W', 'M').
type Resolution string

const (
	Min1    Resolution = "1"
	Min5    Resolution = "5"
	Min15   Resolution = "15"
	Min30   Resolution = "30"
	Min60   Resolution = "60"
	Daily   Resolution = "D"
	Weekly  Resolution = "W"
	Monthly Resolution = "M"
)

// BarResolutions are the resolutions the assembler drives end to end.
var BarResolutions = []Resolution{Daily, Weekly, Monthly}

func (r Resolution) Valid() bool {
	switch r {
	case Min1, Min5, Min15, Min30, Min60, Daily, Weekly, Monthly:
		return true
	}
	return false
}

func (r Resolution) Intraday() bool {
	switch r {
	case Min1, Min5, Min15, Min30, Min60:
		return true
	}
	return false
}

// Label is the resolution key used inside the indicators document,
// e.g. "daily" under each indicator family.
func (r Resolution) Label() string {
	switch r {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return string(r) + "min"
	}
}

// PriceLabel is the key used inside the price document, e.g. "daily_prices".
func (r Resolution) PriceLabel() string {
	return r.Label() + "_prices"
}

// PeriodUnit is the unit suffix for parameter-derived metric labels,
// e.g. the "day" in "10-day".
func (r Resolution) PeriodUnit() string {
	switch r {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	default:
		return "bar"
	}
}

// PeriodLabel builds the metric key for a lookback period at this
// resolution, e.g. PeriodLabel(10) at Daily is "10-day".
func (r Resolution) PeriodLabel(period int) string {
	return fmt.Sprintf("%d-%s", period, r.PeriodUnit())
}
