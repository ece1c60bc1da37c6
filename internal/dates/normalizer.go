// Package dates converts provider epoch timestamps into the calendar date
// keys that all per-resolution series are joined on.
package dates

import (
	"fmt"
	"time"

	"github.com/ajsalagundi/Stock-Intelligence/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"

	// Defaults reproduce the historical ingestion convention: the provider
	// stamps bars in UTC while the operator's charts are CST, and weekly /
	// monthly bar dates are nudged to match the thinkorswim charting axis.
	DefaultTZOffsetHours   = 6
	DefaultWeeklyShiftDays = 1
	DefaultMonthlyShift    = -2
)

// Normalizer turns epoch seconds into date keys. The offset and the
// per-resolution shifts are operator configuration, not derived rules.
type Normalizer struct {
	TZOffset     time.Duration
	WeeklyShift  int // calendar days added to weekly bar dates
	MonthlyShift int // calendar days added to monthly bar dates
}

// Default returns a Normalizer with the historical constants.
func Default() Normalizer {
	return Normalizer{
		TZOffset:     DefaultTZOffsetHours * time.Hour,
		WeeklyShift:  DefaultWeeklyShiftDays,
		MonthlyShift: DefaultMonthlyShift,
	}
}

// Validate rejects offsets and shifts outside any plausible charting
// convention.
func (n Normalizer) Validate() error {
	if n.TZOffset < -14*time.Hour || n.TZOffset > 14*time.Hour {
		return fmt.Errorf("tz offset %s out of range", n.TZOffset)
	}
	if n.WeeklyShift < -7 || n.WeeklyShift > 7 {
		return fmt.Errorf("weekly shift %d days out of range", n.WeeklyShift)
	}
	if n.MonthlyShift < -7 || n.MonthlyShift > 7 {
		return fmt.Errorf("monthly shift %d days out of range", n.MonthlyShift)
	}
	return nil
}

// DateKey formats an epoch as YYYY-MM-DD after applying the timezone offset
// and the resolution's date shift. Pure and deterministic.
func (n Normalizer) DateKey(epoch int64, res model.Resolution) string {
	t := time.Unix(epoch, 0).UTC().Add(n.TZOffset)
	switch res {
	case model.Weekly:
		t = t.AddDate(0, 0, n.WeeklyShift)
	case model.Monthly:
		t = t.AddDate(0, 0, n.MonthlyShift)
	}
	return t.Format(dateLayout)
}

// DateTimeKey formats an epoch as 'YYYY-MM-DD HH:MM:SS' with the timezone
// offset applied. Used for news timestamps; no resolution shift.
func (n Normalizer) DateTimeKey(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Add(n.TZOffset).Format(dateTimeLayout)
}

// Axis converts a resolution's epoch list into its TimeAxis, preserving
// provider order.
func (n Normalizer) Axis(epochs []int64, res model.Resolution) model.TimeAxis {
	axis := make(model.TimeAxis, len(epochs))
	for i, e := range epochs {
		axis[i] = n.DateKey(e, res)
	}
	return axis
}
