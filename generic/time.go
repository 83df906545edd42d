package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date abstraction
// =============================================================================

// TimePoint is a calendar date. Contracts start and end on a TimePoint.
type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Properties
func (tp TimePoint) Year() int            { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month    { return tp.Time.Month() }
func (tp TimePoint) Day() int             { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool         { return tp.Time.IsZero() }
func (tp TimePoint) String() string       { return tp.Time.Format("2006-01-02") }
func (tp TimePoint) BillingMonth() BillingMonth { return MonthOf(tp.Time) }

// =============================================================================
// BILLING MONTH - The unit a bill covers
// =============================================================================

// BillingMonth identifies one calendar month. Bills are keyed by it.
type BillingMonth struct {
	Year  int
	Month time.Month
}

func NewBillingMonth(year int, month time.Month) BillingMonth {
	return BillingMonth{Year: year, Month: month}
}

// MonthOf returns the billing month containing t.
func MonthOf(t time.Time) BillingMonth {
	return BillingMonth{Year: t.Year(), Month: t.Month()}
}

func (m BillingMonth) Before(other BillingMonth) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Next returns the following calendar month.
func (m BillingMonth) Next() BillingMonth {
	if m.Month == time.December {
		return BillingMonth{Year: m.Year + 1, Month: time.January}
	}
	return BillingMonth{Year: m.Year, Month: m.Month + 1}
}

func (m BillingMonth) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// =============================================================================
// CLOCK - Source of "today" for date-dependent settlements
// =============================================================================

// Clock reports the current date. Term settlements depend on it, so it is
// injected rather than read from the wall clock directly.
type Clock interface {
	Today() TimePoint
}

// SystemClock reads the wall clock (UTC).
type SystemClock struct{}

func (SystemClock) Today() TimePoint {
	now := time.Now().UTC()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// FixedClock always reports the same date. Used by tests and by the
// `clock.today` config override.
type FixedClock struct {
	Date TimePoint
}

func (c FixedClock) Today() TimePoint { return c.Date }
