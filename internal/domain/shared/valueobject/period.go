package valueobject

import (
	"fmt"
	"time"
)

// BillingPeriod identifies the month a receipt bills for.
type BillingPeriod struct {
	month time.Month
	year  int
}

// NewBillingPeriod creates a BillingPeriod, validating month and year
func NewBillingPeriod(month, year int) (BillingPeriod, error) {
	if month < 1 || month > 12 {
		return BillingPeriod{}, fmt.Errorf("invalid month: %d", month)
	}
	if year < 2000 || year > 2200 {
		return BillingPeriod{}, fmt.Errorf("invalid year: %d", year)
	}
	return BillingPeriod{month: time.Month(month), year: year}, nil
}

// MustNewBillingPeriod creates a BillingPeriod, panicking on invalid input. Test helper.
func MustNewBillingPeriod(month, year int) BillingPeriod {
	p, err := NewBillingPeriod(month, year)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseBillingPeriod parses the "YYYY-MM" form
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BillingPeriod{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return NewBillingPeriod(int(t.Month()), t.Year())
}

// Month returns the period's month (1-12)
func (p BillingPeriod) Month() int {
	return int(p.month)
}

// Year returns the period's year
func (p BillingPeriod) Year() int {
	return p.year
}

// String returns the "YYYY-MM" form
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// FirstDay returns midnight on the first day of the period
func (p BillingPeriod) FirstDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, loc)
}

// LastDay returns midnight on the last day of the period's month,
// the default receipt due date.
func (p BillingPeriod) LastDay(loc *time.Location) time.Time {
	return p.FirstDay(loc).AddDate(0, 1, -1)
}

// Next returns the following billing period
func (p BillingPeriod) Next() BillingPeriod {
	if p.month == time.December {
		return BillingPeriod{month: time.January, year: p.year + 1}
	}
	return BillingPeriod{month: p.month + 1, year: p.year}
}

// Before reports whether p precedes other
func (p BillingPeriod) Before(other BillingPeriod) bool {
	if p.year != other.year {
		return p.year < other.year
	}
	return p.month < other.month
}

// Equals reports whether two periods are the same month
func (p BillingPeriod) Equals(other BillingPeriod) bool {
	return p.month == other.month && p.year == other.year
}
