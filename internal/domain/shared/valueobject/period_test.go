package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillingPeriod(t *testing.T) {
	p, err := NewBillingPeriod(3, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Month())
	assert.Equal(t, 2026, p.Year())

	_, err = NewBillingPeriod(0, 2026)
	assert.Error(t, err)
	_, err = NewBillingPeriod(13, 2026)
	assert.Error(t, err)
	_, err = NewBillingPeriod(1, 1800)
	assert.Error(t, err)
}

func TestParseBillingPeriod(t *testing.T) {
	p, err := ParseBillingPeriod("2026-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-07", p.String())

	_, err = ParseBillingPeriod("07/2026")
	assert.Error(t, err)
}

func TestBillingPeriod_LastDay(t *testing.T) {
	tests := []struct {
		month, year int
		wantDay     int
	}{
		{1, 2026, 31},
		{4, 2026, 30},
		{2, 2026, 28},
		{2, 2028, 29}, // leap year
	}

	for _, tt := range tests {
		p := MustNewBillingPeriod(tt.month, tt.year)
		last := p.LastDay(time.UTC)
		assert.Equal(t, tt.wantDay, last.Day(), p.String())
		assert.Equal(t, tt.month, int(last.Month()))
	}
}

func TestBillingPeriod_NextAndOrdering(t *testing.T) {
	dec := MustNewBillingPeriod(12, 2025)
	jan := dec.Next()
	assert.Equal(t, "2026-01", jan.String())
	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(dec))
	assert.True(t, jan.Equals(MustNewBillingPeriod(1, 2026)))
}
