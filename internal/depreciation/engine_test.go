package depreciation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrentValueNoElapsedTime(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	require.Equal(t, 1000.0, engine.CurrentValue(1000, now, now))
}

func TestCurrentValueFutureAcquisition(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	require.Equal(t, 1000.0, engine.CurrentValue(1000, now.AddDate(0, 0, 10), now))
}

func TestCurrentValueFullyDepreciated(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	got := engine.CurrentValue(1000, now.AddDate(-5, 0, 0), now)
	require.InDelta(t, 0, got, 1.0)
}

func TestCurrentValueOneYearOnFiveYearLife(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	got := engine.CurrentValue(1000, now.AddDate(-1, 0, 0), now)
	require.InDelta(t, 800, got, 1.0)
}

func TestCurrentValueClampedToZeroPastUsefulLife(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	require.Equal(t, 0.0, engine.CurrentValue(1000, now.AddDate(-20, 0, 0), now))
}

func TestCurrentValueZeroPurchase(t *testing.T) {
	engine := NewEngine(5)
	now := time.Now()

	require.Equal(t, 0.0, engine.CurrentValue(0, now.AddDate(-1, 0, 0), now))
	require.Equal(t, 0.0, engine.CurrentValue(-10, now.AddDate(-1, 0, 0), now))
}

func TestCurrentValueMonotoneNonIncreasing(t *testing.T) {
	engine := NewEngine(5)
	acquired := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	previous := engine.CurrentValue(1500, acquired, acquired)
	for days := 1; days <= 2200; days += 30 {
		at := acquired.AddDate(0, 0, days)
		value := engine.CurrentValue(1500, acquired, at)
		require.LessOrEqual(t, value, previous)
		require.GreaterOrEqual(t, value, 0.0)
		require.LessOrEqual(t, value, 1500.0)
		previous = value
	}
}

func TestNewEngineDefaultsUsefulLife(t *testing.T) {
	require.Equal(t, DefaultUsefulLifeYears, NewEngine(0).UsefulLifeYears())
	require.Equal(t, 10, NewEngine(10).UsefulLifeYears())
}

func TestParseAcquisitionDate(t *testing.T) {
	got, err := ParseAcquisitionDate("2023-04-15")
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseAcquisitionDate("15/04/2023")
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseAcquisitionDateInvalid(t *testing.T) {
	_, err := ParseAcquisitionDate("")
	require.ErrorIs(t, err, ErrInvalidAcquisitionDate)

	_, err = ParseAcquisitionDate("not-a-date")
	require.ErrorIs(t, err, ErrInvalidAcquisitionDate)
}

func TestMonthlyScheduleEndsAtZero(t *testing.T) {
	engine := NewEngine(5)
	acquired := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	entries := engine.MonthlySchedule(1200, acquired)
	require.NotEmpty(t, entries)
	require.LessOrEqual(t, len(entries), 61)

	last := entries[len(entries)-1]
	require.InDelta(t, 0, last.Remaining, 1.0)
	require.InDelta(t, 1200, last.Accumulated, 1.0)

	for i := 1; i < len(entries); i++ {
		require.LessOrEqual(t, entries[i].Remaining, entries[i-1].Remaining)
	}
}

func TestMonthlyScheduleEmptyForZeroPurchase(t *testing.T) {
	engine := NewEngine(5)
	require.Nil(t, engine.MonthlySchedule(0, time.Now()))
}
