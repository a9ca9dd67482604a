package analytics_test

import (
	"testing"
	"time"

	"github.com/binance-dashboard/internal/analytics"
	"github.com/binance-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daily(y int, m time.Month, d int, pnl float64) models.DailyPNL {
	return models.DailyPNL{Date: date(y, m, d), PNL: pnl}
}

func TestWeeklySummaries_BreaksOnGaps(t *testing.T) {
	got := analytics.WeeklySummaries([]models.DailyPNL{
		daily(2024, 1, 1, 100),
		daily(2024, 1, 2, 200),
		daily(2024, 1, 3, 300),
		daily(2024, 1, 8, 400),
	})

	require.Len(t, got, 2)
	assert.Equal(t, date(2024, 1, 1), got[0].WeekStartDate)
	assert.Equal(t, date(2024, 1, 3), got[0].WeekEndDate)
	assert.Equal(t, 600.0, got[0].WeeklyPNL)
	assert.Equal(t, 3, got[0].ActualDays)
	assert.Equal(t, date(2024, 1, 8), got[1].WeekStartDate)
	assert.Equal(t, 1, got[1].ActualDays)
}

func TestWeeklySummaries_BreaksOnMonthBoundary(t *testing.T) {
	got := analytics.WeeklySummaries([]models.DailyPNL{
		daily(2024, 1, 30, 10),
		daily(2024, 1, 31, 20),
		daily(2024, 2, 1, 30),
		daily(2024, 2, 2, 40),
	})

	require.Len(t, got, 2)
	assert.Equal(t, 30.0, got[0].WeeklyPNL)
	assert.Equal(t, date(2024, 1, 31), got[0].WeekEndDate)
	assert.Equal(t, 70.0, got[1].WeeklyPNL)
	assert.Equal(t, date(2024, 2, 1), got[1].WeekStartDate)
}

func TestWeeklySummaries_SortsAndKeepsLatestUpdate(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	second := daily(2024, 1, 2, 5)
	second.LastUpdated = stamp

	got := analytics.WeeklySummaries([]models.DailyPNL{second, daily(2024, 1, 1, 5)})

	require.Len(t, got, 1)
	assert.Equal(t, date(2024, 1, 1), got[0].WeekStartDate)
	assert.Equal(t, stamp, got[0].LastUpdated)
}

func TestWeeklySummaries_NilAndEmpty(t *testing.T) {
	assert.Nil(t, analytics.WeeklySummaries(nil))

	got := analytics.WeeklySummaries([]models.DailyPNL{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMonthlySummaries(t *testing.T) {
	got := analytics.MonthlySummaries([]models.DailyPNL{
		daily(2024, 1, 2, 200),
		daily(2023, 12, 31, 50),
		daily(2024, 1, 1, 100),
		daily(2024, 2, 1, -30),
	})

	require.Len(t, got, 3)
	assert.Equal(t, models.MonthlySummary{Month: 12, Year: 2023, PNL: 50, DailyAverage: 50}, got[0])
	assert.Equal(t, models.MonthlySummary{Month: 1, Year: 2024, PNL: 300, DailyAverage: 150}, got[1])
	assert.Equal(t, models.MonthlySummary{Month: 2, Year: 2024, PNL: -30, DailyAverage: -30}, got[2])
}

func TestMonthlySummaries_Empty(t *testing.T) {
	assert.Empty(t, analytics.MonthlySummaries(nil))
}
