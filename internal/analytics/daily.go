// Package analytics derives dashboard summaries from persisted daily series
// and live income records.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/binance-dashboard/internal/models"
)

// ErrEmptyUpstreamData is returned when a persisted series has no entry to
// overwrite with live data.
var ErrEmptyUpstreamData = errors.New("empty upstream data")

// DayOf returns the UTC calendar day containing t
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RealizedByDay sums realized income per UTC day
func RealizedByDay(income []models.IncomeRecord) map[time.Time]float64 {
	byDay := make(map[time.Time]float64)
	for _, r := range income {
		if r.IsRealized() {
			byDay[DayOf(r.Time)] += r.Income
		}
	}
	return byDay
}

// TodayRealizedPNL sums the realized income booked on the UTC day of now
func TodayRealizedPNL(income []models.IncomeRecord, now time.Time) float64 {
	return RealizedByDay(income)[DayOf(now)]
}

// MergeDailyPNL returns a copy of the persisted series with its latest entry
// recomputed from today's realized income.
func MergeDailyPNL(persisted []models.DailyPNL, income []models.IncomeRecord, now time.Time) ([]models.DailyPNL, error) {
	if len(persisted) == 0 {
		return nil, fmt.Errorf("daily pnl: %w", ErrEmptyUpstreamData)
	}

	out := make([]models.DailyPNL, len(persisted))
	copy(out, persisted)

	last := &out[len(out)-1]
	last.PNL = TodayRealizedPNL(income, now)
	last.LastUpdated = now
	return out, nil
}

// MergeBalanceSnapshots returns a copy of the persisted snapshots with the
// latest balance replaced by the live one.
func MergeBalanceSnapshots(persisted []models.BalanceSnapshot, live models.Balance) ([]models.BalanceSnapshot, error) {
	if len(persisted) == 0 {
		return nil, fmt.Errorf("balance snapshot: %w", ErrEmptyUpstreamData)
	}

	out := make([]models.BalanceSnapshot, len(persisted))
	copy(out, persisted)
	out[len(out)-1].Balance = live.Balance
	return out, nil
}
