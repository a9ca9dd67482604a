package analytics

import (
	"sort"
	"time"

	"github.com/binance-dashboard/internal/models"
)

// WeeklySummaries groups daily records into runs of consecutive days. A run
// also ends when the month changes, so a "week" never spans two months.
func WeeklySummaries(daily []models.DailyPNL) []models.WeeklyPNL {
	if daily == nil {
		return nil
	}

	sorted := sortedByDate(daily)
	weeks := make([]models.WeeklyPNL, 0)

	var (
		current *models.WeeklyPNL
		prev    time.Time
	)
	for _, d := range sorted {
		day := DayOf(d.Date)
		if current == nil || !continuesRun(prev, day) {
			if current != nil {
				weeks = append(weeks, *current)
			}
			current = &models.WeeklyPNL{WeekStartDate: day}
		}

		current.WeekEndDate = day
		current.WeeklyPNL += d.PNL
		current.ActualDays++
		if d.LastUpdated.After(current.LastUpdated) {
			current.LastUpdated = d.LastUpdated
		}
		prev = day
	}
	if current != nil {
		weeks = append(weeks, *current)
	}
	return weeks
}

func continuesRun(prev, next time.Time) bool {
	if next.Year() != prev.Year() || next.Month() != prev.Month() {
		return false
	}
	return !next.After(prev.AddDate(0, 0, 1))
}

type monthKey struct {
	year  int
	month time.Month
}

// MonthlySummaries sums daily PnL per calendar month, oldest first. The
// daily average divides by the number of recorded days.
func MonthlySummaries(daily []models.DailyPNL) []models.MonthlySummary {
	totals := make(map[monthKey]float64)
	counts := make(map[monthKey]int)
	var keys []monthKey

	for _, d := range daily {
		k := monthKey{year: d.Date.UTC().Year(), month: d.Date.UTC().Month()}
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		totals[k] += d.PNL
		counts[k]++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]models.MonthlySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthlySummary{
			Month:        int(k.month),
			Year:         k.year,
			PNL:          totals[k],
			DailyAverage: totals[k] / float64(counts[k]),
		})
	}
	return out
}

func sortedByDate(daily []models.DailyPNL) []models.DailyPNL {
	out := make([]models.DailyPNL, len(daily))
	copy(out, daily)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
