package analytics

import (
	"sort"
	"time"

	"github.com/binance-dashboard/internal/models"
)

const (
	// HistoryDays is the trailing window of the short income history
	HistoryDays = 6
	// IncomeMultiplier scales daily income into the multiplier column
	IncomeMultiplier = 10
)

// History buckets income records from the last days into UTC days. Fees
// (commission and funding) and realized PnL are reported separately.
func History(income []models.IncomeRecord, now time.Time, days int) []models.History {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	byDay := make(map[time.Time]*models.HistoryData)

	for _, r := range income {
		if r.Time.Before(cutoff) {
			continue
		}

		var fee, pnl float64
		switch r.IncomeType {
		case models.IncomeTypeCommission, models.IncomeTypeFundingFee:
			fee = r.Income
		case models.IncomeTypeRealizedPnl:
			pnl = r.Income
		default:
			continue
		}

		day := DayOf(r.Time)
		data, ok := byDay[day]
		if !ok {
			data = &models.HistoryData{}
			byDay[day] = data
		}
		data.Commission += fee
		data.PNL += pnl
	}

	out := make([]models.History, 0, len(byDay))
	for day, data := range byDay {
		data.Income = data.Commission + data.PNL
		data.Multiplier = data.Income * IncomeMultiplier
		out = append(out, models.History{Date: day, Data: *data})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
