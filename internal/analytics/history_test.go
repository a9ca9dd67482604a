package analytics_test

import (
	"testing"
	"time"

	"github.com/binance-dashboard/internal/analytics"
	"github.com/binance-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func income(kind string, amount float64, at time.Time) models.IncomeRecord {
	return models.IncomeRecord{IncomeType: kind, Income: amount, Time: at}
}

func TestHistory_GroupsByDay(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	records := []models.IncomeRecord{
		income(models.IncomeTypeFundingFee, 30, yesterday),
		income(models.IncomeTypeCommission, 20, yesterday),
		income(models.IncomeTypeRealizedPnl, 100, yesterday),
		income(models.IncomeTypeRealizedPnl, 7, now),
		income(models.IncomeTypeTransfer, 500, now),
	}

	got := analytics.History(records, now, analytics.HistoryDays)

	require.Len(t, got, 2)
	assert.Equal(t, analytics.DayOf(yesterday), got[0].Date)
	assert.Equal(t, 50.0, got[0].Data.Commission)
	assert.Equal(t, 100.0, got[0].Data.PNL)
	assert.Equal(t, 150.0, got[0].Data.Income)
	assert.Equal(t, 1500.0, got[0].Data.Multiplier)
	assert.Equal(t, 7.0, got[1].Data.Income)
}

func TestHistory_DropsRecordsBeforeWindow(t *testing.T) {
	records := []models.IncomeRecord{
		income(models.IncomeTypeFundingFee, 50, now.AddDate(0, 0, -analytics.HistoryDays-1)),
	}

	got := analytics.History(records, now, analytics.HistoryDays)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistory_Empty(t *testing.T) {
	assert.Empty(t, analytics.History(nil, now, analytics.HistoryDays))
}
