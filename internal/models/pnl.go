package models

import (
	"time"
)

// DailyPNL is the realized PnL recorded for one UTC day
type DailyPNL struct {
	Date        time.Time `gorm:"primaryKey;type:date" json:"date"`
	PNL         float64   `gorm:"type:decimal(20,8);not null" json:"pnl"`
	LastUpdated time.Time `json:"last_updated"`
}

// TableName specifies the table name for DailyPNL model
func (DailyPNL) TableName() string {
	return "daily_pnl"
}

// WeeklyPNL sums a run of consecutive days inside one month
type WeeklyPNL struct {
	WeekStartDate time.Time `json:"week_start_date"`
	WeekEndDate   time.Time `json:"week_end_date"`
	WeeklyPNL     float64   `json:"weekly_pnl"`
	ActualDays    int       `json:"actual_days"`
	LastUpdated   time.Time `json:"last_updated"`
}

// MonthlySummary sums the daily PnL of one calendar month
type MonthlySummary struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	PNL          float64 `json:"pnl"`
	DailyAverage float64 `json:"daily_average"`
}

// HistoryData holds one day of the short income history
type HistoryData struct {
	Commission float64 `json:"commission"`
	PNL        float64 `json:"pnl"`
	Income     float64 `json:"income"`
	Multiplier float64 `json:"multiplier"`
}

// History is one day of the short income history
type History struct {
	Date time.Time   `json:"date"`
	Data HistoryData `json:"data"`
}
