package models

import (
	"time"
)

// Balance is the current USDT wallet balance
type Balance struct {
	Balance    float64   `json:"balance"`
	UpdateTime time.Time `json:"update_time"`
}

// BalanceSnapshot is the wallet balance recorded for one day
type BalanceSnapshot struct {
	Date    time.Time `gorm:"primaryKey;type:date" json:"date"`
	Balance float64   `gorm:"type:decimal(20,8);not null" json:"balance"`
}

// TableName specifies the table name for BalanceSnapshot model
func (BalanceSnapshot) TableName() string {
	return "balance_snapshots"
}
