package models

import (
	"time"
)

// Income types returned by the futures income endpoint
const (
	IncomeTypeRealizedPnl = "REALIZED_PNL"
	IncomeTypeCommission  = "COMMISSION"
	IncomeTypeFundingFee  = "FUNDING_FEE"
	IncomeTypeTransfer    = "TRANSFER"
)

// IncomeRecord is one account ledger entry
type IncomeRecord struct {
	RecordID   uint      `gorm:"primaryKey" json:"-"`
	Symbol     string    `gorm:"size:20;index" json:"symbol"`
	IncomeType string    `gorm:"size:30;not null;uniqueIndex:idx_income_identity" json:"income_type"`
	Income     float64   `gorm:"type:decimal(20,8);not null" json:"income"`
	Asset      string    `gorm:"size:10" json:"asset"`
	Info       string    `gorm:"size:100" json:"info"`
	Time       time.Time `gorm:"index;not null" json:"time"`
	TranID     int64     `gorm:"not null;uniqueIndex:idx_income_identity" json:"tran_id"`
	TradeID    string    `gorm:"size:30" json:"trade_id"`
}

// TableName specifies the table name for IncomeRecord model
func (IncomeRecord) TableName() string {
	return "income_history"
}

// IsRealized reports whether the entry counts towards realized daily PnL
func (r IncomeRecord) IsRealized() bool {
	switch r.IncomeType {
	case IncomeTypeRealizedPnl, IncomeTypeCommission, IncomeTypeFundingFee:
		return true
	}
	return false
}
