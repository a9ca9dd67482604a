package models

import (
	"time"
)

// Trade represents one futures fill. The same type is returned by the
// exchange client and stored in the trade archive.
type Trade struct {
	RecordID      uint         `gorm:"primaryKey" json:"-"`
	Symbol        string       `gorm:"size:20;not null;uniqueIndex:idx_trade_identity" json:"symbol"`
	ID            int64        `gorm:"column:trade_id;not null;uniqueIndex:idx_trade_identity" json:"id"`
	OrderID       int64        `gorm:"not null;uniqueIndex:idx_trade_identity" json:"order_id"`
	Side          OrderSide    `gorm:"size:10;not null;uniqueIndex:idx_trade_identity" json:"side"`
	PositionSide  PositionSide `gorm:"size:10;not null;uniqueIndex:idx_trade_identity" json:"position_side"`
	Price         float64      `gorm:"type:decimal(20,8);not null" json:"price"`
	Quantity      float64      `gorm:"type:decimal(20,8);not null" json:"quantity"`
	RealizedPnl   float64      `gorm:"type:decimal(20,8)" json:"realized_pnl"`
	QuoteQuantity float64      `gorm:"type:decimal(20,8)" json:"quote_quantity"`
	Commission    float64      `gorm:"type:decimal(20,8)" json:"commission"`
	Buyer         bool         `gorm:"default:false" json:"buyer"`
	Maker         bool         `gorm:"default:false" json:"maker"`
	Time          time.Time    `gorm:"index;not null" json:"time"`
}

// TableName specifies the table name for Trade model
func (Trade) TableName() string {
	return "trade_details"
}
