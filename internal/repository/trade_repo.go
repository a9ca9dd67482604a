package repository

import (
	"context"

	"github.com/binance-dashboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

// TradeRepository handles the archived fills
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// GetAllAccountTrades retrieves every archived fill, oldest first
func (r *TradeRepository) GetAllAccountTrades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.WithContext(ctx).Order("time ASC").Find(&trades)
	return trades, result.Error
}

// SaveTrades archives fills. Fills already present (same identity) are
// skipped. Returns the number of new rows.
func (r *TradeRepository) SaveTrades(ctx context.Context, trades []models.Trade) (int64, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	rows := make([]models.Trade, len(trades))
	copy(rows, trades)
	for i := range rows {
		rows[i].RecordID = 0
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, insertBatchSize)
	return result.RowsAffected, result.Error
}
