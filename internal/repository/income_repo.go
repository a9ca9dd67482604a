package repository

import (
	"context"
	"time"

	"github.com/binance-dashboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IncomeRepository handles the archived income ledger
type IncomeRepository struct {
	db *gorm.DB
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(db *gorm.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// GetAllIncomeHistory retrieves income booked at or after since, oldest first
func (r *IncomeRepository) GetAllIncomeHistory(ctx context.Context, since time.Time) ([]models.IncomeRecord, error) {
	var records []models.IncomeRecord
	result := r.db.WithContext(ctx).
		Where("time >= ?", since).
		Order("time ASC").
		Find(&records)
	return records, result.Error
}

// SaveIncome archives income entries, skipping ones already stored
func (r *IncomeRepository) SaveIncome(ctx context.Context, records []models.IncomeRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]models.IncomeRecord, len(records))
	copy(rows, records)
	for i := range rows {
		rows[i].RecordID = 0
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, insertBatchSize)
	return result.RowsAffected, result.Error
}
