package repository

import (
	"context"

	"github.com/binance-dashboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeriesRepository handles the per-day balance and PnL series
type SeriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new SeriesRepository
func NewSeriesRepository(db *gorm.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// GetBalanceSnapshot retrieves all balance snapshots ordered by date
func (r *SeriesRepository) GetBalanceSnapshot(ctx context.Context) ([]models.BalanceSnapshot, error) {
	var snapshots []models.BalanceSnapshot
	result := r.db.WithContext(ctx).Order("date ASC").Find(&snapshots)
	return snapshots, result.Error
}

// UpsertBalanceSnapshot records the balance for snapshot.Date, replacing an
// existing value for that day
func (r *SeriesRepository) UpsertBalanceSnapshot(ctx context.Context, snapshot models.BalanceSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance"}),
		}).
		Create(&snapshot).Error
}

// GetDailyPNL retrieves the daily PnL series ordered by date
func (r *SeriesRepository) GetDailyPNL(ctx context.Context) ([]models.DailyPNL, error) {
	var daily []models.DailyPNL
	result := r.db.WithContext(ctx).Order("date ASC").Find(&daily)
	return daily, result.Error
}

// UpsertDailyPNL records the PnL for entry.Date, replacing an existing value
// for that day
func (r *SeriesRepository) UpsertDailyPNL(ctx context.Context, entry models.DailyPNL) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"pnl", "last_updated"}),
		}).
		Create(&entry).Error
}

// AutoMigrate creates or updates the archive tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Trade{},
		&models.IncomeRecord{},
		&models.BalanceSnapshot{},
		&models.DailyPNL{},
	)
}
