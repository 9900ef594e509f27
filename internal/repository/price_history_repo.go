package repository

import (
	"context"

	"stock-analyzer/internal/model"
	"stock-analyzer/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PriceHistoryRepository interface {
	UpsertBatch(ctx context.Context, candles []model.PriceHistory, opts ...utils.DBOption) error
	GetRecent(ctx context.Context, stockID uint, limit int) ([]model.PriceHistory, error)
}

type priceHistoryRepository struct {
	db *gorm.DB
}

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// UpsertBatch inserts candles, overwriting OHLCV on (stock_id, date) conflict.
// Re-fetching the same day is last-write-wins, never a duplicate row.
func (r *priceHistoryRepository) UpsertBatch(ctx context.Context, candles []model.PriceHistory, opts ...utils.DBOption) error {
	if len(candles) == 0 {
		return nil
	}
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stock_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "updated_at"}),
		}).
		Create(&candles).Error
}

func (r *priceHistoryRepository) GetRecent(ctx context.Context, stockID uint, limit int) ([]model.PriceHistory, error) {
	var candles []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("date DESC").
		Limit(limit).
		Find(&candles).Error
	if err != nil {
		return nil, err
	}
	return candles, nil
}
