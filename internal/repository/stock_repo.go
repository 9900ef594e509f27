package repository

import (
	"context"
	"errors"

	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/pkg/utils"

	"gorm.io/gorm"
)

type StockRepository interface {
	GetAnalysisTargets(ctx context.Context) ([]model.Stock, error)
	GetByID(ctx context.Context, id uint) (*model.Stock, error)
	GetByTicker(ctx context.Context, ticker string) (*model.Stock, error)
	List(ctx context.Context) ([]model.Stock, error)
	Create(ctx context.Context, stock *model.Stock) error
	UpdateFundamentals(ctx context.Context, stockID uint, data *dto.StockData, opts ...utils.DBOption) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

// GetAnalysisTargets returns the stocks currently flagged for AI analysis,
// ordered by ticker. An empty slice is a valid outcome.
func (r *stockRepository) GetAnalysisTargets(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.WithContext(ctx).
		Where("is_analysis_target = ?", true).
		Order("ticker ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepository) GetByID(ctx context.Context, id uint) (*model.Stock, error) {
	var stock model.Stock
	if err := r.db.WithContext(ctx).First(&stock, id).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) GetByTicker(ctx context.Context, ticker string) (*model.Stock, error) {
	var stock model.Stock
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) List(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	if err := r.db.WithContext(ctx).Order("ticker ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepository) Create(ctx context.Context, stock *model.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

// UpdateFundamentals refreshes company attributes from a fetched snapshot.
// Name and sector are only overwritten when the provider returned them.
func (r *stockRepository) UpdateFundamentals(ctx context.Context, stockID uint, data *dto.StockData, opts ...utils.DBOption) error {
	updates := map[string]interface{}{}
	if data.Name != "" {
		updates["name"] = data.Name
	}
	if data.Sector != "" {
		updates["sector"] = data.Sector
	}
	if data.MarketCap != nil {
		updates["market_cap"] = *data.MarketCap
	}
	if len(updates) == 0 {
		return nil
	}
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.Stock{}).
		Where("id = ?", stockID).
		Updates(updates).Error
}
