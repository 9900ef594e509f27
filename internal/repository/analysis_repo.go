package repository

import (
	"context"
	"errors"
	"time"

	"stock-analyzer/internal/model"
	"stock-analyzer/pkg/utils"

	"gorm.io/gorm"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *model.Analysis, opts ...utils.DBOption) error
	GetLatestPerStock(ctx context.Context, param model.GetLatestAnalysesParam) ([]model.Analysis, error)
	GetByDay(ctx context.Context, day time.Time) ([]model.Analysis, error)
	GetByID(ctx context.Context, id uint) (*model.Analysis, error)
	GetLatestByStockID(ctx context.Context, stockID uint) (*model.Analysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *model.Analysis, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(analysis).Error
}

// GetLatestPerStock dedupes by stock, keeping the row with the most recent
// analysis_date, then applies optional market and recommendation filters.
func (r *analysisRepository) GetLatestPerStock(ctx context.Context, param model.GetLatestAnalysesParam) ([]model.Analysis, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Raw(`
		WITH ranked AS (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY stock_id ORDER BY analysis_date DESC, id DESC) AS rn
			FROM analyses
		)
		SELECT id FROM ranked WHERE rn = 1`).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.id = analyses.stock_id").
		Where("analyses.id IN ?", ids)
	if param.Market != "" {
		query = query.Where("stocks.market = ?", param.Market)
	}
	if param.Recommendation != "" {
		query = query.Where("analyses.recommendation = ?", param.Recommendation)
	}

	var analyses []model.Analysis
	err = query.Preload("Stock").
		Order("analyses.analysis_date DESC, analyses.id DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepository) GetByDay(ctx context.Context, day time.Time) ([]model.Analysis, error) {
	start := utils.TruncateToDay(day)
	end := start.AddDate(0, 0, 1)

	var analyses []model.Analysis
	err := r.db.WithContext(ctx).
		Where("analysis_date >= ? AND analysis_date < ?", start, end).
		Preload("Stock").
		Order("analysis_date DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id uint) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.WithContext(ctx).Preload("Stock").First(&analysis, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) GetLatestByStockID(ctx context.Context, stockID uint) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("analysis_date DESC, id DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}
