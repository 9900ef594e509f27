package repository

import (
	"context"
	"errors"

	"stock-analyzer/internal/model"

	"gorm.io/gorm"
)

type BatchJobLogRepository interface {
	Create(ctx context.Context, log *model.BatchJobLog) error
	GetLatest(ctx context.Context) (*model.BatchJobLog, error)
}

type batchJobLogRepository struct {
	db *gorm.DB
}

func NewBatchJobLogRepository(db *gorm.DB) BatchJobLogRepository {
	return &batchJobLogRepository{db: db}
}

func (r *batchJobLogRepository) Create(ctx context.Context, log *model.BatchJobLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetLatest returns the most recent run, or nil when no batch has run yet.
func (r *batchJobLogRepository) GetLatest(ctx context.Context) (*model.BatchJobLog, error) {
	var log model.BatchJobLog
	err := r.db.WithContext(ctx).Order("job_date DESC, id DESC").First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
