package repository

import (
	"stock-analyzer/config"
	"stock-analyzer/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	StockRepo        StockRepository
	AnalysisRepo     AnalysisRepository
	PriceHistoryRepo PriceHistoryRepository
	BatchJobLogRepo  BatchJobLogRepository
	PortfolioRepo    PortfolioRepository
	YahooFinanceRepo YahooFinanceRepository
	GeminiAIRepo     AIRepository
	UnitOfWork       UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	geminiAIRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		StockRepo:        NewStockRepository(db),
		AnalysisRepo:     NewAnalysisRepository(db),
		PriceHistoryRepo: NewPriceHistoryRepository(db),
		BatchJobLogRepo:  NewBatchJobLogRepository(db),
		PortfolioRepo:    NewPortfolioRepository(db),
		YahooFinanceRepo: NewYahooFinanceRepository(cfg, log),
		GeminiAIRepo:     geminiAIRepo,
		UnitOfWork:       NewUnitOfWork(db),
	}, nil
}
