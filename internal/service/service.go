package service

import (
	"stock-analyzer/config"
	"stock-analyzer/internal/repository"
	"stock-analyzer/pkg/cache"
	"stock-analyzer/pkg/logger"
)

type Service struct {
	BatchService     BatchService
	AnalysisService  AnalysisService
	StockService     StockService
	PortfolioService PortfolioService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	c cache.Cache,
	repo *repository.Repository,
) *Service {
	batchService := NewBatchService(cfg, log, c, repo)
	analysisService := NewAnalysisService(cfg, log, c, repo)
	stockService := NewStockService(log, repo)
	portfolioService := NewPortfolioService(cfg, log, repo)
	schedulerService := NewSchedulerService(cfg, log, batchService, portfolioService)

	return &Service{
		BatchService:     batchService,
		AnalysisService:  analysisService,
		StockService:     stockService,
		PortfolioService: portfolioService,
		SchedulerService: schedulerService,
	}
}
