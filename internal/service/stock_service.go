package service

import (
	"context"
	"fmt"

	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/internal/repository"
	"stock-analyzer/pkg/logger"
	"stock-analyzer/pkg/utils"
)

type StockService interface {
	ListStocks(ctx context.Context) ([]model.Stock, error)
	CreateStock(ctx context.Context, req *dto.CreateStockRequest) (*model.Stock, error)
}

type stockService struct {
	log       *logger.Logger
	stockRepo repository.StockRepository
}

func NewStockService(log *logger.Logger, repo *repository.Repository) StockService {
	return &stockService{
		log:       log,
		stockRepo: repo.StockRepo,
	}
}

func (s *stockService) ListStocks(ctx context.Context) ([]model.Stock, error) {
	stocks, err := s.stockRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return stocks, nil
}

var ErrStockAlreadyExists = fmt.Errorf("stock already exists")

func (s *stockService) CreateStock(ctx context.Context, req *dto.CreateStockRequest) (*model.Stock, error) {
	existing, err := s.stockRepo.GetByTicker(ctx, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing stock: %w", err)
	}
	if existing != nil {
		return nil, ErrStockAlreadyExists
	}

	stock := &model.Stock{
		Ticker:           req.Ticker,
		Name:             req.Name,
		Market:           dto.Market(req.Market),
		IsAnalysisTarget: true,
	}
	if req.Sector != "" {
		stock.Sector = utils.ToPointer(req.Sector)
	}

	if err := s.stockRepo.Create(ctx, stock); err != nil {
		return nil, fmt.Errorf("failed to create stock: %w", err)
	}

	s.log.InfoContext(ctx, "Stock registered",
		logger.StringField("ticker", stock.Ticker),
		logger.StringField("market", string(stock.Market)),
	)
	return stock, nil
}
