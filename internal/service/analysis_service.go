package service

import (
	"context"
	"fmt"
	"time"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/internal/repository"
	"stock-analyzer/pkg/cache"
	"stock-analyzer/pkg/logger"
)

type AnalysisService interface {
	GetLatestAnalyses(ctx context.Context, req *dto.GetLatestAnalysesRequest) ([]model.Analysis, error)
	GetAnalysesByDay(ctx context.Context, day time.Time) ([]model.Analysis, error)
	GetAnalysisDetail(ctx context.Context, id uint) (*AnalysisDetail, error)
}

// AnalysisDetail bundles one analysis with the candle window behind it.
type AnalysisDetail struct {
	Analysis     model.Analysis       `json:"analysis"`
	PriceHistory []model.PriceHistory `json:"price_history"`
}

type analysisService struct {
	cfg              *config.Config
	log              *logger.Logger
	cache            cache.Cache
	analysisRepo     repository.AnalysisRepository
	priceHistoryRepo repository.PriceHistoryRepository
}

func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	c cache.Cache,
	repo *repository.Repository,
) AnalysisService {
	return &analysisService{
		cfg:              cfg,
		log:              log,
		cache:            c,
		analysisRepo:     repo.AnalysisRepo,
		priceHistoryRepo: repo.PriceHistoryRepo,
	}
}

func (s *analysisService) GetLatestAnalyses(ctx context.Context, req *dto.GetLatestAnalysesRequest) ([]model.Analysis, error) {
	cacheKey := fmt.Sprintf("analyses:latest:%s:%s", req.Market, req.Recommendation)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if analyses, ok := cached.([]model.Analysis); ok {
			return analyses, nil
		}
	}

	analyses, err := s.analysisRepo.GetLatestPerStock(ctx, model.GetLatestAnalysesParam{
		Market:         dto.Market(req.Market),
		Recommendation: dto.Recommendation(req.Recommendation),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analyses: %w", err)
	}

	s.cache.Set(cacheKey, analyses, s.cfg.Cache.DefaultExpiration)
	return analyses, nil
}

func (s *analysisService) GetAnalysesByDay(ctx context.Context, day time.Time) ([]model.Analysis, error) {
	analyses, err := s.analysisRepo.GetByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses for day: %w", err)
	}
	return analyses, nil
}

func (s *analysisService) GetAnalysisDetail(ctx context.Context, id uint) (*AnalysisDetail, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil {
		return nil, nil
	}

	history, err := s.priceHistoryRepo.GetRecent(ctx, analysis.StockID, s.cfg.YahooFinance.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}

	return &AnalysisDetail{
		Analysis:     *analysis,
		PriceHistory: history,
	}, nil
}
