package service

import (
	"context"
	"fmt"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/internal/repository"
	"stock-analyzer/pkg/logger"
)

type PortfolioService interface {
	GetProposals(ctx context.Context, portfolioID uint, unreadOnly bool) ([]model.ActionProposal, error)
	RefreshProposals(ctx context.Context, portfolioID uint) ([]model.ActionProposal, error)
	RefreshAllProposals(ctx context.Context) error
	MarkProposalRead(ctx context.Context, proposalID uint) error
}

type portfolioService struct {
	cfg              *config.Config
	log              *logger.Logger
	portfolioRepo    repository.PortfolioRepository
	analysisRepo     repository.AnalysisRepository
	priceHistoryRepo repository.PriceHistoryRepository
}

func NewPortfolioService(cfg *config.Config, log *logger.Logger, repo *repository.Repository) PortfolioService {
	return &portfolioService{
		cfg:              cfg,
		log:              log,
		portfolioRepo:    repo.PortfolioRepo,
		analysisRepo:     repo.AnalysisRepo,
		priceHistoryRepo: repo.PriceHistoryRepo,
	}
}

func (s *portfolioService) GetProposals(ctx context.Context, portfolioID uint, unreadOnly bool) ([]model.ActionProposal, error) {
	return s.portfolioRepo.GetProposals(ctx, portfolioID, unreadOnly)
}

// RefreshProposals re-evaluates every active holding of one portfolio against
// the latest stored analyses and replaces the live suggestions.
func (s *portfolioService) RefreshProposals(ctx context.Context, portfolioID uint) ([]model.ActionProposal, error) {
	holdings, err := s.portfolioRepo.GetActiveHoldings(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	for _, holding := range holdings {
		if err := s.evaluateHolding(ctx, holding); err != nil {
			s.log.WarnContext(ctx, "Failed to evaluate holding",
				logger.Field("holding_id", holding.ID),
				logger.ErrorField(err),
			)
		}
	}

	return s.portfolioRepo.GetProposals(ctx, portfolioID, true)
}

// RefreshAllProposals runs the evaluation across every portfolio, intended to
// follow a batch run so proposals reflect the freshest analyses.
func (s *portfolioService) RefreshAllProposals(ctx context.Context) error {
	holdings, err := s.portfolioRepo.GetAllActiveHoldings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get holdings: %w", err)
	}

	for _, holding := range holdings {
		if err := s.evaluateHolding(ctx, holding); err != nil {
			s.log.WarnContext(ctx, "Failed to evaluate holding",
				logger.Field("holding_id", holding.ID),
				logger.ErrorField(err),
			)
		}
	}
	return nil
}

func (s *portfolioService) MarkProposalRead(ctx context.Context, proposalID uint) error {
	return s.portfolioRepo.MarkProposalRead(ctx, proposalID)
}

// evaluateHolding applies the take-profit, stop-loss, AI-sell and swing-alert
// rules in that order; the first matching rule produces the proposal.
func (s *portfolioService) evaluateHolding(ctx context.Context, holding model.Holding) error {
	latest, err := s.analysisRepo.GetLatestByStockID(ctx, holding.StockID)
	if err != nil {
		return fmt.Errorf("failed to get latest analysis: %w", err)
	}
	if latest == nil {
		// No analysis yet for this stock, nothing to base a suggestion on.
		return nil
	}
	if holding.PurchasePrice <= 0 {
		return fmt.Errorf("invalid purchase price %v", holding.PurchasePrice)
	}

	changePct := (latest.CurrentPrice - holding.PurchasePrice) / holding.PurchasePrice * 100

	proposal := s.buildProposal(holding, latest, changePct)
	if proposal == nil {
		return nil
	}

	if note := s.trendNote(ctx, holding.StockID); note != "" {
		proposal.Reason += " " + note
	}

	if err := s.portfolioRepo.ReplaceProposal(ctx, proposal); err != nil {
		return fmt.Errorf("failed to save proposal: %w", err)
	}
	return nil
}

// trendNote appends moving-average and RSI context to a proposal reason.
// A stock whose candle history is still too short simply gets no note.
func (s *portfolioService) trendNote(ctx context.Context, stockID uint) string {
	candles, err := s.priceHistoryRepo.GetRecent(ctx, stockID, trendCandleWindow)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load candles for trend evaluation",
			logger.Field("stock_id", stockID),
			logger.ErrorField(err),
		)
		return ""
	}

	ind, err := computeTrendIndicators(candles)
	if err != nil {
		return ""
	}

	return assessTrend(ind).summary(ind)
}

func (s *portfolioService) buildProposal(holding model.Holding, latest *model.Analysis, changePct float64) *model.ActionProposal {
	base := model.ActionProposal{
		PortfolioID: holding.PortfolioID,
		StockID:     holding.StockID,
	}

	switch {
	case changePct >= s.cfg.Portfolio.TakeProfitPct:
		base.ActionType = dto.ActionTypeSell
		base.Reason = fmt.Sprintf("購入価格から%.1f%%上昇しています。利益確定の売却を検討してください。", changePct)
		base.Confidence = 90
	case changePct <= s.cfg.Portfolio.StopLossPct:
		base.ActionType = dto.ActionTypeSell
		base.Reason = fmt.Sprintf("購入価格から%.1f%%下落しています。損切りの売却を検討してください。", changePct)
		base.Confidence = 90
	case latest.Recommendation == dto.RecommendationSell:
		base.ActionType = dto.ActionTypeSell
		base.Reason = fmt.Sprintf("最新のAI分析が売り推奨です: %s", latest.ReasonShort)
		base.Confidence = latest.ConfidenceScore
	case changePct >= s.cfg.Portfolio.AlertPct || changePct <= -s.cfg.Portfolio.AlertPct:
		base.ActionType = dto.ActionTypeHoldAlert
		base.Reason = fmt.Sprintf("購入価格から%.1f%%変動しています。ポジションの見直しをおすすめします。", changePct)
		base.Confidence = 60
	default:
		return nil
	}

	return &base
}
