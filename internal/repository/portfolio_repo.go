package repository

import (
	"context"
	"time"

	"stock-analyzer/internal/model"
	"stock-analyzer/pkg/utils"

	"gorm.io/gorm"
)

type PortfolioRepository interface {
	GetActiveHoldings(ctx context.Context, portfolioID uint) ([]model.Holding, error)
	GetAllActiveHoldings(ctx context.Context) ([]model.Holding, error)
	GetProposals(ctx context.Context, portfolioID uint, unreadOnly bool) ([]model.ActionProposal, error)
	ReplaceProposal(ctx context.Context, proposal *model.ActionProposal) error
	MarkProposalRead(ctx context.Context, proposalID uint) error
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) GetActiveHoldings(ctx context.Context, portfolioID uint) ([]model.Holding, error) {
	var holdings []model.Holding
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND sold_date IS NULL", portfolioID).
		Preload("Stock").
		Order("purchase_date DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *portfolioRepository) GetAllActiveHoldings(ctx context.Context) ([]model.Holding, error) {
	var holdings []model.Holding
	err := r.db.WithContext(ctx).
		Where("sold_date IS NULL").
		Preload("Stock").
		Order("portfolio_id ASC, purchase_date DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *portfolioRepository) GetProposals(ctx context.Context, portfolioID uint, unreadOnly bool) ([]model.ActionProposal, error) {
	query := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var proposals []model.ActionProposal
	err := query.Preload("Stock").
		Order("confidence DESC, created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// ReplaceProposal drops any unread proposal for the same stock created within
// the last day, then inserts the new one. Keeps at most one live suggestion
// per holding.
func (r *portfolioRepository) ReplaceProposal(ctx context.Context, proposal *model.ActionProposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cutoff := utils.TimeNowJST().Add(-24 * time.Hour)
		err := tx.
			Where("portfolio_id = ? AND stock_id = ? AND is_read = ? AND created_at > ?",
				proposal.PortfolioID, proposal.StockID, false, cutoff).
			Delete(&model.ActionProposal{}).Error
		if err != nil {
			return err
		}
		return tx.Create(proposal).Error
	})
}

func (r *portfolioRepository) MarkProposalRead(ctx context.Context, proposalID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.ActionProposal{}).
		Where("id = ?", proposalID).
		Update("is_read", true).Error
}
