package model

import (
	"time"

	"stock-analyzer/internal/dto"
)

type Portfolio struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Holdings []Holding `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

type Holding struct {
	ID            uint      `gorm:"primaryKey"`
	PortfolioID   uint      `gorm:"not null;index"`
	StockID       uint      `gorm:"not null"`
	Shares        float64   `gorm:"not null"`
	PurchasePrice float64   `gorm:"not null"`
	PurchaseDate  time.Time `gorm:"not null"`
	SoldDate      *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`

	Stock *Stock `gorm:"foreignKey:StockID"`
}

func (Holding) TableName() string {
	return "holdings"
}

// ActionProposal is a generated suggestion for a holding, surfaced to the
// user until marked read.
type ActionProposal struct {
	ID          uint           `gorm:"primaryKey"`
	PortfolioID uint           `gorm:"not null;index"`
	StockID     uint           `gorm:"not null"`
	ActionType  dto.ActionType `gorm:"type:varchar(20);not null"`
	Reason      string         `gorm:"type:text;not null"`
	Confidence  int            `gorm:"not null"`
	IsRead      bool           `gorm:"default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`

	Stock *Stock `gorm:"foreignKey:StockID"`
}

func (ActionProposal) TableName() string {
	return "action_proposals"
}
