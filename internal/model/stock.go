package model

import (
	"time"

	"stock-analyzer/internal/dto"
)

type Stock struct {
	ID               uint       `gorm:"primaryKey"`
	Ticker           string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	Name             string     `gorm:"type:varchar(255);not null"`
	Market           dto.Market `gorm:"type:varchar(2);not null"`
	Sector           *string    `gorm:"type:varchar(100)"`
	MarketCap        *float64
	IsAnalysisTarget bool      `gorm:"default:true"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	Analyses     []Analysis     `gorm:"foreignKey:StockID;constraint:OnDelete:CASCADE"`
	PriceHistory []PriceHistory `gorm:"foreignKey:StockID;constraint:OnDelete:CASCADE"`
}

func (Stock) TableName() string {
	return "stocks"
}
