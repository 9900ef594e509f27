package model

import (
	"time"

	"stock-analyzer/internal/dto"

	"gorm.io/datatypes"
)

// Analysis is one AI recommendation for a stock at a point in time. Rows are
// append-only; a new batch run creates new rows and "latest" queries pick the
// most recent analysis_date per stock.
type Analysis struct {
	ID              uint               `gorm:"primarykey"`
	StockID         uint               `gorm:"not null;index"`
	Recommendation  dto.Recommendation `gorm:"type:varchar(10);not null"`
	ConfidenceScore int                `gorm:"not null"`
	ReasonShort     string             `gorm:"type:text;not null"`
	ReasonDetailed  string             `gorm:"type:text;not null"`
	CurrentPrice    float64            `gorm:"not null"`
	PERatio         *float64
	PBRatio         *float64
	ROE             *float64
	DividendYield   *float64
	Prompt          string         `gorm:"type:text"`
	Response        datatypes.JSON `gorm:"type:jsonb"`
	AnalysisDate    time.Time      `gorm:"not null;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`

	Stock *Stock `gorm:"foreignKey:StockID"`
}

func (Analysis) TableName() string {
	return "analyses"
}

type GetLatestAnalysesParam struct {
	Market         dto.Market
	Recommendation dto.Recommendation
}
