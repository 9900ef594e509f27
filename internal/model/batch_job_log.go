package model

import (
	"time"

	"stock-analyzer/internal/dto"

	"gorm.io/datatypes"
)

// BatchJobLog is the append-only audit trail, one row per batch run.
type BatchJobLog struct {
	ID           uint            `gorm:"primarykey"`
	JobDate      time.Time       `gorm:"not null"`
	Status       dto.BatchStatus `gorm:"type:varchar(20);not null"`
	TotalStocks  int             `gorm:"not null"`
	SuccessCount int             `gorm:"not null"`
	FailureCount int             `gorm:"not null"`
	ErrorMessage *string         `gorm:"type:text"`
	// Failures holds the per-ticker failure reasons as a JSON array, a
	// structured companion to the aggregate ErrorMessage.
	Failures   datatypes.JSON `gorm:"type:jsonb"`
	DurationMs int64          `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (BatchJobLog) TableName() string {
	return "batch_job_logs"
}
