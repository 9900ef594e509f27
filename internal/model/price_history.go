package model

import "time"

// PriceHistory is one daily OHLCV candle. (stock_id, date) is unique and
// upserts are last-write-wins.
type PriceHistory struct {
	ID        uint      `gorm:"primarykey"`
	StockID   uint      `gorm:"not null;uniqueIndex:idx_price_history_stock_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_price_history_stock_date"`
	Open      float64   `gorm:"not null"`
	High      float64   `gorm:"not null"`
	Low       float64   `gorm:"not null"`
	Close     float64   `gorm:"not null"`
	Volume    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}
