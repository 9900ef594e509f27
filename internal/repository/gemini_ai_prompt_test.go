package repository

import (
	"testing"
	"time"

	"stock-analyzer/internal/dto"
	"stock-analyzer/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func TestPromptAnalyzeStock(t *testing.T) {
	r := &geminiAIRepository{}

	t.Run("japanese stock with full fundamentals", func(t *testing.T) {
		input := dto.StockAnalysisInput{
			Ticker:        "7203",
			Name:          "トヨタ自動車",
			Market:        dto.MarketJP,
			Sector:        "自動車",
			CurrentPrice:  2500.5,
			PERatio:       utils.ToPointer(10.52),
			PBRatio:       utils.ToPointer(1.1),
			ROE:           utils.ToPointer(9.87),
			DividendYield: utils.ToPointer(2.34),
			PriceHistory: []dto.StockOHLCV{
				{Date: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), Close: 2480},
				{Date: time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC), Close: 2500.5},
			},
		}

		prompt := r.promptAnalyzeStock(input)

		assert.Contains(t, prompt, "銘柄: 7203")
		assert.Contains(t, prompt, "銘柄名: トヨタ自動車")
		assert.Contains(t, prompt, "市場: 日本")
		assert.Contains(t, prompt, "現在株価: 2500.5")
		assert.Contains(t, prompt, "セクター: 自動車")
		assert.Contains(t, prompt, "2026-08-03: 2480")
		assert.Contains(t, prompt, "2026-08-04: 2500.5")
		assert.Contains(t, prompt, "- PER（株価収益率）: 10.52")
		assert.Contains(t, prompt, "- ROE（自己資本利益率）: 9.87%")
		assert.Contains(t, prompt, "- 配当利回り: 2.34%")
		assert.Contains(t, prompt, `"recommendation": "Buy" | "Sell" | "Hold"`)
	})

	t.Run("missing fundamentals render as N/A", func(t *testing.T) {
		input := dto.StockAnalysisInput{
			Ticker:       "AAPL",
			Name:         "Apple",
			Market:       dto.MarketUS,
			CurrentPrice: 190,
		}

		prompt := r.promptAnalyzeStock(input)

		assert.Contains(t, prompt, "市場: 米国")
		assert.Contains(t, prompt, "セクター: N/A")
		assert.Contains(t, prompt, "- PER（株価収益率）: N/A")
		assert.Contains(t, prompt, "- PBR（株価純資産倍率）: N/A")
		assert.Contains(t, prompt, "- ROE（自己資本利益率）: N/A")
		assert.Contains(t, prompt, "- 配当利回り: N/A")
	})
}
