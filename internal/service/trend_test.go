package service

import (
	"testing"
	"time"

	"stock-analyzer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// risingCandles builds days of daily candles climbing 10 a day from 1000.
func risingCandles(stockID uint, days int) []model.PriceHistory {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.PriceHistory, 0, days)
	for i := 0; i < days; i++ {
		price := 1000 + float64(i)*10
		candles = append(candles, model.PriceHistory{
			StockID: stockID,
			Date:    base.AddDate(0, 0, i),
			Open:    price - 10,
			High:    price + 10,
			Low:     price - 20,
			Close:   price,
			Volume:  1000000,
		})
	}
	return candles
}

func TestComputeTrendIndicators(t *testing.T) {
	t.Run("computes averages and rsi from 90 rising days", func(t *testing.T) {
		ind, err := computeTrendIndicators(risingCandles(1, 90))
		require.NoError(t, err)

		assert.Equal(t, 1890.0, ind.CurrentPrice)
		assert.InDelta(t, 1870.0, ind.SMA5, 0.01)
		assert.InDelta(t, 1770.0, ind.SMA25, 0.01)
		assert.InDelta(t, 1860.0, ind.PrevSMA5, 0.01)
		assert.InDelta(t, 1760.0, ind.PrevSMA25, 0.01)
		// Every delta is a gain, so the RSI pegs at the ceiling.
		assert.InDelta(t, 100.0, ind.RSI14, 0.01)
	})

	t.Run("accepts candles in descending date order", func(t *testing.T) {
		candles := risingCandles(1, 90)
		for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
			candles[i], candles[j] = candles[j], candles[i]
		}

		ind, err := computeTrendIndicators(candles)
		require.NoError(t, err)
		assert.Equal(t, 1890.0, ind.CurrentPrice)
		assert.InDelta(t, 1870.0, ind.SMA5, 0.01)
	})

	t.Run("flat closes read as neutral rsi", func(t *testing.T) {
		candles := risingCandles(1, 30)
		for i := range candles {
			candles[i].Close = 1000
		}

		ind, err := computeTrendIndicators(candles)
		require.NoError(t, err)
		assert.InDelta(t, 50.0, ind.RSI14, 0.01)
	})

	t.Run("rejects short history", func(t *testing.T) {
		_, err := computeTrendIndicators(risingCandles(1, 20))
		assert.ErrorIs(t, err, errInsufficientHistory)
	})
}

func TestAssessTrend(t *testing.T) {
	tests := []struct {
		name        string
		ind         TrendIndicators
		wantTrend   string
		wantRSI     string
		wantSignals []string
	}{
		{
			name:        "uptrend",
			ind:         TrendIndicators{SMA5: 1500, SMA25: 1400, RSI14: 60, CurrentPrice: 1550, PrevSMA5: 1450, PrevSMA25: 1380},
			wantTrend:   "上昇",
			wantRSI:     "中立",
			wantSignals: []string{"シグナルなし"},
		},
		{
			name:        "downtrend",
			ind:         TrendIndicators{SMA5: 1400, SMA25: 1500, RSI14: 40, CurrentPrice: 1350, PrevSMA5: 1450, PrevSMA25: 1480},
			wantTrend:   "下降",
			wantRSI:     "中立",
			wantSignals: []string{"シグナルなし"},
		},
		{
			name:        "sideways when price sits below the fast average",
			ind:         TrendIndicators{SMA5: 1500, SMA25: 1400, RSI14: 50, CurrentPrice: 1450, PrevSMA5: 1490, PrevSMA25: 1380},
			wantTrend:   "横ばい",
			wantRSI:     "中立",
			wantSignals: []string{"シグナルなし"},
		},
		{
			name:        "golden cross",
			ind:         TrendIndicators{SMA5: 1510, SMA25: 1500, RSI14: 55, CurrentPrice: 1520, PrevSMA5: 1490, PrevSMA25: 1500},
			wantTrend:   "上昇",
			wantRSI:     "中立",
			wantSignals: []string{"ゴールデンクロス発生"},
		},
		{
			name:        "dead cross",
			ind:         TrendIndicators{SMA5: 1490, SMA25: 1500, RSI14: 45, CurrentPrice: 1480, PrevSMA5: 1510, PrevSMA25: 1500},
			wantTrend:   "下降",
			wantRSI:     "中立",
			wantSignals: []string{"デッドクロス発生"},
		},
		{
			name:        "overbought",
			ind:         TrendIndicators{SMA5: 1500, SMA25: 1400, RSI14: 75, CurrentPrice: 1550, PrevSMA5: 1450, PrevSMA25: 1380},
			wantTrend:   "上昇",
			wantRSI:     "買われすぎ",
			wantSignals: []string{"シグナルなし"},
		},
		{
			name:        "oversold",
			ind:         TrendIndicators{SMA5: 1400, SMA25: 1500, RSI14: 25, CurrentPrice: 1350, PrevSMA5: 1450, PrevSMA25: 1480},
			wantTrend:   "下降",
			wantRSI:     "売られすぎ",
			wantSignals: []string{"シグナルなし"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assessTrend(&tt.ind)
			assert.Equal(t, tt.wantTrend, got.Trend)
			assert.Equal(t, tt.wantRSI, got.RSISignal)
			assert.Equal(t, tt.wantSignals, got.Signals)
		})
	}
}

func TestTrendAssessmentSummary(t *testing.T) {
	ind := &TrendIndicators{SMA5: 1510, SMA25: 1500, RSI14: 72.34, CurrentPrice: 1520, PrevSMA5: 1490, PrevSMA25: 1500}
	got := assessTrend(ind).summary(ind)

	assert.Contains(t, got, "トレンドは上昇")
	assert.Contains(t, got, "RSIは72.3")
	assert.Contains(t, got, "買われすぎ")
	assert.Contains(t, got, "ゴールデンクロス発生")
}
