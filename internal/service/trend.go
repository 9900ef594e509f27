package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"stock-analyzer/internal/model"
)

// trendCandleWindow is how many daily candles the trend evaluation looks at.
const trendCandleWindow = 90

// trendMinCandles is the minimum history the indicators need: 25 closes for
// the slow moving average plus one more so the previous value exists too.
const trendMinCandles = 26

var errInsufficientHistory = errors.New("not enough price history for trend indicators")

// TrendIndicators holds the moving averages and RSI computed from a stock's
// daily candles, together with the previous-day averages used for cross
// detection.
type TrendIndicators struct {
	CurrentPrice float64
	SMA5         float64
	SMA25        float64
	RSI14        float64
	PrevSMA5     float64
	PrevSMA25    float64
}

// TrendAssessment is the human-readable reading of a TrendIndicators value.
type TrendAssessment struct {
	Trend     string
	RSISignal string
	Signals   []string
}

// computeTrendIndicators derives SMA5, SMA25 and a 14-day RSI from daily
// candles. The input may arrive in any order; it is sorted by date first.
func computeTrendIndicators(candles []model.PriceHistory) (*TrendIndicators, error) {
	if len(candles) < trendMinCandles {
		return nil, fmt.Errorf("%w: %d candles, need %d", errInsufficientHistory, len(candles), trendMinCandles)
	}

	sorted := make([]model.PriceHistory, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	closes := make([]float64, len(sorted))
	for i, c := range sorted {
		closes[i] = c.Close
	}

	last := len(closes) - 1
	return &TrendIndicators{
		CurrentPrice: closes[last],
		SMA5:         sma(closes, last, 5),
		SMA25:        sma(closes, last, 25),
		RSI14:        rsi(closes, last, 14),
		PrevSMA5:     sma(closes, last-1, 5),
		PrevSMA25:    sma(closes, last-1, 25),
	}, nil
}

// sma is the simple moving average of the window closing at index end.
func sma(closes []float64, end, window int) float64 {
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		sum += closes[i]
	}
	return sum / float64(window)
}

// rsi is the relative strength index over the window of deltas closing at
// index end, using plain rolling means of gains and losses. A flat window
// reads as the neutral 50, an all-gain window as 100.
func rsi(closes []float64, end, window int) float64 {
	var gains, losses float64
	for i := end - window + 1; i <= end; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}

	rs := gains / losses
	return 100 - 100/(1+rs)
}

// assessTrend turns the raw indicators into a trend label, an RSI signal and
// any moving-average cross detected between yesterday and today.
func assessTrend(ind *TrendIndicators) TrendAssessment {
	var trend string
	switch {
	case ind.SMA5 > ind.SMA25 && ind.CurrentPrice > ind.SMA5:
		trend = "上昇"
	case ind.SMA5 < ind.SMA25 && ind.CurrentPrice < ind.SMA5:
		trend = "下降"
	default:
		trend = "横ばい"
	}

	var rsiSignal string
	switch {
	case ind.RSI14 > 70:
		rsiSignal = "買われすぎ"
	case ind.RSI14 < 30:
		rsiSignal = "売られすぎ"
	default:
		rsiSignal = "中立"
	}

	var signals []string
	if ind.PrevSMA5 <= ind.PrevSMA25 && ind.SMA5 > ind.SMA25 {
		signals = append(signals, "ゴールデンクロス発生")
	}
	if ind.PrevSMA5 >= ind.PrevSMA25 && ind.SMA5 < ind.SMA25 {
		signals = append(signals, "デッドクロス発生")
	}
	if len(signals) == 0 {
		signals = append(signals, "シグナルなし")
	}

	return TrendAssessment{Trend: trend, RSISignal: rsiSignal, Signals: signals}
}

// summary renders the assessment as one Japanese sentence for proposal
// reasons, e.g. "テクニカル: トレンドは上昇、RSIは72.3（買われすぎ）。".
func (a TrendAssessment) summary(ind *TrendIndicators) string {
	var b strings.Builder
	fmt.Fprintf(&b, "テクニカル: トレンドは%s、RSIは%.1f（%s）。", a.Trend, ind.RSI14, a.RSISignal)
	for _, sig := range a.Signals {
		if sig != "シグナルなし" {
			b.WriteString(sig)
			b.WriteString("。")
		}
	}
	return b.String()
}
