package repository

import (
	"fmt"
	"strings"

	"stock-analyzer/internal/dto"
)

const analystSystemInstruction = "あなたは投資初心者に優しく教える株式アナリストです。難しい専門用語を避け、わかりやすい言葉で説明します。財務データと株価データを分析し、投資推奨を提供します。常にJSON形式で回答してください。"

func (r *geminiAIRepository) promptAnalyzeStock(input dto.StockAnalysisInput) string {
	var sb strings.Builder

	marketName := "米国"
	if input.Market == dto.MarketJP {
		marketName = "日本"
	}

	sb.WriteString("あなたは投資初心者に優しく教える株式アナリストです。以下のデータを基に、この銘柄に対する投資推奨（Buy/Sell/Hold）と信頼度スコア（0-100%）、理由を提供してください。\n\n")

	sb.WriteString(fmt.Sprintf("銘柄: %s\n", input.Ticker))
	sb.WriteString(fmt.Sprintf("銘柄名: %s\n", input.Name))
	sb.WriteString(fmt.Sprintf("市場: %s\n", marketName))
	sb.WriteString(fmt.Sprintf("現在株価: %g\n", input.CurrentPrice))
	sb.WriteString(fmt.Sprintf("セクター: %s\n\n", orNA(input.Sector)))

	sb.WriteString("過去30日の株価データ（終値）:\n")
	for _, candle := range input.PriceHistory {
		sb.WriteString(fmt.Sprintf("%s: %g\n", candle.Date.Format("2006-01-02"), candle.Close))
	}

	sb.WriteString("\n財務指標:\n")
	sb.WriteString(fmt.Sprintf("- PER（株価収益率）: %s\n", ratioOrNA(input.PERatio, "")))
	sb.WriteString(fmt.Sprintf("- PBR（株価純資産倍率）: %s\n", ratioOrNA(input.PBRatio, "")))
	sb.WriteString(fmt.Sprintf("- ROE（自己資本利益率）: %s\n", ratioOrNA(input.ROE, "%")))
	sb.WriteString(fmt.Sprintf("- 配当利回り: %s\n", ratioOrNA(input.DividendYield, "%")))

	sb.WriteString(`
以下のJSON形式で出力してください。JSON以外のテキストは含めないでください:
{
  "recommendation": "Buy" | "Sell" | "Hold",
  "confidence_score": 85,
  "reason_short": "投資初心者向けに親しみやすく、わかりやすい理由（150-200文字程度。専門用語は避け、なぜそう判断したのかを簡潔に説明）",
  "reason_detailed": "詳細な理由（500-1000文字程度、財務指標や株価トレンドを基に具体的に説明）"
}`)

	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func ratioOrNA(v *float64, suffix string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%s", *v, suffix)
}
