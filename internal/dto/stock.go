package dto

import "time"

type StockOHLCV struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// StockData is the full market-data snapshot for one ticker: current price,
// company fundamentals, and the trailing daily candles.
type StockData struct {
	Ticker        string       `json:"ticker"`
	Market        Market       `json:"market"`
	Name          string       `json:"name"`
	Sector        string       `json:"sector"`
	MarketPrice   float64      `json:"market_price"`
	MarketCap     *float64     `json:"market_cap"`
	PERatio       *float64     `json:"pe_ratio"`
	PBRatio       *float64     `json:"pb_ratio"`
	ROE           *float64     `json:"roe"`
	DividendYield *float64     `json:"dividend_yield"`
	OHLCV         []StockOHLCV `json:"ohlcv"`
}

// YahooChartResponse mirrors the chart v8 endpoint payload.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooValue is the raw/fmt pair Yahoo wraps every numeric field in.
type YahooValue struct {
	Raw *float64 `json:"raw"`
}

// YahooQuoteSummaryResponse mirrors the quoteSummary v10 endpoint payload for
// the modules the analyzer needs.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName           string     `json:"longName"`
				RegularMarketPrice YahooValue `json:"regularMarketPrice"`
				MarketCap          YahooValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE    YahooValue `json:"trailingPE"`
				DividendYield YahooValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ReturnOnEquity YahooValue `json:"returnOnEquity"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				PriceToBook YahooValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}
