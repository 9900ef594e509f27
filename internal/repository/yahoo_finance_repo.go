package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/pkg/httpclient"
	"stock-analyzer/pkg/logger"

	"golang.org/x/time/rate"
)

// ErrStockNotFound means the provider has no quote for the ticker. Callers
// treat it as a terminal per-ticker failure, never retried.
var ErrStockNotFound = errors.New("stock data not found")

const quoteSummaryModules = "price,summaryDetail,financialData,defaultKeyStatistics,assetProfile"

type YahooFinanceRepository interface {
	Get(ctx context.Context, ticker string, market dto.Market) (*dto.StockData, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	mu             sync.Mutex
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &yahooFinanceRepository{
		httpClient:     httpclient.New(log, cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

// Get fetches the current price, fundamentals, and the trailing daily candles
// for one ticker. Two provider calls: chart for OHLCV, quoteSummary for
// company data and ratios. A missing quote maps to ErrStockNotFound.
func (r *yahooFinanceRepository) Get(ctx context.Context, ticker string, market dto.Market) (*dto.StockData, error) {
	r.mu.Lock()
	if !r.requestLimiter.Allow() {
		r.logger.WarnContext(ctx, "Yahoo Finance API request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
		)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	symbol := providerSymbol(ticker, market)

	data := &dto.StockData{
		Ticker: ticker,
		Market: market,
	}

	if err := r.fetchChart(ctx, symbol, data); err != nil {
		return nil, err
	}
	if err := r.fetchQuoteSummary(ctx, symbol, data); err != nil {
		// Fundamentals are optional; the chart already gave us price and
		// candles, so a quoteSummary miss only costs the ratios.
		if !errors.Is(err, ErrStockNotFound) {
			return nil, err
		}
		r.logger.WarnContext(ctx, "No quote summary for symbol, continuing without fundamentals",
			logger.StringField("symbol", symbol))
	}

	if data.MarketPrice <= 0 {
		return nil, fmt.Errorf("%w: no market price for %s", ErrStockNotFound, symbol)
	}

	r.logger.DebugContext(ctx, "Fetched market data",
		logger.StringField("symbol", symbol),
		logger.Float64Field("market_price", data.MarketPrice),
		logger.IntField("candles", len(data.OHLCV)),
	)

	return data, nil
}

// providerSymbol maps a ticker to Yahoo's symbol: Tokyo-listed stocks carry
// the .T exchange suffix, US tickers pass through.
func providerSymbol(ticker string, market dto.Market) string {
	if market == dto.MarketJP && !strings.HasSuffix(ticker, ".T") {
		return ticker + ".T"
	}
	return ticker
}

func (r *yahooFinanceRepository) fetchChart(ctx context.Context, symbol string, data *dto.StockData) error {
	endpoint := "/v8/finance/chart/" + symbol
	queryParams := map[string]string{
		"range":          "1mo",
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, browserHeaders(), &chartResp)
	if err != nil {
		return fmt.Errorf("failed to fetch chart from yahoo finance: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Yahoo Finance chart API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return fmt.Errorf("yahoo finance chart api returned status: %d", resp.StatusCode)
	}

	if chartResp.Chart.Error != nil {
		return fmt.Errorf("%w: %v", ErrStockNotFound, chartResp.Chart.Error)
	}
	if len(chartResp.Chart.Result) == 0 {
		return fmt.Errorf("%w: no chart result for %s", ErrStockNotFound, symbol)
	}

	result := chartResp.Chart.Result[0]
	data.MarketPrice = result.Meta.RegularMarketPrice
	if result.Meta.LongName != "" {
		data.Name = result.Meta.LongName
	}

	if len(result.Indicators.Quote) == 0 {
		return fmt.Errorf("%w: no quote data for %s", ErrStockNotFound, symbol)
	}
	quote := result.Indicators.Quote[0]

	loc := time.FixedZone("JST", 9*60*60)
	var candles []dto.StockOHLCV
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}

		// Zero values mean the provider had no data for that day.
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 || quote.Close[i] == 0 {
			continue
		}

		day := time.Unix(timestamp, 0).In(loc)
		candles = append(candles, dto.StockOHLCV{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	if len(candles) == 0 {
		return fmt.Errorf("%w: no valid OHLCV data for %s", ErrStockNotFound, symbol)
	}

	if max := r.cfg.YahooFinance.HistoryDays; max > 0 && len(candles) > max {
		candles = candles[len(candles)-max:]
	}
	data.OHLCV = candles
	return nil
}

func (r *yahooFinanceRepository) fetchQuoteSummary(ctx context.Context, symbol string, data *dto.StockData) error {
	endpoint := "/v10/finance/quoteSummary/" + symbol
	queryParams := map[string]string{
		"modules": quoteSummaryModules,
	}

	var summaryResp dto.YahooQuoteSummaryResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, browserHeaders(), &summaryResp)
	if err != nil {
		return fmt.Errorf("failed to fetch quote summary from yahoo finance: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Yahoo Finance quoteSummary API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return fmt.Errorf("yahoo finance quote summary api returned status: %d", resp.StatusCode)
	}

	if summaryResp.QuoteSummary.Error != nil || len(summaryResp.QuoteSummary.Result) == 0 {
		return fmt.Errorf("%w: no quote summary for %s", ErrStockNotFound, symbol)
	}

	result := summaryResp.QuoteSummary.Result[0]
	if result.Price.LongName != "" {
		data.Name = result.Price.LongName
	}
	data.Sector = result.AssetProfile.Sector
	data.MarketCap = result.Price.MarketCap.Raw
	data.PERatio = result.SummaryDetail.TrailingPE.Raw
	data.PBRatio = result.DefaultKeyStatistics.PriceToBook.Raw
	// Yahoo reports ROE and dividend yield as fractions; the analyzer and the
	// prompt work with percentages.
	data.ROE = asPercent(result.FinancialData.ReturnOnEquity.Raw)
	data.DividendYield = asPercent(result.SummaryDetail.DividendYield.Raw)
	return nil
}

func asPercent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	v := *fraction * 100
	return &v
}

func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
		"Referer":         "https://finance.yahoo.com/",
	}
}
