package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/pkg/httpclient"
	"stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeHTTPClient struct {
	chartStatus   int
	chartBody     string
	summaryStatus int
	summaryBody   string
	requested     []string
}

func (f *fakeHTTPClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*httpclient.BaseResponse, error) {
	f.requested = append(f.requested, endpoint)

	status, body := f.summaryStatus, f.summaryBody
	if strings.HasPrefix(endpoint, "/v8/finance/chart/") {
		status, body = f.chartStatus, f.chartBody
	}

	if status == 200 && result != nil && body != "" {
		if err := json.Unmarshal([]byte(body), result); err != nil {
			return nil, err
		}
	}
	return &httpclient.BaseResponse{StatusCode: status, Body: []byte(body)}, nil
}

func (f *fakeHTTPClient) Post(ctx context.Context, endpoint string, body interface{}, headers map[string]string, result interface{}) (*httpclient.BaseResponse, error) {
	return &httpclient.BaseResponse{StatusCode: 200}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func newTestYahooRepo(t *testing.T, fake *fakeHTTPClient) *yahooFinanceRepository {
	t.Helper()
	cfg := &config.Config{}
	cfg.YahooFinance.HistoryDays = 30
	cfg.YahooFinance.MaxRequestPerMinute = 60

	return &yahooFinanceRepository{
		httpClient:     fake,
		cfg:            cfg,
		logger:         testLogger(t),
		requestLimiter: rate.NewLimiter(rate.Inf, 1),
	}
}

const chartBodyToyota = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "7203.T", "longName": "Toyota Motor Corporation", "regularMarketPrice": 2510},
      "timestamp": [1754956800, 1755043200, 1755129600],
      "indicators": {"quote": [{
        "open": [2480, 0, 2495],
        "high": [2500, 0, 2520],
        "low": [2470, 0, 2490],
        "close": [2490, 0, 2510],
        "volume": [1000000, 0, 1200000]
      }]}
    }],
    "error": null
  }
}`

const summaryBodyToyota = `{
  "quoteSummary": {
    "result": [{
      "price": {"longName": "トヨタ自動車", "regularMarketPrice": {"raw": 2510}, "marketCap": {"raw": 35000000000000}},
      "summaryDetail": {"trailingPE": {"raw": 10.5}, "dividendYield": {"raw": 0.0234}},
      "financialData": {"returnOnEquity": {"raw": 0.0987}},
      "defaultKeyStatistics": {"priceToBook": {"raw": 1.1}},
      "assetProfile": {"sector": "Consumer Cyclical"}
    }],
    "error": null
  }
}`

func TestProviderSymbol(t *testing.T) {
	assert.Equal(t, "7203.T", providerSymbol("7203", dto.MarketJP))
	assert.Equal(t, "7203.T", providerSymbol("7203.T", dto.MarketJP))
	assert.Equal(t, "AAPL", providerSymbol("AAPL", dto.MarketUS))
}

func TestYahooFinanceGet(t *testing.T) {
	t.Run("full fetch maps chart and fundamentals", func(t *testing.T) {
		fake := &fakeHTTPClient{
			chartStatus: 200, chartBody: chartBodyToyota,
			summaryStatus: 200, summaryBody: summaryBodyToyota,
		}
		r := newTestYahooRepo(t, fake)

		data, err := r.Get(context.Background(), "7203", dto.MarketJP)
		require.NoError(t, err)

		assert.Equal(t, "7203", data.Ticker)
		assert.Equal(t, dto.MarketJP, data.Market)
		assert.Equal(t, "トヨタ自動車", data.Name)
		assert.Equal(t, "Consumer Cyclical", data.Sector)
		assert.Equal(t, 2510.0, data.MarketPrice)

		// Zero-filled candle is skipped.
		require.Len(t, data.OHLCV, 2)
		assert.Equal(t, 2490.0, data.OHLCV[0].Close)
		assert.Equal(t, 2510.0, data.OHLCV[1].Close)

		require.NotNil(t, data.PERatio)
		assert.InDelta(t, 10.5, *data.PERatio, 0.001)
		require.NotNil(t, data.PBRatio)
		assert.InDelta(t, 1.1, *data.PBRatio, 0.001)

		// Fractions become percentages.
		require.NotNil(t, data.ROE)
		assert.InDelta(t, 9.87, *data.ROE, 0.001)
		require.NotNil(t, data.DividendYield)
		assert.InDelta(t, 2.34, *data.DividendYield, 0.001)

		// Tokyo listing is queried with the exchange suffix.
		require.Len(t, fake.requested, 2)
		assert.Equal(t, "/v8/finance/chart/7203.T", fake.requested[0])
		assert.Equal(t, "/v10/finance/quoteSummary/7203.T", fake.requested[1])
	})

	t.Run("missing quote summary keeps chart data", func(t *testing.T) {
		fake := &fakeHTTPClient{
			chartStatus: 200, chartBody: chartBodyToyota,
			summaryStatus: 404,
		}
		r := newTestYahooRepo(t, fake)

		data, err := r.Get(context.Background(), "7203", dto.MarketJP)
		require.NoError(t, err)
		assert.Equal(t, 2510.0, data.MarketPrice)
		assert.Nil(t, data.PERatio)
		assert.Nil(t, data.ROE)
	})

	t.Run("unknown ticker maps to ErrStockNotFound", func(t *testing.T) {
		fake := &fakeHTTPClient{chartStatus: 404}
		r := newTestYahooRepo(t, fake)

		_, err := r.Get(context.Background(), "NOPE", dto.MarketUS)
		assert.ErrorIs(t, err, ErrStockNotFound)
	})

	t.Run("provider error payload maps to ErrStockNotFound", func(t *testing.T) {
		fake := &fakeHTTPClient{
			chartStatus: 200,
			chartBody:   `{"chart": {"result": [], "error": {"code": "Not Found"}}}`,
		}
		r := newTestYahooRepo(t, fake)

		_, err := r.Get(context.Background(), "NOPE", dto.MarketUS)
		assert.ErrorIs(t, err, ErrStockNotFound)
	})

	t.Run("upstream 500 is not a not-found error", func(t *testing.T) {
		fake := &fakeHTTPClient{chartStatus: 500, chartBody: "internal error"}
		r := newTestYahooRepo(t, fake)

		_, err := r.Get(context.Background(), "AAPL", dto.MarketUS)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrStockNotFound)
	})
}
