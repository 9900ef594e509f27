package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"stock-analyzer/config"
	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/internal/repository"
	"stock-analyzer/pkg/cache"
	"stock-analyzer/pkg/logger"
	"stock-analyzer/pkg/retry"
	"stock-analyzer/pkg/utils"

	"gorm.io/datatypes"
)

// ErrBatchAlreadyRunning is returned when a run is requested while a
// previous run has not finished yet.
var ErrBatchAlreadyRunning = errors.New("batch run already in progress")

type BatchService interface {
	Run(ctx context.Context) (*dto.BatchResult, error)
	GetLatestJobLog(ctx context.Context) (*model.BatchJobLog, error)
}

type batchService struct {
	cfg              *config.Config
	log              *logger.Logger
	cache            cache.Cache
	stockRepo        repository.StockRepository
	yahooFinanceRepo repository.YahooFinanceRepository
	geminiAIRepo     repository.AIRepository
	analysisRepo     repository.AnalysisRepository
	priceHistoryRepo repository.PriceHistoryRepository
	batchJobLogRepo  repository.BatchJobLogRepository
	uow              repository.UnitOfWork

	running sync.Mutex
}

func NewBatchService(
	cfg *config.Config,
	log *logger.Logger,
	c cache.Cache,
	repo *repository.Repository,
) BatchService {
	return &batchService{
		cfg:              cfg,
		log:              log,
		cache:            c,
		stockRepo:        repo.StockRepo,
		yahooFinanceRepo: repo.YahooFinanceRepo,
		geminiAIRepo:     repo.GeminiAIRepo,
		analysisRepo:     repo.AnalysisRepo,
		priceHistoryRepo: repo.PriceHistoryRepo,
		batchJobLogRepo:  repo.BatchJobLogRepo,
		uow:              repo.UnitOfWork,
	}
}

// Run executes one full analysis batch: fetch the target universe, process
// each ticker sequentially (market data, AI recommendation, persistence),
// then classify and log the aggregate outcome. One bad ticker never aborts
// the run, and the run is always logged, including on panic.
func (s *batchService) Run(ctx context.Context) (result *dto.BatchResult, err error) {
	if !s.running.TryLock() {
		s.log.WarnContext(ctx, "Batch run requested while another run is in progress, skipping")
		return nil, ErrBatchAlreadyRunning
	}
	defer s.running.Unlock()

	startedAt := utils.TimeNowJST()
	result = &dto.BatchResult{
		JobDate: startedAt,
		Status:  dto.BatchStatusFailure,
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "Batch run panicked", logger.Field("panic", r))
			result.Status = dto.BatchStatusFailure
			result.ErrorMessage = fmt.Sprintf("unexpected error: %v", r)
			result.Duration = time.Since(startedAt)
			s.persistJobLog(ctx, result)
			err = fmt.Errorf("batch run panicked: %v", r)
		}
	}()

	s.log.InfoContext(ctx, "Starting analysis batch", logger.StringField("job_date", startedAt.Format(time.RFC3339)))

	stocks, uniErr := s.stockRepo.GetAnalysisTargets(ctx)
	if uniErr != nil {
		result.ErrorMessage = fmt.Sprintf("failed to fetch stock universe: %v", uniErr)
		result.Duration = time.Since(startedAt)
		s.persistJobLog(ctx, result)
		return result, fmt.Errorf("failed to fetch stock universe: %w", uniErr)
	}

	result.TotalStocks = len(stocks)
	if len(stocks) == 0 {
		s.log.WarnContext(ctx, "No target stocks to analyze")
		result.ErrorMessage = "no target stocks"
		result.Duration = time.Since(startedAt)
		s.persistJobLog(ctx, result)
		return result, nil
	}

	for i, stock := range stocks {
		if !utils.ShouldContinue(ctx, s.log) {
			s.log.Warn("Batch run interrupted, remaining tickers counted as failures")
			break
		}

		// Fixed inter-ticker delay keeps both providers under their rate limits.
		if i > 0 && s.cfg.Batch.TickerDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.cfg.Batch.TickerDelay):
			}
		}

		s.log.InfoContext(ctx, "Analyzing stock",
			logger.StringField("ticker", stock.Ticker),
			logger.StringField("market", string(stock.Market)),
			logger.IntField("position", i+1),
			logger.IntField("total", result.TotalStocks),
		)

		if tickErr := s.analyzeOne(ctx, stock); tickErr != nil {
			s.log.ErrorContext(ctx, "Stock analysis failed",
				logger.StringField("ticker", stock.Ticker),
				logger.ErrorField(tickErr),
			)
			result.Failures = append(result.Failures, dto.TickerFailure{
				Ticker: stock.Ticker,
				Market: stock.Market,
				Reason: tickErr.Error(),
			})
			continue
		}

		result.SuccessCount++
	}

	result.FailureCount = result.TotalStocks - result.SuccessCount
	result.Status, result.ErrorMessage = classifyRun(result.TotalStocks, result.SuccessCount)
	result.Duration = time.Since(startedAt)

	s.persistJobLog(ctx, result)

	if result.SuccessCount > 0 {
		// New analysis rows exist, so cached "latest" responses are stale.
		s.cache.Flush()
		s.log.DebugContext(ctx, "Flushed analysis cache after batch run")
	}

	s.log.InfoContext(ctx, "Analysis batch finished",
		logger.StringField("status", string(result.Status)),
		logger.IntField("total", result.TotalStocks),
		logger.IntField("success", result.SuccessCount),
		logger.IntField("failure", result.FailureCount),
		logger.Field("duration", result.Duration.String()),
	)

	return result, nil
}

// analyzeOne runs the fetch, generate, persist sequence for a single ticker.
func (s *batchService) analyzeOne(ctx context.Context, stock model.Stock) error {
	retryCfg := retry.DefaultConfig()
	if s.cfg.Batch.MaxRetryAttempts > 0 {
		retryCfg.MaxAttempts = s.cfg.Batch.MaxRetryAttempts
	}
	if s.cfg.Batch.RetryBaseDelay > 0 {
		retryCfg.BaseDelay = s.cfg.Batch.RetryBaseDelay
	}

	data, err := retry.DoValue(ctx, retryCfg, func(ctx context.Context) (*dto.StockData, error) {
		d, fetchErr := s.yahooFinanceRepo.Get(ctx, stock.Ticker, stock.Market)
		if fetchErr != nil && errors.Is(fetchErr, repository.ErrStockNotFound) {
			// A ticker the provider does not know will not appear on retry.
			return nil, retry.Permanent(fetchErr)
		}
		return d, fetchErr
	})
	if err != nil {
		return fmt.Errorf("market data fetch failed: %w", err)
	}

	if err := s.stockRepo.UpdateFundamentals(ctx, stock.ID, data); err != nil {
		// Stale company attributes are tolerable; the analysis itself is not affected.
		s.log.WarnContext(ctx, "Failed to refresh stock fundamentals",
			logger.StringField("ticker", stock.Ticker),
			logger.ErrorField(err),
		)
	}

	name := stock.Name
	if data.Name != "" {
		name = data.Name
	}
	sector := ""
	if stock.Sector != nil {
		sector = *stock.Sector
	}
	if data.Sector != "" {
		sector = data.Sector
	}

	outcome, err := s.geminiAIRepo.AnalyzeStock(ctx, dto.StockAnalysisInput{
		Ticker:        stock.Ticker,
		Name:          name,
		Market:        stock.Market,
		Sector:        sector,
		CurrentPrice:  data.MarketPrice,
		PERatio:       data.PERatio,
		PBRatio:       data.PBRatio,
		ROE:           data.ROE,
		DividendYield: data.DividendYield,
		PriceHistory:  data.OHLCV,
	})
	if err != nil {
		return fmt.Errorf("recommendation generation failed: %w", err)
	}

	if err := s.persistAnalysis(ctx, stock.ID, data, outcome); err != nil {
		return fmt.Errorf("persistence failed: %w", err)
	}

	return nil
}

// persistAnalysis writes the Analysis row and upserts the candle history in a
// single transaction. Either everything commits or nothing does, so a
// recommendation can never exist without its supporting price data.
func (s *batchService) persistAnalysis(ctx context.Context, stockID uint, data *dto.StockData, outcome *dto.AIAnalysisOutcome) error {
	analysis := &model.Analysis{
		StockID:         stockID,
		Recommendation:  outcome.Result.Recommendation,
		ConfidenceScore: outcome.Result.ConfidenceScore,
		ReasonShort:     outcome.Result.ReasonShort,
		ReasonDetailed:  outcome.Result.ReasonDetailed,
		CurrentPrice:    data.MarketPrice,
		PERatio:         data.PERatio,
		PBRatio:         data.PBRatio,
		ROE:             data.ROE,
		DividendYield:   data.DividendYield,
		Prompt:          outcome.Prompt,
		Response:        datatypes.JSON(outcome.RawResponse),
		AnalysisDate:    utils.TimeNowJST(),
	}

	candles := make([]model.PriceHistory, 0, len(data.OHLCV))
	for _, c := range data.OHLCV {
		candles = append(candles, model.PriceHistory{
			StockID: stockID,
			Date:    c.Date,
			Open:    c.Open,
			High:    c.High,
			Low:     c.Low,
			Close:   c.Close,
			Volume:  c.Volume,
		})
	}

	return s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.analysisRepo.Create(ctx, analysis, opts...); err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}
		if err := s.priceHistoryRepo.UpsertBatch(ctx, candles, opts...); err != nil {
			return fmt.Errorf("failed to upsert price history: %w", err)
		}
		return nil
	})
}

// classifyRun maps the aggregate counts onto the terminal run status.
func classifyRun(total, success int) (dto.BatchStatus, string) {
	switch {
	case total == 0:
		return dto.BatchStatusFailure, "no target stocks"
	case success == total:
		return dto.BatchStatusSuccess, ""
	case success > 0:
		return dto.BatchStatusPartialSuccess, fmt.Sprintf("%d stocks failed", total-success)
	default:
		return dto.BatchStatusFailure, "all stocks failed"
	}
}

func (s *batchService) persistJobLog(ctx context.Context, result *dto.BatchResult) {
	jobLog := &model.BatchJobLog{
		JobDate:      result.JobDate,
		Status:       result.Status,
		TotalStocks:  result.TotalStocks,
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		DurationMs:   result.Duration.Milliseconds(),
	}
	if result.ErrorMessage != "" {
		jobLog.ErrorMessage = utils.ToPointer(result.ErrorMessage)
	}
	if len(result.Failures) > 0 {
		if raw, err := json.Marshal(result.Failures); err == nil {
			jobLog.Failures = datatypes.JSON(raw)
		}
	}

	if err := s.batchJobLogRepo.Create(ctx, jobLog); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist batch job log", logger.ErrorField(err))
	}
}

func (s *batchService) GetLatestJobLog(ctx context.Context) (*model.BatchJobLog, error) {
	return s.batchJobLogRepo.GetLatest(ctx)
}
