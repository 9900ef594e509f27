package service

import (
	"context"
	"errors"
	"fmt"

	"stock-analyzer/config"
	"stock-analyzer/pkg/logger"
	"stock-analyzer/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService owns the cron runner that fires the daily analysis batch
// on weekday evenings, JST.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop() context.Context
}

type schedulerService struct {
	cfg              *config.Config
	log              *logger.Logger
	cron             *cron.Cron
	batchService     BatchService
	portfolioService PortfolioService
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	batchService BatchService,
	portfolioService PortfolioService,
) SchedulerService {
	c := cron.New(cron.WithLocation(utils.GetJSTLocation()))
	return &schedulerService{
		cfg:              cfg,
		log:              log,
		cron:             c,
		batchService:     batchService,
		portfolioService: portfolioService,
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Batch.CronSpec, func() {
		s.runScheduledBatch(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register batch schedule %q: %w", s.cfg.Batch.CronSpec, err)
	}

	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("cron_spec", s.cfg.Batch.CronSpec))
	return nil
}

func (s *schedulerService) Stop() context.Context {
	s.log.Info("Stopping scheduler")
	return s.cron.Stop()
}

func (s *schedulerService) runScheduledBatch(ctx context.Context) {
	result, err := s.batchService.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrBatchAlreadyRunning) {
			s.log.Warn("Scheduled batch skipped, previous run still in progress")
			return
		}
		s.log.Error("Scheduled batch failed", logger.ErrorField(err))
		return
	}

	s.log.Info("Scheduled batch completed",
		logger.StringField("status", string(result.Status)),
		logger.IntField("success", result.SuccessCount),
		logger.IntField("failure", result.FailureCount),
	)

	// Fresh analyses may change holding suggestions, so refresh them right
	// after the batch.
	if err := s.portfolioService.RefreshAllProposals(ctx); err != nil {
		s.log.Error("Failed to refresh portfolio proposals", logger.ErrorField(err))
	}
}
