package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stock-analyzer/internal/repository"
	"stock-analyzer/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run one analysis batch synchronously and exit",
	Run:   RunBatch,
}

func RunBatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, appDep.cache, repo)

	result, err := services.BatchService.Run(ctx)
	if err != nil {
		appDep.log.Fatal("Batch run failed", zap.Error(err))
	}

	if err := services.PortfolioService.RefreshAllProposals(ctx); err != nil {
		appDep.log.Error("Failed to refresh portfolio proposals", zap.Error(err))
	}

	appDep.log.Info("Batch run finished",
		zap.String("status", string(result.Status)),
		zap.Int("total", result.TotalStocks),
		zap.Int("success", result.SuccessCount),
		zap.Int("failure", result.FailureCount),
	)
}
