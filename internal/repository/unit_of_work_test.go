package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-analyzer/internal/dto"
	"stock-analyzer/internal/model"
	"stock-analyzer/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func analysisRowFixture(stockID uint) *model.Analysis {
	return &model.Analysis{
		StockID:         stockID,
		Recommendation:  dto.RecommendationBuy,
		ConfidenceScore: 80,
		ReasonShort:     "業績好調",
		ReasonDetailed:  "決算が市場予想を上回りました。",
		CurrentPrice:    100,
		AnalysisDate:    utils.TimeNowJST(),
	}
}

func candleRowFixture(stockID uint) model.PriceHistory {
	return model.PriceHistory{
		StockID: stockID,
		Date:    time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		Open:    99,
		High:    101,
		Low:     98,
		Close:   100,
		Volume:  1000,
	}
}

func TestUnitOfWorkRun(t *testing.T) {
	t.Run("commits when every statement succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		uow := NewUnitOfWork(db)
		analysisRepo := NewAnalysisRepository(db)
		priceRepo := NewPriceHistoryRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "analyses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO "price_history"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		ctx := context.Background()
		err := uow.Run(func(opts ...utils.DBOption) error {
			if err := analysisRepo.Create(ctx, analysisRowFixture(1), opts...); err != nil {
				return err
			}
			return priceRepo.UpsertBatch(ctx, []model.PriceHistory{candleRowFixture(1)}, opts...)
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the analysis insert when the candle upsert fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		uow := NewUnitOfWork(db)
		analysisRepo := NewAnalysisRepository(db)
		priceRepo := NewPriceHistoryRepository(db)

		boom := errors.New("connection reset")
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "analyses"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO "price_history"`).
			WillReturnError(boom)
		mock.ExpectRollback()

		ctx := context.Background()
		err := uow.Run(func(opts ...utils.DBOption) error {
			if err := analysisRepo.Create(ctx, analysisRowFixture(1), opts...); err != nil {
				return err
			}
			return priceRepo.UpsertBatch(ctx, []model.PriceHistory{candleRowFixture(1)}, opts...)
		})
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn panics", func(t *testing.T) {
		db, mock := newMockDB(t)
		uow := NewUnitOfWork(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = uow.Run(func(opts ...utils.DBOption) error {
				panic("boom")
			})
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPriceHistoryUpsertBatch(t *testing.T) {
	// The conflict target and the overwritten columns form the idempotence
	// contract: re-fetching a day rewrites OHLCV in place, never duplicates.
	upsertPattern := `INSERT INTO "price_history" .+ ON CONFLICT \("stock_id","date"\) ` +
		`DO UPDATE SET "open"="excluded"\."open","high"="excluded"\."high",` +
		`"low"="excluded"\."low","close"="excluded"\."close",` +
		`"volume"="excluded"\."volume","updated_at"="excluded"\."updated_at"`

	t.Run("targets stock and date with an update on conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPriceHistoryRepository(db)

		mock.ExpectQuery(upsertPattern).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.UpsertBatch(context.Background(), []model.PriceHistory{candleRowFixture(1)})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-running the same day issues the conflict update again", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPriceHistoryRepository(db)

		mock.ExpectQuery(upsertPattern).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectQuery(upsertPattern).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		candles := []model.PriceHistory{candleRowFixture(1)}
		require.NoError(t, repo.UpsertBatch(context.Background(), candles))
		require.NoError(t, repo.UpsertBatch(context.Background(), candles))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch issues no statement", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPriceHistoryRepository(db)

		require.NoError(t, repo.UpsertBatch(context.Background(), nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
