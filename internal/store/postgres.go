/**
 * @description
 * GORM-backed implementation of the benchmark read store.
 * Wraps every query in a short retry loop for transient Postgres failures
 * (deadlock, serialization), the same classification the write pipeline uses.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgconn: Postgres error code classification
 * - internal/models
 */

package store

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dexmark-project/backend/internal/models"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

const maxRetries = 3

// Postgres implements Store over a gorm connection
type Postgres struct {
	db *gorm.DB
}

// NewPostgres wraps an already-connected gorm DB
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// withRetries runs fn, retrying with jittered backoff on transient pg errors
func withRetries(fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return err
}

// LatestRun implements Store
func (p *Postgres) LatestRun(ctx context.Context) (models.BenchmarkRun, error) {
	var run models.BenchmarkRun
	err := withRetries(func() error {
		return p.db.WithContext(ctx).Order("id DESC").Limit(1).Take(&run).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BenchmarkRun{}, ErrRunNotFound
	}
	return run, err
}

// RunByID implements Store
func (p *Postgres) RunByID(ctx context.Context, id uint64) (models.BenchmarkRun, error) {
	var run models.BenchmarkRun
	err := withRetries(func() error {
		return p.db.WithContext(ctx).Where("id = ?", id).Take(&run).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BenchmarkRun{}, ErrRunNotFound
	}
	return run, err
}

// TradesForRun implements Store
func (p *Postgres) TradesForRun(ctx context.Context, runID uint64) ([]models.Trade, error) {
	trades := make([]models.Trade, 0)
	err := withRetries(func() error {
		return p.db.WithContext(ctx).
			Where("run_id = ?", runID).
			Order("id ASC").
			Find(&trades).Error
	})
	return trades, err
}

// ProviderResultsForTrades implements Store
func (p *Postgres) ProviderResultsForTrades(ctx context.Context, tradeIDs []uint64) ([]models.ProviderResult, error) {
	results := make([]models.ProviderResult, 0)
	if len(tradeIDs) == 0 {
		return results, nil
	}
	err := withRetries(func() error {
		return p.db.WithContext(ctx).
			Where("trade_id IN ?", tradeIDs).
			Order("id ASC").
			Find(&results).Error
	})
	return results, err
}
