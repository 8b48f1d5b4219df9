/**
 * @description
 * Read-side store contract for benchmark data.
 * The dashboard core consumes the relational store through these four queries
 * only; everything behind them (schema, ingestion) belongs to the pipeline.
 *
 * @dependencies
 * - internal/models
 */

package store

import (
	"context"
	"errors"

	"github.com/dexmark-project/backend/internal/models"
)

// ErrRunNotFound is returned when no benchmark run matches the request
// (no runs exist at all, or an explicit run id is unknown).
var ErrRunNotFound = errors.New("benchmark run not found")

// Store is the upstream read contract. Empty result sets are empty slices,
// never errors.
type Store interface {
	// LatestRun returns the most recently created run (highest ordinal id)
	LatestRun(ctx context.Context) (models.BenchmarkRun, error)

	// RunByID returns one run by its ordinal id
	RunByID(ctx context.Context, id uint64) (models.BenchmarkRun, error)

	// TradesForRun returns all trades of a run, ordered by trade id ascending
	TradesForRun(ctx context.Context, runID uint64) ([]models.Trade, error)

	// ProviderResultsForTrades returns all provider results for the given
	// trade ids
	ProviderResultsForTrades(ctx context.Context, tradeIDs []uint64) ([]models.ProviderResult, error)
}
