/**
 * @description
 * Service layer for benchmark aggregates.
 * Resolves the target run, memoizes per-run base aggregates in the cache tier,
 * and falls back to the aggregation engine over store-fetched rows on a miss.
 *
 * @dependencies
 * - internal/store
 * - internal/cache
 * - internal/analytics
 * - internal/etag
 *
 * @notes
 * - Base aggregates are keyed by (endpoint namespace, run id) only; pagination,
 *   chain filters and response modes are applied later by the handlers.
 * - A failed fetch or computation never populates the cache.
 */

package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dexmark-project/backend/internal/analytics"
	"github.com/dexmark-project/backend/internal/cache"
	"github.com/dexmark-project/backend/internal/etag"
	"github.com/dexmark-project/backend/internal/models"
	"github.com/dexmark-project/backend/internal/store"
)

const (
	// BaseCacheTTL is how long a per-run base aggregate stays memoized
	BaseCacheTTL = 4 * time.Hour

	detailedBaseNamespace = "detailed-results:base"
	winRatesBaseNamespace = "win-rates:base"
)

// BenchmarkService computes and memoizes per-run aggregates
type BenchmarkService struct {
	Store store.Store
	Cache cache.Store
}

func NewBenchmarkService(st store.Store, c cache.Store) *BenchmarkService {
	return &BenchmarkService{Store: st, Cache: c}
}

// ResolveRun returns the explicitly requested run, or the latest run when no
// id is given. store.ErrRunNotFound propagates for both cases.
func (s *BenchmarkService) ResolveRun(ctx context.Context, explicitID *uint64) (models.BenchmarkRun, error) {
	if explicitID != nil {
		return s.Store.RunByID(ctx, *explicitID)
	}
	return s.Store.LatestRun(ctx)
}

// DetailedBase returns the per-run detailed aggregate and its fingerprint,
// computing and caching it on a miss.
func (s *BenchmarkService) DetailedBase(ctx context.Context, run models.BenchmarkRun) (analytics.DetailedBase, string, error) {
	key := baseKey(detailedBaseNamespace, run.ID)

	var base analytics.DetailedBase
	if tag, ok := s.Cache.Get(ctx, key, &base); ok {
		return base, tag, nil
	}

	trades, results, err := s.fetchRows(ctx, run.ID)
	if err != nil {
		return analytics.DetailedBase{}, "", err
	}

	base = analytics.BuildDetailed(run, trades, results)
	tag := etag.For(base)
	s.Cache.Set(ctx, key, base, BaseCacheTTL, tag)

	return base, tag, nil
}

// WinRatesBase returns the per-run analytics aggregate and its fingerprint,
// computing and caching it on a miss.
func (s *BenchmarkService) WinRatesBase(ctx context.Context, run models.BenchmarkRun) (analytics.WinRatesBase, string, error) {
	key := baseKey(winRatesBaseNamespace, run.ID)

	var base analytics.WinRatesBase
	if tag, ok := s.Cache.Get(ctx, key, &base); ok {
		return base, tag, nil
	}

	trades, results, err := s.fetchRows(ctx, run.ID)
	if err != nil {
		return analytics.WinRatesBase{}, "", err
	}

	base = analytics.BuildWinRates(run, trades, results)
	tag := etag.For(base)
	s.Cache.Set(ctx, key, base, BaseCacheTTL, tag)

	return base, tag, nil
}

// fetchRows loads the raw rows one base aggregate is computed from
func (s *BenchmarkService) fetchRows(ctx context.Context, runID uint64) ([]models.Trade, []models.ProviderResult, error) {
	trades, err := s.Store.TradesForRun(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch trades for run %d: %w", runID, err)
	}

	tradeIDs := make([]uint64, 0, len(trades))
	for _, t := range trades {
		tradeIDs = append(tradeIDs, t.ID)
	}

	results, err := s.Store.ProviderResultsForTrades(ctx, tradeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch provider results for run %d: %w", runID, err)
	}

	return trades, results, nil
}

func baseKey(namespace string, runID uint64) string {
	return cache.MakeKey(namespace, map[string]string{
		"run_id": strconv.FormatUint(runID, 10),
	})
}
