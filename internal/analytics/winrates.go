/**
 * @description
 * Analytics half of the aggregation engine.
 * Rolls Trade + ProviderResult rows for one run into per-provider statistics,
 * computed for the overall scope and for every chain in the same pass.
 * Pure function of its inputs: no I/O, no hidden state.
 *
 * @dependencies
 * - internal/models
 */

package analytics

import (
	"sort"

	"github.com/dexmark-project/backend/internal/models"
)

// providerTally is the mutable accumulator behind one ProviderAnalytics record
type providerTally struct {
	totalQuotes       int
	successfulQuotes  int
	wins              int
	errorCount        int
	totalResponseTime float64
}

func (t *providerTally) finalize() ProviderAnalytics {
	// denominator is attempted quotes that resolved either way; a trade the
	// provider never produced a row for does not count against it
	attempted := t.successfulQuotes + t.errorCount

	out := ProviderAnalytics{
		TotalQuotes:      t.totalQuotes,
		SuccessfulQuotes: t.successfulQuotes,
		ErrorCount:       t.errorCount,
		TotalWins:        t.wins,
	}
	if attempted > 0 {
		out.ParticipationRate = float64(t.successfulQuotes) / float64(attempted) * 100
		out.WinRate = float64(t.wins) / float64(attempted) * 100
	}
	if t.successfulQuotes > 0 {
		out.AverageResponseTime = t.totalResponseTime / float64(t.successfulQuotes)
	}
	return out
}

// BuildWinRates computes the per-run analytics base aggregate
func BuildWinRates(run models.BenchmarkRun, trades []models.Trade, results []models.ProviderResult) WinRatesBase {
	base := WinRatesBase{
		RunID:               run.ID,
		RunDate:             run.StartTime,
		Overall:             make(map[string]ProviderAnalytics),
		TotalTradesAnalyzed: len(trades),
		ByChain:             make(map[string]ChainAnalytics),
	}

	chainByTrade := make(map[uint64]string, len(trades))
	for _, t := range trades {
		chainByTrade[t.ID] = t.Chain
	}

	overall := make(map[string]*providerTally)
	perChain := make(map[string]map[string]*providerTally)
	chainTradesSeen := make(map[string]map[uint64]struct{})
	validByTrade := make(map[uint64][]validQuote)
	validIdxByTrade := make(map[uint64]map[string]int)

	tally := func(m map[string]*providerTally, provider string) *providerTally {
		t, ok := m[provider]
		if !ok {
			t = &providerTally{}
			m[provider] = t
		}
		return t
	}

	for _, r := range results {
		provider := CanonicalProvider(r.Provider)
		if provider == "" {
			continue
		}

		chain, known := chainByTrade[r.TradeID]
		if !known {
			// result row for a trade outside this run; the store filters these
			// out, but tolerate them rather than corrupting a chain bucket
			continue
		}

		if perChain[chain] == nil {
			perChain[chain] = make(map[string]*providerTally)
		}
		if chainTradesSeen[chain] == nil {
			chainTradesSeen[chain] = make(map[uint64]struct{})
		}

		o := tally(overall, provider)
		c := tally(perChain[chain], provider)

		o.totalQuotes++
		c.totalQuotes++
		chainTradesSeen[chain][r.TradeID] = struct{}{}

		if output, ok := parseOutput(r); ok {
			elapsed := 0.0
			if r.ElapsedTime != nil {
				elapsed = *r.ElapsedTime
			}

			o.successfulQuotes++
			o.totalResponseTime += elapsed
			c.successfulQuotes++
			c.totalResponseTime += elapsed

			idx := validIdxByTrade[r.TradeID]
			if idx == nil {
				idx = make(map[string]int)
				validIdxByTrade[r.TradeID] = idx
			}
			if i, seen := idx[provider]; seen {
				validByTrade[r.TradeID][i].output = output
			} else {
				idx[provider] = len(validByTrade[r.TradeID])
				validByTrade[r.TradeID] = append(validByTrade[r.TradeID], validQuote{provider: provider, output: output})
			}
		} else {
			o.errorCount++
			c.errorCount++
		}
	}

	// winners: one per trade with at least one valid quote, highest output,
	// ties to the first provider encountered in result order
	for _, t := range trades {
		valid := validByTrade[t.ID]
		if len(valid) == 0 {
			continue
		}
		sort.SliceStable(valid, func(i, j int) bool {
			return valid[i].output > valid[j].output
		})
		winner := valid[0].provider

		overall[winner].wins++
		perChain[t.Chain][winner].wins++
	}

	for provider, t := range overall {
		base.Overall[provider] = t.finalize()
	}

	for chain, tallies := range perChain {
		ca := ChainAnalytics{
			TotalTradesAnalyzed: len(chainTradesSeen[chain]),
			ProviderAnalytics:   make(map[string]ProviderAnalytics, len(tallies)),
		}
		for provider, t := range tallies {
			ca.ProviderAnalytics[provider] = t.finalize()
		}
		base.ByChain[chain] = ca
	}

	return base
}
