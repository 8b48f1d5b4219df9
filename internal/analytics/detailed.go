/**
 * @description
 * Detailed-view half of the aggregation engine.
 * Flattens Trade + ProviderResult rows for one run into per-trade rows with a
 * declared winner and the best-vs-second-best output spread.
 * Pure function of its inputs: no I/O, no hidden state.
 *
 * @dependencies
 * - github.com/ethereum/go-ethereum/common: EIP-55 address checksumming
 * - internal/models
 */

package analytics

import (
	"sort"
	"strconv"

	"github.com/dexmark-project/backend/internal/models"
	"github.com/ethereum/go-ethereum/common"
)

// validQuote is one provider's parsed winning-contention entry for a trade,
// kept in first-encountered order so ties resolve deterministically.
type validQuote struct {
	provider string
	output   float64
}

// parseOutput reports whether a provider result is a valid quote (non-empty
// output, success status, parseable numeric) and returns the parsed amount.
func parseOutput(r models.ProviderResult) (float64, bool) {
	if r.OutputAmount == nil || *r.OutputAmount == "" || r.StatusCode != 200 {
		return 0, false
	}
	num, err := strconv.ParseFloat(*r.OutputAmount, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// checksumAddress renders a token address in EIP-55 checksum form when it is a
// well-formed hex address; anything else passes through untouched.
func checksumAddress(addr string) string {
	if common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex()
	}
	return addr
}

// groupResultsByTrade buckets provider results by trade id, preserving row order
func groupResultsByTrade(results []models.ProviderResult) map[uint64][]models.ProviderResult {
	byTrade := make(map[uint64][]models.ProviderResult)
	for _, r := range results {
		byTrade[r.TradeID] = append(byTrade[r.TradeID], r)
	}
	return byTrade
}

// BuildDetailed computes the per-run detailed base aggregate. Trades are
// expected in trade-id order; rows come out in the same order.
func BuildDetailed(run models.BenchmarkRun, trades []models.Trade, results []models.ProviderResult) DetailedBase {
	base := DetailedBase{
		RunID:   run.ID,
		RunDate: run.StartTime,
		Rows:    make([]DetailedRow, 0, len(trades)),
	}

	byTrade := groupResultsByTrade(results)

	for _, trade := range trades {
		row := DetailedRow{
			Chain:       trade.Chain,
			TradingPair: trade.Pair,
			FromToken:   trade.FromTokenSymbol,
			ToToken:     trade.ToTokenSymbol,
			FromAddress: checksumAddress(trade.FromToken),
			ToAddress:   checksumAddress(trade.ToToken),
			AmountUSD:   trade.AmountUSD,
			InputAmount: trade.InputAmount,
			Providers:   make(map[string]QuoteCell),
		}

		var valid []validQuote
		validIdx := make(map[string]int)

		for _, r := range byTrade[trade.ID] {
			key := CanonicalProvider(r.Provider)
			if key == "" {
				continue
			}

			cell := row.Providers[key]
			cell.Time = r.ElapsedTime

			if r.OutputAmount != nil && *r.OutputAmount != "" && r.StatusCode == 200 {
				// the raw output always surfaces on a success status;
				// parseability only gates winner contention
				cell.Output = r.OutputAmount
				if output, ok := parseOutput(r); ok {
					// duplicate rows for one provider keep first-seen
					// position, last-seen value
					if idx, seen := validIdx[key]; seen {
						valid[idx].output = output
					} else {
						validIdx[key] = len(valid)
						valid = append(valid, validQuote{provider: key, output: output})
					}
				}
			}

			row.Providers[key] = cell
		}

		switch {
		case len(valid) > 1:
			// stable: equal outputs resolve to the first provider encountered
			sort.SliceStable(valid, func(i, j int) bool {
				return valid[i].output > valid[j].output
			})
			diff := valid[0].output - valid[1].output
			row.Winner = valid[0].provider
			row.OutputDiff = &diff
		case len(valid) == 1:
			diff := 0.0
			row.Winner = valid[0].provider
			row.OutputDiff = &diff
		default:
			row.Winner = AllErrorWinner
		}

		base.Rows = append(base.Rows, row)
	}

	return base
}
