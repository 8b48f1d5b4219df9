/**
 * @description
 * Derived-view types for the benchmark aggregation engine.
 * These are the shapes the HTTP layer serves and the cache layer memoizes.
 *
 * @dependencies
 * - standard "time"
 */

package analytics

import (
	"time"
)

// AllErrorWinner is the winner sentinel for trades where no provider returned
// a valid quote.
const AllErrorWinner = "All Error"

// QuoteCell is one provider's quote for one trade: response time in seconds
// and the raw string-encoded output amount. Either side may be absent.
type QuoteCell struct {
	Time   *float64 `json:"time"`
	Output *string  `json:"output"`
}

// DetailedRow is the flattened per-trade view with a declared winner.
// Providers is keyed by canonical provider name (see CanonicalProvider).
type DetailedRow struct {
	Chain         string               `json:"chain"`
	TradingPair   string               `json:"trading_pair"`
	FromToken     *string              `json:"from_token"`
	ToToken       *string              `json:"to_token"`
	FromAddress   string               `json:"from_address"`
	ToAddress     string               `json:"to_address"`
	AmountUSD     float64              `json:"amount_usd"`
	InputAmount   *string              `json:"input_amount"`
	Providers     map[string]QuoteCell `json:"providers"`
	Winner        string               `json:"winner"`
	OutputDiff    *float64             `json:"output_diff"`
	OutputDiffUSD *float64             `json:"output_diff_usd"` // reserved; never computed
}

// DetailedBase is the per-run detailed view, cached independent of pagination
type DetailedBase struct {
	RunID   uint64        `json:"run_id"`
	RunDate *time.Time    `json:"run_date"`
	Rows    []DetailedRow `json:"rows"`
}

// ProviderAnalytics is one provider's statistical rollup within a scope
// (overall or a single chain).
type ProviderAnalytics struct {
	TotalQuotes         int     `json:"total_quotes"`
	SuccessfulQuotes    int     `json:"successful_quotes"`
	ErrorCount          int     `json:"error_count"`
	ParticipationRate   float64 `json:"participation_rate"`
	WinRate             float64 `json:"win_rate"`
	AverageResponseTime float64 `json:"average_response_time"`
	TotalWins           int     `json:"total_wins"`
}

// ChainAnalytics is the per-chain scope: how many distinct trades produced at
// least one provider result on that chain, and the provider rollups.
type ChainAnalytics struct {
	TotalTradesAnalyzed int                          `json:"total_trades_analyzed"`
	ProviderAnalytics   map[string]ProviderAnalytics `json:"provider_analytics"`
}

// WinRatesBase is the per-run analytics aggregate, cached independent of any
// chain filter or response mode.
type WinRatesBase struct {
	RunID               uint64                       `json:"run_id"`
	RunDate             *time.Time                   `json:"run_date"`
	Overall             map[string]ProviderAnalytics `json:"overall"`
	TotalTradesAnalyzed int                          `json:"total_trades_analyzed"`
	ByChain             map[string]ChainAnalytics    `json:"by_chain"`
}
