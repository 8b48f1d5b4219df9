/**
 * @description
 * Benchmark database models.
 * Maps to the 'benchmark_runs', 'trade_results' and 'provider_results' tables in PostgreSQL.
 * All three are written by the external ingestion pipeline; this service only reads them.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// BenchmarkRun represents one complete benchmarking execution.
// Run ids are ordinal and monotonically increasing, so the latest run is MAX(id).
type BenchmarkRun struct {
	ID        uint64     `gorm:"primaryKey;column:id" json:"id"`
	StartTime *time.Time `gorm:"column:start_time" json:"start_time"`
}

// TableName overrides the table name used by BenchmarkRun to `benchmark_runs`
func (BenchmarkRun) TableName() string {
	return "benchmark_runs"
}

// Trade represents one simulated swap intent benchmarked within a run
type Trade struct {
	ID              uint64  `gorm:"primaryKey;column:id" json:"id"`
	RunID           uint64  `gorm:"column:run_id;index" json:"run_id"`
	Chain           string  `gorm:"column:chain" json:"chain"`
	Pair            string  `gorm:"column:pair" json:"pair"`
	FromToken       string  `gorm:"column:from_token" json:"from_token"`
	ToToken         string  `gorm:"column:to_token" json:"to_token"`
	FromTokenSymbol *string `gorm:"column:from_token_symbol" json:"from_token_symbol"`
	ToTokenSymbol   *string `gorm:"column:to_token_symbol" json:"to_token_symbol"`
	AmountUSD       float64 `gorm:"column:amount_usd" json:"amount_usd"`
	InputAmount     *string `gorm:"column:input_amount" json:"input_amount"`
}

// TableName overrides the table name used by Trade to `trade_results`
func (Trade) TableName() string {
	return "trade_results"
}

// ProviderResult represents one provider quote attempt for a trade.
// Provider is free text from ingestion and must be case-normalized before use.
// OutputAmount is string-encoded (raw token units can overflow numeric columns).
type ProviderResult struct {
	ID           uint64   `gorm:"primaryKey;column:id" json:"id"`
	TradeID      uint64   `gorm:"column:trade_id;index" json:"trade_id"`
	Provider     string   `gorm:"column:provider" json:"provider"`
	OutputAmount *string  `gorm:"column:output_amount" json:"output_amount"`
	ElapsedTime  *float64 `gorm:"column:elapsed_time" json:"elapsed_time"`
	StatusCode   int      `gorm:"column:status_code" json:"status_code"`
}

// TableName overrides the table name used by ProviderResult to `provider_results`
func (ProviderResult) TableName() string {
	return "provider_results"
}
