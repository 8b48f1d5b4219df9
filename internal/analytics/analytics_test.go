package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/dexmark-project/backend/internal/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func makeRun(id uint64) models.BenchmarkRun {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return models.BenchmarkRun{ID: id, StartTime: &start}
}

func makeTrade(id uint64, chain string) models.Trade {
	return models.Trade{
		ID:        id,
		RunID:     1,
		Chain:     chain,
		Pair:      "WETH/USDC",
		FromToken: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		ToToken:   "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		AmountUSD: 10000,
	}
}

func quote(tradeID uint64, provider, output string, elapsed float64, status int) models.ProviderResult {
	r := models.ProviderResult{
		TradeID:     tradeID,
		Provider:    provider,
		ElapsedTime: f64Ptr(elapsed),
		StatusCode:  status,
	}
	if output != "" {
		r.OutputAmount = strPtr(output)
	}
	return r
}

func TestCanonicalProvider(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"GlueX", "gluex"},
		{"0x", "zerox"},
		{"0X", "zerox"},
		{" Odos ", "odos"},
		{"1inch", "1inch"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CanonicalProvider(c.in); got != c.want {
			t.Errorf("CanonicalProvider(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDetailedTwoValidQuotes(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "100", 0.5, 200),
		quote(10, "B", "90", 0.8, 200),
	}

	base := BuildDetailed(run, trades, results)

	if len(base.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(base.Rows))
	}
	row := base.Rows[0]
	if row.Winner != "a" {
		t.Fatalf("winner = %q, want %q", row.Winner, "a")
	}
	if row.OutputDiff == nil || *row.OutputDiff != 10 {
		t.Fatalf("output_diff = %v, want 10", row.OutputDiff)
	}
	if row.OutputDiffUSD != nil {
		t.Fatalf("output_diff_usd must stay null, got %v", *row.OutputDiffUSD)
	}
	if cell, ok := row.Providers["b"]; !ok || cell.Output == nil || *cell.Output != "90" {
		t.Fatalf("provider b cell wrong: %+v", cell)
	}
}

func TestDetailedSingleValidQuote(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "GlueX", "123.4", 0.3, 200),
	}

	row := BuildDetailed(run, trades, results).Rows[0]

	if row.Winner != "gluex" {
		t.Fatalf("winner = %q, want gluex", row.Winner)
	}
	if row.OutputDiff == nil || *row.OutputDiff != 0 {
		t.Fatalf("output_diff = %v, want exactly 0", row.OutputDiff)
	}
}

func TestDetailedAllError(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "", 1.2, 500),
	}

	row := BuildDetailed(run, trades, results).Rows[0]

	if row.Winner != AllErrorWinner {
		t.Fatalf("winner = %q, want %q", row.Winner, AllErrorWinner)
	}
	if row.OutputDiff != nil {
		t.Fatalf("output_diff must be null with zero valid outputs, got %v", *row.OutputDiff)
	}
	// failed quotes still surface their response time
	if cell, ok := row.Providers["a"]; !ok || cell.Time == nil || *cell.Time != 1.2 {
		t.Fatalf("provider a time missing: %+v", cell)
	}
}

func TestDetailedUnparseableOutputExcluded(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "not-a-number", 0.5, 200),
		quote(10, "B", "50", 0.8, 200),
	}

	row := BuildDetailed(run, trades, results).Rows[0]

	if row.Winner != "b" {
		t.Fatalf("unparseable output must not contend for winner, got %q", row.Winner)
	}
	if row.OutputDiff == nil || *row.OutputDiff != 0 {
		t.Fatalf("output_diff = %v, want 0 (single valid quote)", row.OutputDiff)
	}
	// excluded from validity, but the raw output still surfaces
	if cell := row.Providers["a"]; cell.Output == nil || *cell.Output != "not-a-number" {
		t.Fatalf("raw output field lost the unparseable string: %+v", cell)
	}
}

func TestDetailedUnparseableOutputWithFailureStatusStaysAbsent(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "garbage", 0.5, 500),
	}

	row := BuildDetailed(run, trades, results).Rows[0]

	if cell := row.Providers["a"]; cell.Output != nil {
		t.Fatalf("non-success output must stay absent, got %q", *cell.Output)
	}
}

func TestDetailedTieBreakFirstEncountered(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "B", "100", 0.5, 200),
		quote(10, "A", "100", 0.4, 200),
	}

	row := BuildDetailed(run, trades, results).Rows[0]

	if row.Winner != "b" {
		t.Fatalf("equal outputs must resolve to the first encountered, got %q", row.Winner)
	}
	if row.OutputDiff == nil || *row.OutputDiff != 0 {
		t.Fatalf("output_diff = %v, want 0 for a tie", row.OutputDiff)
	}
}

func TestDetailedChecksumsAddresses(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}

	row := BuildDetailed(run, trades, nil).Rows[0]

	if row.FromAddress != "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2" {
		t.Fatalf("from_address not checksummed: %s", row.FromAddress)
	}
	if row.ToAddress != "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48" {
		t.Fatalf("to_address not checksummed: %s", row.ToAddress)
	}
}

func TestDetailedEmptyRun(t *testing.T) {
	base := BuildDetailed(makeRun(1), nil, nil)

	if base.Rows == nil {
		t.Fatal("rows must be an empty slice, not nil")
	}
	if len(base.Rows) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(base.Rows))
	}
}

func TestWinRatesScenario(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "100", 0.5, 200),
		quote(10, "B", "90", 1.5, 200),
	}

	base := BuildWinRates(run, trades, results)

	if base.TotalTradesAnalyzed != 1 {
		t.Fatalf("total_trades_analyzed = %d, want 1", base.TotalTradesAnalyzed)
	}

	a := base.Overall["a"]
	b := base.Overall["b"]

	if a.TotalWins != 1 || b.TotalWins != 0 {
		t.Fatalf("wins: a=%d b=%d, want 1/0", a.TotalWins, b.TotalWins)
	}
	if a.WinRate != 100 || b.WinRate != 0 {
		t.Fatalf("win rates: a=%v b=%v, want 100/0", a.WinRate, b.WinRate)
	}
	if a.ParticipationRate != 100 || b.ParticipationRate != 100 {
		t.Fatalf("participation: a=%v b=%v, want 100/100", a.ParticipationRate, b.ParticipationRate)
	}
	if a.AverageResponseTime != 0.5 || b.AverageResponseTime != 1.5 {
		t.Fatalf("avg response: a=%v b=%v", a.AverageResponseTime, b.AverageResponseTime)
	}

	eth, ok := base.ByChain["ethereum"]
	if !ok {
		t.Fatal("ethereum chain bucket missing")
	}
	if eth.TotalTradesAnalyzed != 1 {
		t.Fatalf("chain trades analyzed = %d, want 1", eth.TotalTradesAnalyzed)
	}
	if eth.ProviderAnalytics["a"].TotalWins != 1 {
		t.Fatal("chain-scope win missing for a")
	}
}

func TestWinRatesErrorOnly(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "A", "", 2.0, 500),
	}

	base := BuildWinRates(run, trades, results)

	a := base.Overall["a"]
	if a.ErrorCount != 1 || a.SuccessfulQuotes != 0 || a.TotalQuotes != 1 {
		t.Fatalf("unexpected tallies: %+v", a)
	}
	if a.ParticipationRate != 0 || a.WinRate != 0 || a.AverageResponseTime != 0 {
		t.Fatalf("rates must be exactly 0: %+v", a)
	}
}

func TestWinRatesRatesStayInRange(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{
		makeTrade(10, "ethereum"),
		makeTrade(11, "base"),
		makeTrade(12, "ethereum"),
	}
	results := []models.ProviderResult{
		quote(10, "A", "100", 0.5, 200),
		quote(10, "B", "110", 0.6, 200),
		quote(11, "A", "", 1.0, 500),
		quote(11, "B", "55", 0.7, 200),
		quote(12, "A", "70", 0.4, 200),
	}

	base := BuildWinRates(run, trades, results)

	check := func(scope string, pa ProviderAnalytics) {
		for name, rate := range map[string]float64{"participation": pa.ParticipationRate, "win": pa.WinRate} {
			if rate < 0 || rate > 100 || math.IsNaN(rate) {
				t.Errorf("%s %s rate out of range: %v", scope, name, rate)
			}
		}
	}
	for provider, pa := range base.Overall {
		check("overall/"+provider, pa)
	}
	for chain, ca := range base.ByChain {
		for provider, pa := range ca.ProviderAnalytics {
			check(chain+"/"+provider, pa)
		}
	}

	// A attempted 3 quotes, 2 succeeded, won 1 (trade 12)
	a := base.Overall["a"]
	if a.TotalQuotes != 3 || a.SuccessfulQuotes != 2 || a.ErrorCount != 1 {
		t.Fatalf("unexpected tallies for a: %+v", a)
	}
	if want := float64(2) / 3 * 100; a.ParticipationRate != want {
		t.Fatalf("participation for a = %v, want %v", a.ParticipationRate, want)
	}
	if want := float64(1) / 3 * 100; a.WinRate != want {
		t.Fatalf("win rate for a = %v, want %v", a.WinRate, want)
	}
}

func TestWinRatesPerChainTradeCountsOnlySeenTrades(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{
		makeTrade(10, "ethereum"),
		makeTrade(11, "ethereum"), // no provider results at all
	}
	results := []models.ProviderResult{
		quote(10, "A", "100", 0.5, 200),
	}

	base := BuildWinRates(run, trades, results)

	if base.TotalTradesAnalyzed != 2 {
		t.Fatalf("overall count is all trades of the run, got %d", base.TotalTradesAnalyzed)
	}
	if base.ByChain["ethereum"].TotalTradesAnalyzed != 1 {
		t.Fatalf("chain count must only include trades with results, got %d",
			base.ByChain["ethereum"].TotalTradesAnalyzed)
	}
}

func TestWinRatesEmptyRun(t *testing.T) {
	base := BuildWinRates(makeRun(1), nil, nil)

	if base.TotalTradesAnalyzed != 0 {
		t.Fatalf("expected 0 trades, got %d", base.TotalTradesAnalyzed)
	}
	if base.Overall == nil || base.ByChain == nil {
		t.Fatal("empty run must yield empty maps, not nil")
	}
	if len(base.Overall) != 0 || len(base.ByChain) != 0 {
		t.Fatal("expected empty aggregates for an empty run")
	}
}

func TestWinRatesNormalizesZeroX(t *testing.T) {
	run := makeRun(1)
	trades := []models.Trade{makeTrade(10, "ethereum")}
	results := []models.ProviderResult{
		quote(10, "0x", "100", 0.5, 200),
	}

	base := BuildWinRates(run, trades, results)

	if _, ok := base.Overall["zerox"]; !ok {
		t.Fatalf("0x must roll up under its alias, keys: %v", keysOf(base.Overall))
	}
	if _, ok := base.Overall["0x"]; ok {
		t.Fatal("literal 0x key must not appear")
	}
}

func keysOf(m map[string]ProviderAnalytics) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
