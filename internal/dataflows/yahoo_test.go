package dataflows

import (
	"encoding/json"
	"testing"
	"time"
)

const quoteSummaryPayload = `{
  "quoteSummary": {
    "result": [
      {
        "financialData": {
          "currentPrice": {"raw": 190.0, "fmt": "190.00"},
          "revenueGrowth": {"raw": 0.02, "fmt": "2.00%"},
          "earningsGrowth": {"raw": 0.06, "fmt": "6.00%"},
          "grossMargins": {"raw": 0.44, "fmt": "44.00%"},
          "operatingMargins": {"raw": 0.30, "fmt": "30.00%"},
          "debtToEquity": {"raw": 150.0, "fmt": "150.00"}
        }
      }
    ],
    "error": null
  }
}`

func decodeFinancialData(t *testing.T, payload string) *yahooFinancialData {
	t.Helper()
	var envelope yahooSummaryEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		t.Fatalf("decode quoteSummary: %v", err)
	}
	if len(envelope.QuoteSummary.Result) == 0 || envelope.QuoteSummary.Result[0].FinancialData == nil {
		t.Fatal("payload carried no financialData")
	}
	return envelope.QuoteSummary.Result[0].FinancialData
}

func TestYahooSnapshotCarriesRatios(t *testing.T) {
	fd := decodeFinancialData(t, quoteSummaryPayload)
	price, marketCap := 190.0, 2.9e12

	snap := buildYahooSnapshot("AAPL", &price, &marketCap, nil, fd, time.Now().UTC())

	if snap.RevenueGrowthYoYPct == nil || *snap.RevenueGrowthYoYPct != 2.0 {
		t.Fatalf("revenue growth must convert to percent, got %+v", snap.RevenueGrowthYoYPct)
	}
	if snap.OperatingMarginPct == nil || *snap.OperatingMarginPct != 30.0 {
		t.Fatalf("operating margin must convert to percent, got %+v", snap.OperatingMarginPct)
	}
	if snap.GrossMarginPct == nil || *snap.GrossMarginPct != 44.0 {
		t.Fatalf("gross margin must convert to percent, got %+v", snap.GrossMarginPct)
	}
	// Yahoo reports 150.0 meaning 150%; the snapshot carries the ratio.
	if snap.DebtToEquity == nil || *snap.DebtToEquity != 1.5 {
		t.Fatalf("debt-to-equity must normalize to a ratio, got %+v", snap.DebtToEquity)
	}
	if len(snap.Quality.MissingFields) != 0 {
		t.Fatalf("full payload must leave nothing missing: %v", snap.Quality.MissingFields)
	}
}

func TestYahooSnapshotSmallDebtRatioIsKept(t *testing.T) {
	raw := 0.6
	fd := &yahooFinancialData{DebtToEquity: yahooNumber{Raw: &raw}}
	snap := buildYahooSnapshot("MSFT", nil, nil, nil, fd, time.Now().UTC())

	if snap.DebtToEquity == nil || *snap.DebtToEquity != 0.6 {
		t.Fatalf("ratio-shaped debt-to-equity must pass through, got %+v", snap.DebtToEquity)
	}
}

func TestYahooSnapshotWithoutFinancialData(t *testing.T) {
	price := 100.0
	snap := buildYahooSnapshot("TSLA", &price, nil, nil, nil, time.Now().UTC())

	if snap.RevenueGrowthYoYPct != nil || snap.OperatingMarginPct != nil || snap.DebtToEquity != nil {
		t.Fatal("no financialData must mean no ratios")
	}
	missing := snap.Quality.MissingFields
	if len(missing) < 5 {
		t.Fatalf("all ratio fields must be flagged missing: %v", missing)
	}
}
