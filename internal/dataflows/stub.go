package dataflows

import (
	"context"
	"time"

	"github.com/dyike/coveredcall/models"
)

// StubProvider serves fixed snapshots for offline and deterministic runs.
// Identical inputs always produce identical snapshots.
type StubProvider struct{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func f(v float64) *float64 { return &v }

func (p *StubProvider) Snapshot(_ context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	t := NormalizeSymbol(ticker)
	asOf := time.Now().UTC()

	switch t {
	case "AAPL":
		return &models.FundamentalSnapshot{
			Ticker:              "AAPL",
			Source:              "stub",
			Price:               f(190.0),
			MarketCap:           f(2.9e12),
			RevenueGrowthYoYPct: f(2.0),
			EPSGrowthYoYPct:     f(6.0),
			GrossMarginPct:      f(44.0),
			OperatingMarginPct:  f(30.0),
			DebtToEquity:        f(1.5),
			Quality:             models.DataQuality{AsOf: asOf, IsStub: true},
		}, nil

	case "MSFT":
		return &models.FundamentalSnapshot{
			Ticker:              "MSFT",
			Source:              "stub",
			Price:               f(420.0),
			MarketCap:           f(3.1e12),
			RevenueGrowthYoYPct: f(12.0),
			EPSGrowthYoYPct:     f(18.0),
			GrossMarginPct:      f(69.0),
			OperatingMarginPct:  f(42.0),
			DebtToEquity:        f(0.6),
			Quality:             models.DataQuality{AsOf: asOf, IsStub: true},
		}, nil

	case "TSLA":
		return &models.FundamentalSnapshot{
			Ticker:              "TSLA",
			Source:              "stub",
			Price:               f(250.0),
			MarketCap:           f(8.0e11),
			RevenueGrowthYoYPct: f(5.0),
			EPSGrowthYoYPct:     f(-10.0),
			GrossMarginPct:      f(18.0),
			OperatingMarginPct:  f(8.0),
			DebtToEquity:        f(0.2),
			Quality: models.DataQuality{
				AsOf:     asOf,
				IsStub:   true,
				Warnings: []string{"EPS growth negative in stub snapshot"},
			},
		}, nil
	}

	// Unknown ticker: snapshot exists but every scoring input is missing.
	// The fundamentals node decides whether that is fatal.
	return &models.FundamentalSnapshot{
		Ticker: t,
		Source: "stub",
		Quality: models.DataQuality{
			AsOf:   asOf,
			IsStub: true,
			MissingFields: []string{
				"price",
				"market_cap",
				"revenue_growth_yoy_pct",
				"operating_margin_pct",
				"debt_to_equity",
			},
			Warnings: []string{"No stub fundamentals available for this ticker"},
		},
	}, nil
}
