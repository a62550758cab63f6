package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataQuality describes how trustworthy a snapshot is. The deterministic
// node reads MissingFields to derive its confidence.
type DataQuality struct {
	AsOf          time.Time `json:"as_of"`
	IsStub        bool      `json:"is_stub"`
	MissingFields []string  `json:"missing_fields,omitempty"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// MarketData is the quote payload attached to a snapshot when the provider
// has live pricing. Prices use decimal to avoid float drift in display.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// FundamentalSnapshot is the data-fetch collaborator's fixed schema. All
// ratio fields are pointers: nil means the provider could not supply the
// figure, which is different from zero.
type FundamentalSnapshot struct {
	Ticker    string      `json:"ticker"`
	Source    string      `json:"source"`
	Market    *MarketData `json:"market,omitempty"`
	Price     *float64    `json:"price,omitempty"`
	MarketCap *float64    `json:"market_cap,omitempty"`

	RevenueGrowthYoYPct *float64 `json:"revenue_growth_yoy_pct,omitempty"`
	EPSGrowthYoYPct     *float64 `json:"eps_growth_yoy_pct,omitempty"`
	GrossMarginPct      *float64 `json:"gross_margin_pct,omitempty"`
	OperatingMarginPct  *float64 `json:"operating_margin_pct,omitempty"`
	DebtToEquity        *float64 `json:"debt_to_equity,omitempty"`

	Quality DataQuality `json:"quality"`
}
