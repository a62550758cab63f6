package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/models"
)

// YahooProvider combines the Yahoo quote feed (price, market data) with the
// quoteSummary financialData module (fundamentals ratios).
type YahooProvider struct {
	client *resty.Client
	cache  *CacheManager
}

func NewYahooProvider(cfg *config.Config) *YahooProvider {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo")

	client := resty.New()
	client.SetBaseURL("https://query1.finance.yahoo.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (coveredcall)")

	return &YahooProvider{
		client: client,
		cache:  NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
	}
}

// yahooNumber is Yahoo's {"raw": 0.31, "fmt": "31%"} wrapper; only the raw
// value matters.
type yahooNumber struct {
	Raw *float64 `json:"raw"`
}

// yahooFinancialData is the subset of the financialData module we read.
type yahooFinancialData struct {
	CurrentPrice     yahooNumber `json:"currentPrice"`
	RevenueGrowth    yahooNumber `json:"revenueGrowth"`
	EarningsGrowth   yahooNumber `json:"earningsGrowth"`
	GrossMargins     yahooNumber `json:"grossMargins"`
	OperatingMargins yahooNumber `json:"operatingMargins"`
	DebtToEquity     yahooNumber `json:"debtToEquity"`
}

type yahooSummaryEnvelope struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData *yahooFinancialData `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (p *YahooProvider) Snapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	symbol := NormalizeSymbol(ticker)

	var cached models.FundamentalSnapshot
	if p.cache.Get("yahoo", "snapshot", symbol, &cached) {
		return &cached, nil
	}

	q, err := equity.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo quote for %s: %v", ErrDataUnavailable, symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: yahoo returned no quote for %s", ErrDataUnavailable, symbol)
	}

	now := time.Now().UTC()
	price := q.RegularMarketPrice
	marketCap := float64(q.MarketCap)
	market := &models.MarketData{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(q.RegularMarketPrice),
		Open:      decimal.NewFromFloat(q.RegularMarketOpen),
		High:      decimal.NewFromFloat(q.RegularMarketDayHigh),
		Low:       decimal.NewFromFloat(q.RegularMarketDayLow),
		Volume:    int64(q.RegularMarketVolume),
		Timestamp: now,
	}

	fd, fdErr := p.fetchFinancialData(ctx, symbol)

	snap := buildYahooSnapshot(symbol, &price, &marketCap, market, fd, now)
	if fdErr != nil {
		snap.Quality.Warnings = append(snap.Quality.Warnings,
			fmt.Sprintf("yahoo financialData unavailable: %v", fdErr))
	}

	p.cache.Set("yahoo", "snapshot", symbol, snap)
	return snap, nil
}

func (p *YahooProvider) fetchFinancialData(ctx context.Context, symbol string) (*yahooFinancialData, error) {
	var envelope yahooSummaryEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("modules", "financialData,defaultKeyStatistics").
		SetResult(&envelope).
		Get("/v10/finance/quoteSummary/" + symbol)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quoteSummary status %s", resp.Status())
	}
	results := envelope.QuoteSummary.Result
	if len(results) == 0 || results[0].FinancialData == nil {
		return nil, fmt.Errorf("quoteSummary carried no financialData for %s", symbol)
	}
	return results[0].FinancialData, nil
}

// buildYahooSnapshot maps the raw Yahoo payloads onto the snapshot schema.
// Growth and margin figures arrive as decimals (0.12 = 12%); debtToEquity
// sometimes arrives as a percent figure like 150.0 meaning 1.5.
func buildYahooSnapshot(symbol string, price, marketCap *float64, market *models.MarketData, fd *yahooFinancialData, now time.Time) *models.FundamentalSnapshot {
	snap := &models.FundamentalSnapshot{
		Ticker:    symbol,
		Source:    "yahoo",
		Price:     price,
		MarketCap: marketCap,
		Market:    market,
		Quality:   models.DataQuality{AsOf: now},
	}

	var missing []string
	if price == nil {
		missing = append(missing, "price")
	}
	if marketCap == nil {
		missing = append(missing, "market_cap")
	}

	ratio := func(n yahooNumber, field string, scale float64) *float64 {
		if fd == nil || n.Raw == nil {
			missing = append(missing, field)
			return nil
		}
		v := *n.Raw * scale
		return &v
	}

	if fd != nil {
		snap.RevenueGrowthYoYPct = ratio(fd.RevenueGrowth, "revenue_growth_yoy_pct", 100.0)
		snap.EPSGrowthYoYPct = ratio(fd.EarningsGrowth, "eps_growth_yoy_pct", 100.0)
		snap.GrossMarginPct = ratio(fd.GrossMargins, "gross_margin_pct", 100.0)
		snap.OperatingMarginPct = ratio(fd.OperatingMargins, "operating_margin_pct", 100.0)
		snap.DebtToEquity = ratio(fd.DebtToEquity, "debt_to_equity", 1.0)
		if snap.DebtToEquity != nil && *snap.DebtToEquity > 10 {
			d2e := *snap.DebtToEquity / 100.0
			snap.DebtToEquity = &d2e
		}
	} else {
		missing = append(missing,
			"revenue_growth_yoy_pct",
			"eps_growth_yoy_pct",
			"gross_margin_pct",
			"operating_margin_pct",
			"debt_to_equity",
		)
	}

	snap.Quality.MissingFields = missing
	return snap
}
