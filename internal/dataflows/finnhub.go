package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/models"
)

// FinnhubProvider fetches fundamentals ratios from the Finnhub metric API.
type FinnhubProvider struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewFinnhubProvider(cfg *config.Config) *FinnhubProvider {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubProvider{
		client: client,
		cache:  NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		apiKey: cfg.FinnhubAPIKey,
	}
}

// finnhubMetrics is the subset of /stock/metric we read.
type finnhubMetrics struct {
	Metric struct {
		MarketCap           *float64 `json:"marketCapitalization"`
		RevenueGrowthTTMYoY *float64 `json:"revenueGrowthTTMYoy"`
		EPSGrowthTTMYoY     *float64 `json:"epsGrowthTTMYoy"`
		GrossMarginTTM      *float64 `json:"grossMarginTTM"`
		OperatingMarginTTM  *float64 `json:"operatingMarginTTM"`
		DebtToEquity        *float64 `json:"totalDebt/totalEquityQuarterly"`
	} `json:"metric"`
}

type finnhubQuote struct {
	Current float64 `json:"c"`
	Open    float64 `json:"o"`
	High    float64 `json:"h"`
	Low     float64 `json:"l"`
}

func (p *FinnhubProvider) Snapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: finnhub API key not configured", ErrDataUnavailable)
	}
	if err := ValidateSymbol(ticker); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	symbol := NormalizeSymbol(ticker)

	var cached models.FundamentalSnapshot
	if p.cache.Get("finnhub", "snapshot", symbol, &cached) {
		return &cached, nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"metric": "all",
			"token":  p.apiKey,
		}).
		Get("/stock/metric")
	if err != nil {
		return nil, fmt.Errorf("%w: finnhub metric for %s: %v", ErrDataUnavailable, symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: finnhub metric for %s: HTTP %d", ErrDataUnavailable, symbol, resp.StatusCode())
	}

	var metrics finnhubMetrics
	if err := json.Unmarshal(resp.Body(), &metrics); err != nil {
		return nil, fmt.Errorf("%w: finnhub metric decode: %v", ErrDataUnavailable, err)
	}

	now := time.Now().UTC()
	snap := &models.FundamentalSnapshot{
		Ticker:              symbol,
		Source:              "finnhub",
		MarketCap:           metrics.Metric.MarketCap,
		RevenueGrowthYoYPct: metrics.Metric.RevenueGrowthTTMYoY,
		EPSGrowthYoYPct:     metrics.Metric.EPSGrowthTTMYoY,
		GrossMarginPct:      metrics.Metric.GrossMarginTTM,
		OperatingMarginPct:  metrics.Metric.OperatingMarginTTM,
		DebtToEquity:        metrics.Metric.DebtToEquity,
		Quality:             models.DataQuality{AsOf: now},
	}

	// Best-effort quote; the ratios above are what the scoring needs.
	var q finnhubQuote
	qresp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"symbol": symbol, "token": p.apiKey}).
		Get("/quote")
	if err == nil && qresp.StatusCode() == 200 && json.Unmarshal(qresp.Body(), &q) == nil && q.Current > 0 {
		price := q.Current
		snap.Price = &price
	} else {
		snap.Quality.Warnings = append(snap.Quality.Warnings, "finnhub quote unavailable")
	}

	markMissing(snap)

	p.cache.Set("finnhub", "snapshot", symbol, snap)
	return snap, nil
}

func markMissing(snap *models.FundamentalSnapshot) {
	missing := []string{}
	if snap.Price == nil {
		missing = append(missing, "price")
	}
	if snap.MarketCap == nil {
		missing = append(missing, "market_cap")
	}
	if snap.RevenueGrowthYoYPct == nil {
		missing = append(missing, "revenue_growth_yoy_pct")
	}
	if snap.OperatingMarginPct == nil {
		missing = append(missing, "operating_margin_pct")
	}
	if snap.DebtToEquity == nil {
		missing = append(missing, "debt_to_equity")
	}
	snap.Quality.MissingFields = missing
}
