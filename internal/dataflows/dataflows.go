// Package dataflows is the data-fetch collaborator: it turns a ticker into
// a FundamentalSnapshot. Providers are swappable without touching agent
// logic; each is called exactly once per run.
package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/models"
)

// ErrDataUnavailable is fatal: without a snapshot no report can be built.
var ErrDataUnavailable = errors.New("fundamentals data unavailable")

// Provider fetches the fundamentals snapshot for one ticker.
type Provider interface {
	Snapshot(ctx context.Context, ticker string) (*models.FundamentalSnapshot, error)
}

// NewProvider selects a provider from config.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.FundamentalsProvider {
	case "", "stub":
		return NewStubProvider(), nil
	case "yahoo":
		return NewYahooProvider(cfg), nil
	case "finnhub":
		return NewFinnhubProvider(cfg), nil
	}
	return nil, fmt.Errorf("unknown fundamentals provider: %q", cfg.FundamentalsProvider)
}

// ValidateSymbol checks basic ticker shape before hitting any provider.
func ValidateSymbol(symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts a symbol to the canonical uppercase form.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}
