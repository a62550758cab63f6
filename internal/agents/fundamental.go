// Package agents implements the workflow nodes. Each node reads its inputs
// from the shared state, writes its single output through the state's
// single-assignment setters, and appends trace records for the diagnostic
// channel.
package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/dataflows"
	"github.com/dyike/coveredcall/models"
)

// ErrDataInsufficient is fatal: the snapshot exists but carries none of the
// inputs the deterministic scoring needs, so no report can be grounded.
var ErrDataInsufficient = errors.New("fundamentals data insufficient for scoring")

// Fundamental fetches the snapshot and computes the deterministic stance.
// The scoring is a fixed, side-effect-free function of the snapshot ratios
// and the configured thresholds; identical inputs always yield the same
// stance.
func Fundamental(ctx context.Context, cfg *config.Config, provider dataflows.Provider, st *models.AnalysisState) error {
	snap, err := provider.Snapshot(ctx, st.Ticker)
	if err != nil {
		return err
	}
	if err := st.SetSnapshot(snap); err != nil {
		return err
	}

	growth := snap.RevenueGrowthYoYPct
	opm := snap.OperatingMarginPct
	d2e := snap.DebtToEquity

	if growth == nil && opm == nil && d2e == nil {
		return fmt.Errorf("%w: ticker=%s source=%s", ErrDataInsufficient, st.Ticker, snap.Source)
	}

	var points, risks []string
	bullish, bearish := 0, 0

	if growth != nil {
		points = append(points, fmt.Sprintf("Revenue growth YoY: %.1f%%", *growth))
		if *growth >= cfg.StrongGrowthPct {
			bullish++
		} else if *growth < 0 {
			bearish++
		}
	} else {
		risks = append(risks, "Missing revenue growth data")
	}

	if opm != nil {
		points = append(points, fmt.Sprintf("Operating margin: %.1f%%", *opm))
		if *opm >= cfg.StrongOperMarginPct {
			bullish++
		} else if *opm < cfg.MinOperMarginPct {
			bearish++
		}
	} else {
		risks = append(risks, "Missing operating margin data")
	}

	if d2e != nil {
		points = append(points, fmt.Sprintf("Debt-to-equity: %.2f", *d2e))
		if *d2e > cfg.MaxDebtToEquity {
			bearish++
			risks = append(risks, "Leverage is elevated")
		}
	} else {
		risks = append(risks, "Missing leverage (debt-to-equity) data")
	}

	var stance models.Stance
	switch {
	case bearish >= 2:
		stance = models.StanceBearish
	case bullish >= 2 && bearish == 0:
		stance = models.StanceBullish
	default:
		stance = models.StanceNeutral
	}

	var bias models.CoveredCallBias
	switch stance {
	case models.StanceBullish:
		bias = models.BiasUpside
		points = append(points, "Fundamentals tilt bullish: prefer higher strike / more OTM calls.")
	case models.StanceBearish:
		bias = models.BiasCaution
		points = append(points, "Fundamentals tilt bearish: consider no-trade or very conservative calls.")
	default:
		bias = models.BiasIncome
		points = append(points, "Fundamentals neutral: prefer income harvesting / closer strikes.")
	}

	missing := len(snap.Quality.MissingFields)
	confidence := 0.8
	if missing > 0 {
		confidence = 0.7 - 0.1*float64(missing)
		if confidence < 0.3 {
			confidence = 0.3
		}
	}

	view := &models.StanceView{
		Stance:          stance,
		CoveredCallBias: bias,
		Confidence:      confidence,
		KeyPoints:       clip(points, 4),
		Risks:           clip(append(risks, snap.Quality.Warnings...), 2),
	}
	if err := st.SetDetView(view); err != nil {
		return err
	}

	st.Trace(consts.NodeFundamentals,
		"deterministic stance=%s bias=%s conf=%.2f bullish=%d bearish=%d missing=%d",
		stance, bias, confidence, bullish, bearish, missing)
	return nil
}

func clip(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
