// Package divergence scores the disagreement between the deterministic and
// assisted stances. Pure functions only: no clock, no I/O, no collaborators.
package divergence

import (
	"math"

	"github.com/dyike/coveredcall/models"
)

// Dimension weights. Stance disagreement dominates; a confidence gap alone
// can still cross the materiality threshold when labels agree.
const (
	stanceWeight = 0.45
	biasWeight   = 0.30
	confWeight   = 0.25

	// Confidence gaps at or beyond this are treated as total disagreement
	// on the confidence axis.
	confSaturation = 0.5
)

// SeverityFor bands a score into the reporting severity.
func SeverityFor(score float64) models.Severity {
	switch {
	case score < 0.20:
		return models.SeverityAligned
	case score < 0.40:
		return models.SeverityMinor
	case score < 0.65:
		return models.SeverityMajor
	}
	return models.SeverityCritical
}

// ActionHint maps severity to the operator-facing suggestion.
func ActionHint(sev models.Severity) string {
	switch sev {
	case models.SeverityAligned:
		return "Proceed with deterministic recommendation"
	case models.SeverityMinor:
		return "Proceed but annotate assisted nuance"
	case models.SeverityMajor:
		return "Surface both views (or trigger debate)"
	}
	return "Require manual review or run debate"
}

// Compute measures the distance between two stance views. Each dimension is
// normalized to 0..1 first; materiality is a fixed threshold on the weighted
// score, so labels agreeing does not by itself suppress materiality.
func Compute(det, assisted *models.StanceView, materialityThreshold float64) *models.DivergenceReport {
	stanceDiv := math.Abs(float64(models.StanceScore(det.Stance)-models.StanceScore(assisted.Stance))) / 2.0
	biasDiv := math.Abs(float64(models.BiasScore(det.CoveredCallBias)-models.BiasScore(assisted.CoveredCallBias))) / 2.0
	confDiv := math.Min(math.Abs(det.Confidence-assisted.Confidence), confSaturation) / confSaturation

	score := stanceWeight*stanceDiv + biasWeight*biasDiv + confWeight*confDiv
	score = math.Max(0.0, math.Min(1.0, score))

	sev := SeverityFor(score)

	return &models.DivergenceReport{
		Score:                round3(score),
		Severity:             sev,
		Material:             score >= materialityThreshold,
		Stance:               [2]string{string(det.Stance), string(assisted.Stance)},
		CoveredCallBias:      [2]string{string(det.CoveredCallBias), string(assisted.CoveredCallBias)},
		Confidence:           [2]float64{round3(det.Confidence), round3(assisted.Confidence)},
		StanceDivergence:     round3(stanceDiv),
		BiasDivergence:       round3(biasDiv),
		ConfidenceDivergence: round3(confDiv),
		ActionHint:           ActionHint(sev),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
