package agents

import (
	"errors"
	"fmt"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/divergence"
	"github.com/dyike/coveredcall/models"
)

// Divergence compares the deterministic and assisted views. With no
// assisted view (deterministic mode, or degraded assisted node) the node is
// a no-op and downstream routing treats the run as single-view.
func Divergence(cfg *config.Config, st *models.AnalysisState) error {
	if st.AssistedView == nil {
		st.Trace(consts.NodeDivergence, "skipped: no assisted view")
		return nil
	}

	report := divergence.Compute(st.DetView, st.AssistedView, cfg.MaterialityThreshold)
	if err := st.SetDivergence(report); err != nil {
		return err
	}
	st.Trace(consts.NodeDivergence, "score=%.3f severity=%s material=%t",
		report.Score, report.Severity, report.Material)
	return nil
}

// Resolve picks the final stance across the available views with a
// conservative policy:
//  1. ALIGNED/MINOR divergence: deterministic wins, even under force-debate
//     (forcing the debate is about the appendix, not the winner).
//  2. force-debate with a live assisted view (and the views not aligned):
//     assisted wins.
//  3. Fallback order deterministic, then assisted.
//
// When the views diverged materially, final confidence is capped at the
// lower of the two: a contested stance never reports more certainty than
// its weakest input.
func Resolve(cfg *config.Config, st *models.AnalysisState) error {
	det, assisted := st.DetView, st.AssistedView
	severity := "UNKNOWN"
	if st.Divergence != nil {
		severity = string(st.Divergence.Severity)
	}

	var picked *models.StanceView
	var source models.FinalSource
	var rationale string

	switch {
	case (severity == string(models.SeverityAligned) || severity == string(models.SeverityMinor)) && det != nil:
		picked, source = det, models.SourceDeterministic
		rationale = fmt.Sprintf("severity=%s; prefer deterministic", severity)
	case st.ForceDebate && assisted != nil:
		picked, source = assisted, models.SourceAssisted
		rationale = fmt.Sprintf("force_debate; using assisted; severity=%s", severity)
	case det != nil:
		picked, source = det, models.SourceDeterministic
		rationale = fmt.Sprintf("fallback deterministic; severity=%s", severity)
	case assisted != nil:
		picked, source = assisted, models.SourceAssisted
		rationale = fmt.Sprintf("fallback assisted; severity=%s", severity)
	default:
		return errors.New("resolve: no stance views available")
	}

	confidence := picked.Confidence
	if st.Divergence != nil && st.Divergence.Material && det != nil && assisted != nil {
		if det.Confidence < confidence {
			confidence = det.Confidence
		}
		if assisted.Confidence < confidence {
			confidence = assisted.Confidence
		}
		if confidence != picked.Confidence {
			rationale += "; confidence capped by material divergence"
		}
	}

	final := &models.FinalDecision{
		Stance:          picked.Stance,
		CoveredCallBias: picked.CoveredCallBias,
		Confidence:      confidence,
		Source:          source,
		Rationale:       rationale,
	}
	if err := st.SetFinal(final); err != nil {
		return err
	}
	st.Trace(consts.NodeResolve, "final source=%s stance=%s conf=%.2f (%s)",
		source, final.Stance, final.Confidence, rationale)
	return nil
}
