package agents

import (
	"fmt"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/policy"
	"github.com/dyike/coveredcall/models"
)

// Proposal assembles the final report: resolver decision plus the trade
// action from the policy table, with upstream artifacts attached verbatim
// in the appendix. Pure assembly; no collaborator calls, so the node can
// never degrade or stall.
func Proposal(cfg *config.Config, st *models.AnalysisState) error {
	final := st.Final
	decision := policy.Decide(final.Stance, final.CoveredCallBias, final.Confidence, cfg.MinActionConfidence)

	points, risks := reportNarrative(st)

	var appendix *models.Appendix
	if st.Divergence != nil || st.Debate != nil {
		appendix = &models.Appendix{Divergence: st.Divergence, Debate: st.Debate}
	}

	report := &models.Report{
		Ticker:          st.Ticker,
		Stance:          final.Stance,
		CoveredCallBias: final.CoveredCallBias,
		Confidence:      final.Confidence,
		Action:          decision.Action,
		ActionReason:    decision.Reason,
		KeyPoints:       points,
		Risks:           risks,
		Appendix:        appendix,
	}
	if err := st.SetReport(report); err != nil {
		return err
	}
	st.Trace(consts.NodeProposal, "report action=%s stance=%s conf=%.2f",
		report.Action, report.Stance, report.Confidence)
	return nil
}

// reportNarrative picks key points and risks for the report. The winning
// view's narrative is used; when the winner carries none, fall back to the
// other view, then to a minimal synthesis from the snapshot.
func reportNarrative(st *models.AnalysisState) (points, risks []string) {
	ordered := []*models.StanceView{}
	if st.Final.Source == models.SourceAssisted {
		ordered = append(ordered, st.AssistedView, st.DetView)
	} else {
		ordered = append(ordered, st.DetView, st.AssistedView)
	}

	for _, v := range ordered {
		if v == nil {
			continue
		}
		if points == nil && len(v.KeyPoints) > 0 {
			points = v.KeyPoints
		}
		if risks == nil && len(v.Risks) > 0 {
			risks = v.Risks
		}
	}

	if points == nil {
		points = []string{fmt.Sprintf("Fundamentals view for %s: %s with %s bias.",
			st.Ticker, st.Final.Stance, st.Final.CoveredCallBias)}
	}
	return clip(points, 4), clip(risks, 2)
}
