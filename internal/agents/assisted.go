package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

// ErrAssistedUnavailable: the mode asked for an assisted stance but no
// completion backend is configured. Degraded, never fatal.
var ErrAssistedUnavailable = errors.New("assisted stance unavailable")

// stancePayload is the JSON contract every stance-producing completion must
// satisfy. Bullets/risks arrive unbounded and are clipped on conversion.
type stancePayload struct {
	Stance          string   `json:"stance"`
	CoveredCallBias string   `json:"covered_call_bias"`
	Confidence      float64  `json:"confidence"`
	Bullets         []string `json:"bullets"`
	Risks           []string `json:"risks"`
}

func (p *stancePayload) validate() error {
	switch models.Stance(p.Stance) {
	case models.StanceBullish, models.StanceNeutral, models.StanceBearish:
	default:
		return fmt.Errorf("%w: stance %q", llm.ErrCompletionProtocol, p.Stance)
	}
	switch models.CoveredCallBias(p.CoveredCallBias) {
	case models.BiasUpside, models.BiasIncome, models.BiasCaution:
	default:
		return fmt.Errorf("%w: covered_call_bias %q", llm.ErrCompletionProtocol, p.CoveredCallBias)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", llm.ErrCompletionProtocol, p.Confidence)
	}
	return nil
}

func (p *stancePayload) toView() *models.StanceView {
	return &models.StanceView{
		Stance:          models.Stance(p.Stance),
		CoveredCallBias: models.CoveredCallBias(p.CoveredCallBias),
		Confidence:      p.Confidence,
		KeyPoints:       clip(p.Bullets, 4),
		Risks:           clip(p.Risks, 2),
	}
}

func (p *stancePayload) toArgument() *models.AgentArgument {
	return &models.AgentArgument{
		Stance:          models.Stance(p.Stance),
		CoveredCallBias: models.CoveredCallBias(p.CoveredCallBias),
		Confidence:      p.Confidence,
		Bullets:         clip(p.Bullets, 2),
		Risks:           clip(p.Risks, 1),
	}
}

// Assisted produces the second stance via the completion collaborator. Any
// collaborator failure degrades the run: the state is marked, a notice goes
// to the diagnostic channel, and the workflow continues deterministic-only.
// The node returns an error only for programming errors (state overwrite).
func Assisted(ctx context.Context, cfg *config.Config, comp llm.Completer, st *models.AnalysisState, ch *output.Channels) error {
	if !st.Mode.Assisted() {
		return nil
	}

	view, err := assistedView(ctx, cfg, comp, st)
	if err != nil {
		st.Degraded = true
		st.Trace(consts.NodeAssisted, "assisted stance degraded: %v", err)
		ch.Degraded(consts.NodeAssisted, err)
		return nil
	}

	if err := st.SetAssistedView(view); err != nil {
		return err
	}
	st.Trace(consts.NodeAssisted, "assisted stance=%s bias=%s conf=%.2f",
		view.Stance, view.CoveredCallBias, view.Confidence)
	return nil
}

func assistedView(ctx context.Context, cfg *config.Config, comp llm.Completer, st *models.AnalysisState) (*models.StanceView, error) {
	if comp == nil {
		return nil, fmt.Errorf("%w: no completion provider configured", ErrAssistedUnavailable)
	}
	if st.Mode == models.ModeAgentic {
		return agenticView(ctx, cfg, comp, st)
	}

	var payload stancePayload
	if err := comp.CompleteJSON(ctx, consts.RoleAssisted, assistedSystem, assistedUser(st.Snapshot), &payload); err != nil {
		return nil, err
	}
	if err := payload.validate(); err != nil {
		return nil, err
	}
	return payload.toView(), nil
}
