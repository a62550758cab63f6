package agents

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

// Debate runs the bull and bear arguments concurrently, then asks the
// synthesis role to reconcile them. Every collaborator failure is absorbed
// into a low-confidence fallback argument so the debate summary always
// materializes once the node is entered; failures degrade the run but do
// not abort it.
func Debate(ctx context.Context, cfg *config.Config, comp llm.Completer, st *models.AnalysisState, ch *output.Channels) error {
	bull, bear := debateArguments(ctx, comp, st, ch)

	if err := st.SetBullCase(bull); err != nil {
		return err
	}
	if err := st.SetBearCase(bear); err != nil {
		return err
	}

	summary := &models.DebateSummary{Bull: *bull, Bear: *bear}

	var synth struct {
		Synthesis     []string `json:"synthesis"`
		Disagreements []string `json:"disagreements"`
	}
	err := comp.CompleteJSON(ctx, consts.RoleSynthesis, synthesisSystem, synthesisUser(st.Snapshot, bull, bear), &synth)
	if err != nil {
		st.Degraded = true
		st.Trace(consts.NodeDebate, "synthesis degraded: %v", err)
		ch.Degraded(consts.NodeDebate, err)
		summary.Synthesis = []string{"Debate synthesis unavailable; bull and bear cases stand as-is."}
	} else {
		summary.Synthesis = clip(synth.Synthesis, 2)
		summary.Disagreements = clip(synth.Disagreements, 2)
	}

	if err := st.SetDebate(summary); err != nil {
		return err
	}
	st.Trace(consts.NodeDebate, "debate complete bull=%s/%.2f bear=%s/%.2f",
		bull.Stance, bull.Confidence, bear.Stance, bear.Confidence)
	return nil
}

// debateArguments fans the two one-sided cases out concurrently. The group
// never returns an error: each side falls back independently.
func debateArguments(ctx context.Context, comp llm.Completer, st *models.AnalysisState, ch *output.Channels) (bull, bear *models.AgentArgument) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bull = oneSidedCase(gctx, comp, consts.RoleBull, bullSystem, bullUser(st.Snapshot), st, ch)
		return nil
	})
	g.Go(func() error {
		bear = oneSidedCase(gctx, comp, consts.RoleBear, bearSystem, bearUser(st.Snapshot), st, ch)
		return nil
	})
	_ = g.Wait()
	return bull, bear
}

func oneSidedCase(ctx context.Context, comp llm.Completer, role, system, user string, st *models.AnalysisState, ch *output.Channels) *models.AgentArgument {
	var payload stancePayload
	err := comp.CompleteJSON(ctx, role, system, user, &payload)
	if err == nil {
		err = payload.validate()
	}
	if err != nil {
		st.Degraded = true
		st.Trace(consts.NodeDebate, "%s case degraded: %v", role, err)
		ch.Degraded(consts.NodeDebate, err)
		return fallbackArgument(role)
	}
	return payload.toArgument()
}

func fallbackArgument(role string) *models.AgentArgument {
	bias := models.BiasIncome
	if role == consts.RoleBear {
		bias = models.BiasCaution
	}
	return &models.AgentArgument{
		Stance:          models.StanceNeutral,
		CoveredCallBias: bias,
		Confidence:      0.30,
		Bullets:         []string{"Case unavailable (completion failure); continuing without it."},
		Risks:           []string{"Debate may be incomplete due to a one-sided failure."},
	}
}
