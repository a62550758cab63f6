// Package graph drives the analysis workflow as an explicit state machine.
// Every transition is a plain switch over named nodes; there is no dynamic
// graph construction, so the full node sequence for any run is readable
// from Run alone.
package graph

import (
	"context"
	"errors"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/agents"
	"github.com/dyike/coveredcall/internal/dataflows"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

// Workflow owns the collaborators for one or more runs. The provider and
// completer are fixed at construction; per-run parameters travel in the
// state object.
type Workflow struct {
	cfg      *config.Config
	provider dataflows.Provider
	comp     llm.Completer
	ch       *output.Channels
}

func NewWorkflow(cfg *config.Config, provider dataflows.Provider, comp llm.Completer, ch *output.Channels) *Workflow {
	return &Workflow{cfg: cfg, provider: provider, comp: comp, ch: ch}
}

// Outcome is the terminal classification of a run.
type Outcome struct {
	Doc   *models.ResultDocument
	State *models.AnalysisState
	Fatal bool
}

// Run executes the workflow for one ticker and always produces exactly one
// result document: the report on success (degraded or not), an error
// document on fatal failure. Trace records are flushed to the diagnostic
// channel after every node.
func (w *Workflow) Run(ctx context.Context, ticker string, mode models.Mode, forceDebate bool) *Outcome {
	st := models.NewAnalysisState(ticker, mode, forceDebate)
	st.Trace(consts.NodeStart, "run ticker=%s mode=%s force_debate=%t", st.Ticker, mode, forceDebate)

	node := consts.NodeStart
	var runErr error

	for node != consts.NodeDone && node != consts.NodeError {
		next, err := w.step(ctx, node, st)
		w.ch.FlushTrace(st)
		if err != nil {
			runErr = err
			node = consts.NodeError
			continue
		}
		node = next
	}

	if node == consts.NodeError {
		w.ch.Fatal(failedNode(st), runErr)
		return &Outcome{
			Doc:   &models.ResultDocument{Error: errorDocument(st.Ticker, runErr)},
			State: st,
			Fatal: true,
		}
	}

	return &Outcome{
		Doc:   &models.ResultDocument{FundamentalsReport: st.Report},
		State: st,
	}
}

// step executes one node and names the successor. Transitions are data
// dependent in exactly two places: the assisted node is entered only in
// assisted modes, and the debate gate below.
func (w *Workflow) step(ctx context.Context, node string, st *models.AnalysisState) (string, error) {
	switch node {
	case consts.NodeStart:
		return consts.NodeFundamentals, nil

	case consts.NodeFundamentals:
		if err := agents.Fundamental(ctx, w.cfg, w.provider, st); err != nil {
			return "", err
		}
		if st.Mode.Assisted() {
			return consts.NodeAssisted, nil
		}
		return consts.NodeDivergence, nil

	case consts.NodeAssisted:
		if err := agents.Assisted(ctx, w.cfg, w.comp, st, w.ch); err != nil {
			return "", err
		}
		return consts.NodeDivergence, nil

	case consts.NodeDivergence:
		if err := agents.Divergence(w.cfg, st); err != nil {
			return "", err
		}
		if w.shouldDebate(st) {
			return consts.NodeDebate, nil
		}
		return consts.NodeResolve, nil

	case consts.NodeDebate:
		if err := agents.Debate(ctx, w.cfg, w.comp, st, w.ch); err != nil {
			return "", err
		}
		return consts.NodeResolve, nil

	case consts.NodeResolve:
		if err := agents.Resolve(w.cfg, st); err != nil {
			return "", err
		}
		return consts.NodeProposal, nil

	case consts.NodeProposal:
		if err := agents.Proposal(w.cfg, st); err != nil {
			return "", err
		}
		return consts.NodeDone, nil
	}

	return "", errors.New("router reached unknown node: " + node)
}

// shouldDebate gates the expensive three-completion debate. It runs only
// with a live completion backend, and only when material divergence asks
// for it or the caller forced it.
func (w *Workflow) shouldDebate(st *models.AnalysisState) bool {
	if w.comp == nil || !st.Mode.Assisted() {
		return false
	}
	if st.ForceDebate {
		return true
	}
	return st.Divergence != nil && st.Divergence.Material
}

// failedNode names the deepest node that produced output, the best label
// available for a fatal summary.
func failedNode(st *models.AnalysisState) string {
	if len(st.TraceLog) > 0 {
		return st.TraceLog[len(st.TraceLog)-1].Node
	}
	return consts.NodeStart
}

func errorDocument(ticker string, err error) *models.ErrorDocument {
	code := "INTERNAL"
	switch {
	case errors.Is(err, dataflows.ErrDataUnavailable):
		code = "DATA_UNAVAILABLE"
	case errors.Is(err, agents.ErrDataInsufficient):
		code = "DATA_INSUFFICIENT"
	case errors.Is(err, models.ErrStateOverwrite):
		code = "STATE_OVERWRITE"
	case errors.Is(err, context.Canceled):
		code = "CANCELED"
	}
	return &models.ErrorDocument{Ticker: ticker, Code: code, Message: err.Error()}
}
