package agents

import (
	"context"
	"fmt"
	"unicode"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/consts"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/models"
)

// Agentic loop actions.
const (
	actionCallTool = "CALL_TOOL"
	actionPropose  = "PROPOSE"
	actionAbstain  = "ABSTAIN"
)

const maxToolCalls = 2

type agenticToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type agenticToolRun struct {
	Tool   string `json:"tool"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type agenticResponse struct {
	Action   string           `json:"action"`
	ToolCall *agenticToolCall `json:"tool_call,omitempty"`
	Summary  string           `json:"summary,omitempty"`
	stancePayload
}

// agenticView runs the bounded propose/tool loop. The model may gather data
// through the tool registry a limited number of times, then must PROPOSE a
// grounded stance or ABSTAIN. Round and tool-call budgets are hard caps;
// exhausting the rounds counts as a degraded assisted stance.
func agenticView(ctx context.Context, cfg *config.Config, comp llm.Completer, st *models.AnalysisState) (*models.StanceView, error) {
	actx := &agenticContext{
		Ticker:      st.Ticker,
		HasSnapshot: st.Snapshot != nil,
		Snapshot:    st.Snapshot,
		ToolHistory: []agenticToolRun{},
	}

	toolCalls := 0
	for round := 0; round < cfg.MaxAgenticRounds; round++ {
		var resp agenticResponse
		if err := comp.CompleteJSON(ctx, consts.RoleAgentic, agenticSystem, agenticUser(actx), &resp); err != nil {
			actx.LastError = err.Error()
			continue
		}

		switch resp.Action {
		case actionCallTool:
			if resp.ToolCall == nil {
				actx.LastError = "CALL_TOOL requires tool_call"
				continue
			}
			if toolCalls >= maxToolCalls {
				actx.LastError = "tool call limit reached; PROPOSE or ABSTAIN"
				continue
			}
			toolCalls++
			actx.ToolHistory = append(actx.ToolHistory, dispatchTool(cfg, st, resp.ToolCall))
			actx.LastError = ""
			st.Trace(consts.NodeAssisted, "agentic tool call %d: %s", toolCalls, resp.ToolCall.Tool)

		case actionPropose:
			if err := resp.validate(); err != nil {
				actx.LastError = err.Error()
				continue
			}
			if st.Snapshot != nil && !hasNumericGrounding(resp.Bullets) {
				actx.LastError = "PROPOSE must cite at least two snapshot numbers in bullets"
				continue
			}
			return resp.toView(), nil

		case actionAbstain:
			return nil, fmt.Errorf("%w: model abstained: %s", ErrAssistedUnavailable, resp.Summary)

		default:
			actx.LastError = fmt.Sprintf("unknown action %q", resp.Action)
		}
	}

	return nil, fmt.Errorf("%w: agentic loop exhausted %d rounds", ErrAssistedUnavailable, cfg.MaxAgenticRounds)
}

// dispatchTool serves a tool call from local state. Unknown tools are
// reported back to the model rather than failing the loop.
func dispatchTool(cfg *config.Config, st *models.AnalysisState, call *agenticToolCall) agenticToolRun {
	switch call.Tool {
	case "get_snapshot", "snapshot", "get-snapshot":
		if st.Snapshot == nil {
			return agenticToolRun{Tool: call.Tool, OK: false, Error: "no snapshot available"}
		}
		return agenticToolRun{Tool: call.Tool, OK: true, Result: st.Snapshot}
	case "get_metrics", "metrics":
		return agenticToolRun{Tool: call.Tool, OK: true, Result: map[string]float64{
			"strong_growth_pct":      cfg.StrongGrowthPct,
			"strong_oper_margin_pct": cfg.StrongOperMarginPct,
			"min_oper_margin_pct":    cfg.MinOperMarginPct,
			"max_debt_to_equity":     cfg.MaxDebtToEquity,
		}}
	}
	return agenticToolRun{Tool: call.Tool, OK: false, Error: fmt.Sprintf("unknown tool %q", call.Tool)}
}

// hasNumericGrounding requires at least two digits across the bullets, the
// cheapest proxy for "cited real snapshot numbers".
func hasNumericGrounding(bullets []string) bool {
	digits := 0
	for _, b := range bullets {
		for _, r := range b {
			if unicode.IsDigit(r) {
				digits++
				if digits >= 2 {
					return true
				}
			}
		}
	}
	return false
}
