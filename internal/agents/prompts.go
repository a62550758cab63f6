package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dyike/coveredcall/models"
)

// Prompt contracts for the completion collaborator. Every prompt demands a
// bare JSON object; the client side tolerates fences and prose around it,
// but the contract keeps well-behaved backends on the strict path.

const assistedSystem = `You are a fundamentals advisor for covered-call strategy.
You MUST return ONLY valid JSON.

Hard rules:
- Output ONLY a JSON object (no markdown, no prose).
- Use ONLY these keys: stance, covered_call_bias, confidence, bullets, risks
- stance MUST be one of: "BULLISH", "NEUTRAL", "BEARISH"
- covered_call_bias MUST be one of: "UPSIDE", "INCOME", "CAUTION"
- confidence MUST be a number between 0.0 and 1.0
- bullets MUST be an array of 2-4 short strings
- risks MUST be an array of 0-2 short strings
- Use ONLY the provided snapshot numbers. Do not invent any numbers.
- Do NOT include literal newline characters inside JSON string values.`

const bullSystem = `You are a disciplined equity fundamentals analyst.
You must argue the BULLISH case using financial fundamentals only.
You are conservative, factual, and concise.

Hard rules:
- Output ONLY valid JSON (no markdown, no prose).
- Use ONLY these keys: stance, covered_call_bias, confidence, bullets, risks
- Enum strings must match exactly (case-sensitive).
- Each bullet and risk must be short (under 110 characters).
- Do NOT include literal newlines inside strings.`

const bearSystem = `You are a disciplined equity risk analyst.
You must argue the BEARISH case using financial fundamentals only.
You are skeptical, factual, and concise.

Hard rules:
- Output ONLY valid JSON (no markdown, no prose).
- Use ONLY these keys: stance, covered_call_bias, confidence, bullets, risks
- Enum strings must match exactly (case-sensitive).
- Each bullet and risk must be short (under 110 characters).
- Do NOT include literal newlines inside strings.`

const synthesisSystem = `You are a neutral investment committee chair.
You must synthesize the bull and bear arguments objectively.

Hard rules:
- Output ONLY valid JSON (no markdown, no prose).
- The JSON object must contain exactly these top-level keys: "synthesis", "disagreements".
- Both are arrays of short strings; disagreements may be empty [].
- Do NOT introduce facts not present in the arguments or the snapshot.
- Do NOT include trailing commas or markdown fences.`

const agenticSystem = `You are an investing assistant running in a bounded tool-calling loop.

Each turn you MUST output ONE JSON object with these keys:
- action: "CALL_TOOL" | "PROPOSE" | "ABSTAIN"
- tool_call: {"tool": "<name>", "args": {...}} (required only when action is CALL_TOOL)
- summary: short string
- stance: "BULLISH" | "NEUTRAL" | "BEARISH" (required when action is PROPOSE)
- covered_call_bias: "UPSIDE" | "INCOME" | "CAUTION" (required when action is PROPOSE)
- confidence: number between 0.0 and 1.0
- bullets: array of short strings
- risks: array of short strings

Available tools:
- get_snapshot: returns the fundamentals snapshot for the ticker
- get_metrics: returns the scoring thresholds in effect

Rules:
- Output ONLY the JSON object. No markdown, no commentary.
- A PROPOSE must cite at least two snapshot numbers in bullets.
- Do NOT echo the CONTEXT back; output the action object only.`

// snapshotBlock renders the snapshot with stable rounding so two runs over
// identical data produce identical prompts.
func snapshotBlock(snap *models.FundamentalSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", snap.Ticker)
	fmt.Fprintf(&b, "Price: %s\n", fmtFloat(snap.Price, 2))
	fmt.Fprintf(&b, "Market cap: %s\n", fmtMarketCap(snap.MarketCap))
	fmt.Fprintf(&b, "Revenue growth YoY: %s\n", fmtPct(snap.RevenueGrowthYoYPct))
	fmt.Fprintf(&b, "EPS growth YoY: %s\n", fmtPct(snap.EPSGrowthYoYPct))
	fmt.Fprintf(&b, "Gross margin: %s\n", fmtPct(snap.GrossMarginPct))
	fmt.Fprintf(&b, "Operating margin: %s\n", fmtPct(snap.OperatingMarginPct))
	fmt.Fprintf(&b, "Debt to equity: %s\n", fmtFloat(snap.DebtToEquity, 2))
	return b.String()
}

func fmtPct(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

func fmtFloat(v *float64, digits int) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.*f", digits, *v)
}

func fmtMarketCap(v *float64) string {
	if v == nil {
		return "—"
	}
	abs := *v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", *v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", *v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", *v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", *v/1e3)
	}
	return fmt.Sprintf("%.2f", *v)
}

func assistedUser(snap *models.FundamentalSnapshot) string {
	return fmt.Sprintf(`SNAPSHOT (ground truth; do not invent numbers):
%s
Return ONLY a single JSON object (no markdown, no extra text).
Use ONLY these keys: stance, covered_call_bias, confidence, bullets, risks.

Allowed values:
- stance: BULLISH | NEUTRAL | BEARISH (choose ONE of these exact strings)
- covered_call_bias: UPSIDE | INCOME | CAUTION (choose ONE of these exact strings)

Constraints:
- confidence: number between 0.0 and 1.0
- bullets: array of 2-4 short strings
- risks: array of 0-2 short strings
- Use "—" if a point depends on missing fundamentals.`, snapshotBlock(snap))
}

func bullUser(snap *models.FundamentalSnapshot) string {
	return fmt.Sprintf(`You are arguing the BULLISH case for this stock based on fundamentals.

SNAPSHOT:
%s
Focus on:
- Growth strength
- Profitability
- Balance-sheet resilience
- Competitive positioning

When citing a metric, copy the value EXACTLY as shown in the SNAPSHOT block.
Return ONLY valid JSON with keys stance, covered_call_bias, confidence, bullets (1-2 items), risks (0-1 items).`, snapshotBlock(snap))
}

func bearUser(snap *models.FundamentalSnapshot) string {
	return fmt.Sprintf(`You are arguing the BEARISH case for this stock based on fundamentals.

SNAPSHOT:
%s
Focus on:
- Leverage or balance-sheet risk
- Margin sustainability
- Growth durability
- Valuation or macro sensitivity

When citing a metric, copy the value EXACTLY as shown in the SNAPSHOT block.
Return ONLY valid JSON with keys stance, covered_call_bias, confidence, bullets (1-2 items), risks (0-1 items).`, snapshotBlock(snap))
}

func synthesisUser(snap *models.FundamentalSnapshot, bull, bear *models.AgentArgument) string {
	bullJSON, _ := json.Marshal(bull)
	bearJSON, _ := json.Marshal(bear)
	return fmt.Sprintf(`You are synthesizing a bull vs bear debate.

SNAPSHOT:
%s
BULL ARGUMENT (JSON):
%s

BEAR ARGUMENT (JSON):
%s

Your task:
- Objectively summarize areas of agreement and disagreement
- Do NOT introduce new facts

Return ONLY valid JSON with exactly these keys: "synthesis" (1-2 bullets), "disagreements" (may be []).`, snapshotBlock(snap), bullJSON, bearJSON)
}

// agenticContext is the per-turn state echoed to the model: what has been
// gathered so far, plus the error it must repair when the last turn failed.
type agenticContext struct {
	Ticker      string           `json:"ticker"`
	HasSnapshot bool             `json:"has_snapshot"`
	Snapshot    any              `json:"snapshot,omitempty"`
	ToolHistory []agenticToolRun `json:"tool_history"`
	LastError   string           `json:"last_error,omitempty"`
}

func agenticUser(ctx *agenticContext) string {
	blob, _ := json.MarshalIndent(ctx, "", "  ")
	return fmt.Sprintf(`You MUST output a single JSON object with an "action" key.

CONTEXT:
%s

Decide: call a tool to gather more data, PROPOSE a stance grounded in snapshot
numbers, or ABSTAIN if the data cannot support a view.`, blob)
}
