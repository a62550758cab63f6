package models

// StanceView is one producer's assessment: the deterministic node and the
// assisted node both emit this shape.
type StanceView struct {
	Stance          Stance          `json:"stance"`
	CoveredCallBias CoveredCallBias `json:"covered_call_bias"`
	Confidence      float64         `json:"confidence"`
	KeyPoints       []string        `json:"key_points,omitempty"`
	Risks           []string        `json:"risks,omitempty"`
}

// AgentArgument is a one-sided debate case produced by the bull or bear role.
type AgentArgument struct {
	Stance          Stance          `json:"stance"`
	CoveredCallBias CoveredCallBias `json:"covered_call_bias"`
	Confidence      float64         `json:"confidence"`
	Bullets         []string        `json:"bullets,omitempty"`
	Risks           []string        `json:"risks,omitempty"`
}

// DebateSummary joins the two cases with a synthesis.
type DebateSummary struct {
	Bull          AgentArgument `json:"bull"`
	Bear          AgentArgument `json:"bear"`
	Synthesis     []string      `json:"synthesis,omitempty"`
	Disagreements []string      `json:"disagreements,omitempty"`
}

// DivergenceReport measures disagreement between the deterministic and
// assisted views. Material is the gate that can trigger the debate.
type DivergenceReport struct {
	Score    float64  `json:"score"`
	Severity Severity `json:"severity"`
	Material bool     `json:"material"`

	Stance          [2]string  `json:"stance"`
	CoveredCallBias [2]string  `json:"covered_call_bias"`
	Confidence      [2]float64 `json:"confidence"`

	StanceDivergence     float64 `json:"stance_divergence"`
	BiasDivergence       float64 `json:"bias_divergence"`
	ConfidenceDivergence float64 `json:"confidence_divergence"`

	ActionHint string `json:"action_hint"`
	Notes      string `json:"notes,omitempty"`
}

// FinalDecision is the resolver's pick across the available views.
type FinalDecision struct {
	Stance          Stance          `json:"stance"`
	CoveredCallBias CoveredCallBias `json:"covered_call_bias"`
	Confidence      float64         `json:"confidence"`
	Source          FinalSource     `json:"source"`
	Rationale       string          `json:"rationale"`
}

// Appendix carries upstream artifacts verbatim. Absent artifacts are
// omitted, never null-padded.
type Appendix struct {
	Divergence *DivergenceReport `json:"divergence,omitempty"`
	Debate     *DebateSummary    `json:"debate,omitempty"`
}

// Report is the single machine-readable output of a run.
type Report struct {
	Ticker          string          `json:"ticker"`
	Stance          Stance          `json:"stance"`
	CoveredCallBias CoveredCallBias `json:"covered_call_bias"`
	Confidence      float64         `json:"confidence"`
	Action          TradeAction     `json:"action"`
	ActionReason    string          `json:"action_reason"`
	KeyPoints       []string        `json:"key_points"`
	Risks           []string        `json:"risks,omitempty"`
	Appendix        *Appendix       `json:"appendix,omitempty"`
}

// ResultDocument is the envelope written to the result channel.
type ResultDocument struct {
	FundamentalsReport *Report        `json:"fundamentals_report,omitempty"`
	Error              *ErrorDocument `json:"error,omitempty"`
}

// ErrorDocument replaces the report when a fatal error aborts the workflow.
type ErrorDocument struct {
	Ticker  string `json:"ticker"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
