package models

import (
	"fmt"
	"strings"
)

// Stance is the categorical directional assessment of a ticker.
type Stance string

const (
	StanceBearish Stance = "BEARISH"
	StanceNeutral Stance = "NEUTRAL"
	StanceBullish Stance = "BULLISH"
)

// CoveredCallBias describes how a stance translates into covered-call posture.
type CoveredCallBias string

const (
	BiasCaution CoveredCallBias = "CAUTION"
	BiasIncome  CoveredCallBias = "INCOME"
	BiasUpside  CoveredCallBias = "UPSIDE"
)

// TradeAction is the policy-layer recommendation derived from stance + bias.
type TradeAction string

const (
	ActionSellCall        TradeAction = "SELL_CALL"
	ActionSellCallMoreOTM TradeAction = "SELL_CALL_MORE_OTM"
	ActionHold            TradeAction = "HOLD"
	ActionAvoidCalls      TradeAction = "AVOID_CALLS"
	ActionCloseOrRoll     TradeAction = "CLOSE_OR_ROLL"
)

// Mode selects how the assisted stance is produced.
type Mode string

const (
	ModeDeterministic Mode = "deterministic"
	ModeLLM           Mode = "llm"
	ModeAgentic       Mode = "agentic"
)

// NormalizeMode maps CLI/config spellings onto a Mode. Accepts the short
// aliases carried over from earlier releases ("det", "llm_agentic").
func NormalizeMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deterministic", "det":
		return ModeDeterministic, nil
	case "llm":
		return ModeLLM, nil
	case "agentic", "llm_agentic":
		return ModeAgentic, nil
	}
	return "", fmt.Errorf("unknown fundamentals mode: %q", s)
}

// Assisted reports whether the mode runs the assisted stance node at all.
func (m Mode) Assisted() bool {
	return m == ModeLLM || m == ModeAgentic
}

// Severity bands for a divergence score.
type Severity string

const (
	SeverityAligned  Severity = "ALIGNED"
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// FinalSource records which view won the final resolution.
type FinalSource string

const (
	SourceDeterministic FinalSource = "deterministic"
	SourceAssisted      FinalSource = "assisted"
)

// stanceScore and biasScore put the categorical labels on a -1..1 axis for
// divergence math. Unknown labels score as neutral.
func StanceScore(s Stance) int {
	switch s {
	case StanceBearish:
		return -1
	case StanceBullish:
		return 1
	}
	return 0
}

func BiasScore(b CoveredCallBias) int {
	switch b {
	case BiasCaution:
		return -1
	case BiasUpside:
		return 1
	}
	return 0
}
