// Package policy holds the stance→action trade policy. Single source of
// truth, deterministic, unit-tested.
package policy

import (
	"fmt"

	"github.com/dyike/coveredcall/models"
)

// Decision pairs a trade action with the rationale behind it.
type Decision struct {
	Action models.TradeAction
	Reason string
}

// Decide maps a resolved stance/bias/confidence onto a covered-call action.
// The confidence gate prevents acting on weak signals.
func Decide(stance models.Stance, bias models.CoveredCallBias, confidence, minConfidence float64) Decision {
	if confidence < minConfidence {
		return Decision{
			Action: models.ActionHold,
			Reason: fmt.Sprintf("Confidence %.2f < %.2f; avoid acting on weak signal.", confidence, minConfidence),
		}
	}

	switch stance {
	case models.StanceBullish:
		switch bias {
		case models.BiasUpside:
			return Decision{models.ActionAvoidCalls, "Bullish + UPSIDE: avoid capping upside with covered calls."}
		case models.BiasIncome:
			return Decision{models.ActionSellCallMoreOTM, "Bullish + INCOME: if writing calls, prefer more OTM strikes to preserve upside."}
		}
		return Decision{models.ActionSellCallMoreOTM, "Bullish with caution: write calls only if needed; prefer more OTM."}

	case models.StanceNeutral:
		switch bias {
		case models.BiasIncome:
			return Decision{models.ActionSellCall, "Neutral + INCOME: baseline covered call posture."}
		case models.BiasUpside:
			return Decision{models.ActionHold, "Neutral + UPSIDE: wait rather than cap upside without strong conviction."}
		}
		return Decision{models.ActionHold, "Neutral + CAUTION: default to waiting."}

	case models.StanceBearish:
		switch bias {
		case models.BiasIncome:
			return Decision{models.ActionSellCall, "Bearish + INCOME: covered calls can reduce basis; prefer closer-to-money strikes."}
		case models.BiasCaution:
			return Decision{models.ActionCloseOrRoll, "Bearish + CAUTION: reduce risk; roll or close existing short calls, avoid new ones."}
		}
		return Decision{models.ActionAvoidCalls, "Bearish + UPSIDE mismatch: avoid new calls; signal conflict."}
	}

	return Decision{
		Action: models.ActionHold,
		Reason: fmt.Sprintf("Unhandled stance/bias combination (stance=%s, bias=%s); default HOLD.", stance, bias),
	}
}
