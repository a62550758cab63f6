package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dyike/coveredcall/consts"
)

// MockCompleter serves canned role-keyed payloads for offline runs and
// tests. Responses are fixed so mock-backed runs stay reproducible.
type MockCompleter struct{}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

func (m *MockCompleter) CompleteJSON(_ context.Context, role, _, _ string, out any) error {
	var payload any

	switch role {
	case consts.RoleAssisted:
		payload = map[string]any{
			"stance":            "BEARISH",
			"covered_call_bias": "CAUTION",
			"confidence":        0.95,
			"bullets":           []string{"Mock bearish view"},
			"risks":             []string{"Mock risk"},
		}
	case consts.RoleAgentic:
		payload = map[string]any{
			"action":            "PROPOSE",
			"summary":           "Mock agentic proposal",
			"stance":            "NEUTRAL",
			"covered_call_bias": "INCOME",
			"confidence":        0.6,
			"bullets":           []string{"Growth 2.0% and margin 30.0% support income harvesting"},
			"risks":             []string{},
		}
	case consts.RoleBull:
		payload = map[string]any{
			"stance":            "BULLISH",
			"covered_call_bias": "UPSIDE",
			"confidence":        0.7,
			"bullets":           []string{"Mock argument bullet 1", "Mock argument bullet 2"},
			"risks":             []string{},
		}
	case consts.RoleBear:
		payload = map[string]any{
			"stance":            "BEARISH",
			"covered_call_bias": "CAUTION",
			"confidence":        0.6,
			"bullets":           []string{"Bear mock"},
			"risks":             []string{"Mock risk"},
		}
	case consts.RoleSynthesis:
		payload = map[string]any{
			"synthesis":     []string{"Mock synthesis point"},
			"disagreements": []string{"Mock disagreement"},
		}
	default:
		return fmt.Errorf("%w: mock has no payload for role %q", ErrCompletionProtocol, role)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompletionProtocol, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCompletionProtocol, err)
	}
	return nil
}
