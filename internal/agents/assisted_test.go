package agents

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

// failingCompleter simulates a collaborator that never answers usefully.
type failingCompleter struct {
	err error
}

func (f *failingCompleter) CompleteJSON(context.Context, string, string, string, any) error {
	return f.err
}

func discardChannels() *output.Channels {
	return output.New(io.Discard, io.Discard, false)
}

func TestAssistedSkippedInDeterministicMode(t *testing.T) {
	st := runFundamental(t, "AAPL", models.ModeDeterministic)
	err := Assisted(context.Background(), testConfig(), llm.NewMockCompleter(), st, discardChannels())
	if err != nil {
		t.Fatalf("assisted node failed: %v", err)
	}
	if st.AssistedView != nil || st.Degraded {
		t.Fatal("deterministic mode must not produce an assisted view")
	}
}

func TestAssistedWithMockCompleter(t *testing.T) {
	st := runFundamental(t, "AAPL", models.ModeLLM)
	if err := Assisted(context.Background(), testConfig(), llm.NewMockCompleter(), st, discardChannels()); err != nil {
		t.Fatalf("assisted node failed: %v", err)
	}
	if st.AssistedView == nil {
		t.Fatal("assisted view missing")
	}
	if st.AssistedView.Stance != models.StanceBearish {
		t.Fatalf("mock assisted stance must be BEARISH, got %s", st.AssistedView.Stance)
	}
	if st.Degraded {
		t.Fatal("successful completion must not mark the run degraded")
	}
}

func TestAssistedDegradesOnCompleterFailure(t *testing.T) {
	st := runFundamental(t, "AAPL", models.ModeLLM)
	comp := &failingCompleter{err: llm.ErrCompletionTimeout}

	if err := Assisted(context.Background(), testConfig(), comp, st, discardChannels()); err != nil {
		t.Fatalf("collaborator failure must not abort the run: %v", err)
	}
	if st.AssistedView != nil {
		t.Fatal("failed completion must not leave a view behind")
	}
	if !st.Degraded {
		t.Fatal("run must be marked degraded")
	}
}

func TestAssistedDegradesWithoutBackend(t *testing.T) {
	st := runFundamental(t, "AAPL", models.ModeLLM)
	if err := Assisted(context.Background(), testConfig(), nil, st, discardChannels()); err != nil {
		t.Fatalf("missing backend must degrade, not fail: %v", err)
	}
	if !st.Degraded || st.AssistedView != nil {
		t.Fatal("missing backend must leave a degraded deterministic-only run")
	}
}

func TestStancePayloadValidation(t *testing.T) {
	good := stancePayload{Stance: "BULLISH", CoveredCallBias: "UPSIDE", Confidence: 0.7}
	if err := good.validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	bad := []stancePayload{
		{Stance: "LONG", CoveredCallBias: "UPSIDE", Confidence: 0.7},
		{Stance: "BULLISH", CoveredCallBias: "GROWTH", Confidence: 0.7},
		{Stance: "BULLISH", CoveredCallBias: "UPSIDE", Confidence: 1.2},
	}
	for i, p := range bad {
		if err := p.validate(); !errors.Is(err, llm.ErrCompletionProtocol) {
			t.Fatalf("case %d: expected protocol error, got %v", i, err)
		}
	}
}

func TestAgenticModeUsesMockProposal(t *testing.T) {
	st := runFundamental(t, "AAPL", models.ModeAgentic)
	if err := Assisted(context.Background(), testConfig(), llm.NewMockCompleter(), st, discardChannels()); err != nil {
		t.Fatalf("agentic assisted failed: %v", err)
	}
	if st.AssistedView == nil {
		t.Fatal("agentic proposal must produce an assisted view")
	}
	if st.AssistedView.Stance != models.StanceNeutral || st.AssistedView.CoveredCallBias != models.BiasIncome {
		t.Fatalf("unexpected agentic view: %+v", st.AssistedView)
	}
}

func TestHasNumericGrounding(t *testing.T) {
	if hasNumericGrounding([]string{"no numbers here"}) {
		t.Fatal("no digits must not count as grounded")
	}
	if !hasNumericGrounding([]string{"Revenue growth 12.0% supports income"}) {
		t.Fatal("two digits must count as grounded")
	}
}
