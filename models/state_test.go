package models

import (
	"errors"
	"testing"
)

func TestNewAnalysisStateNormalizesTicker(t *testing.T) {
	st := NewAnalysisState("  aapl ", ModeDeterministic, false)
	if st.Ticker != "AAPL" {
		t.Fatalf("expected AAPL, got %q", st.Ticker)
	}
}

func TestStateFieldsAreSingleAssignment(t *testing.T) {
	st := NewAnalysisState("AAPL", ModeLLM, false)

	view := &StanceView{Stance: StanceNeutral, CoveredCallBias: BiasIncome, Confidence: 0.8}
	if err := st.SetDetView(view); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	err := st.SetDetView(view)
	if !errors.Is(err, ErrStateOverwrite) {
		t.Fatalf("expected ErrStateOverwrite, got %v", err)
	}
	if st.DetView != view {
		t.Fatal("refused write must not clear the original value")
	}
}

func TestEverySetterRefusesSecondWrite(t *testing.T) {
	st := NewAnalysisState("AAPL", ModeLLM, false)
	view := &StanceView{Stance: StanceNeutral, CoveredCallBias: BiasIncome, Confidence: 0.5}
	arg := &AgentArgument{Stance: StanceBullish, CoveredCallBias: BiasUpside, Confidence: 0.6}

	writes := []struct {
		name string
		fn   func() error
	}{
		{"snapshot", func() error { return st.SetSnapshot(&FundamentalSnapshot{Ticker: "AAPL"}) }},
		{"det", func() error { return st.SetDetView(view) }},
		{"assisted", func() error { return st.SetAssistedView(view) }},
		{"divergence", func() error { return st.SetDivergence(&DivergenceReport{}) }},
		{"bull", func() error { return st.SetBullCase(arg) }},
		{"bear", func() error { return st.SetBearCase(arg) }},
		{"debate", func() error { return st.SetDebate(&DebateSummary{}) }},
		{"final", func() error { return st.SetFinal(&FinalDecision{}) }},
		{"report", func() error { return st.SetReport(&Report{Ticker: "AAPL"}) }},
	}

	for _, w := range writes {
		if err := w.fn(); err != nil {
			t.Fatalf("%s: first write failed: %v", w.name, err)
		}
		if err := w.fn(); !errors.Is(err, ErrStateOverwrite) {
			t.Fatalf("%s: expected ErrStateOverwrite on second write, got %v", w.name, err)
		}
	}
}

func TestTraceIsAppendOnly(t *testing.T) {
	st := NewAnalysisState("AAPL", ModeDeterministic, false)
	st.Trace("fundamentals", "stance=%s", StanceNeutral)
	st.Trace("proposal", "done")

	if len(st.TraceLog) != 2 {
		t.Fatalf("expected 2 trace records, got %d", len(st.TraceLog))
	}
	if st.TraceLog[0].Node != "fundamentals" || st.TraceLog[0].Message != "stance=NEUTRAL" {
		t.Fatalf("unexpected first record: %+v", st.TraceLog[0])
	}
}

func TestNormalizeMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"", ModeDeterministic, false},
		{"det", ModeDeterministic, false},
		{"Deterministic", ModeDeterministic, false},
		{"llm", ModeLLM, false},
		{"agentic", ModeAgentic, false},
		{"llm_agentic", ModeAgentic, false},
		{"turbo", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeMode(c.in)
		if c.err {
			if err == nil {
				t.Fatalf("%q: expected error", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Fatalf("%q: got %q err=%v, want %q", c.in, got, err, c.want)
		}
	}
}

func TestModeAssisted(t *testing.T) {
	if ModeDeterministic.Assisted() {
		t.Fatal("deterministic mode must not run the assisted node")
	}
	if !ModeLLM.Assisted() || !ModeAgentic.Assisted() {
		t.Fatal("llm and agentic modes must run the assisted node")
	}
}
