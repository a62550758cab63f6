package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/dyike/coveredcall/config"
	"github.com/dyike/coveredcall/internal/dataflows"
	"github.com/dyike/coveredcall/internal/llm"
	"github.com/dyike/coveredcall/internal/output"
	"github.com/dyike/coveredcall/models"
)

func testConfig() *config.Config {
	return &config.Config{
		StrongGrowthPct:      5.0,
		StrongOperMarginPct:  30.0,
		MinOperMarginPct:     5.0,
		MaxDebtToEquity:      2.0,
		MaterialityThreshold: 0.40,
		MinActionConfidence:  0.55,
		MaxAgenticRounds:     4,
	}
}

type testRun struct {
	outcome *Outcome
	diag    *bytes.Buffer
}

func run(t *testing.T, comp llm.Completer, ticker string, mode models.Mode, forceDebate, trace bool) *testRun {
	t.Helper()
	var result, diag bytes.Buffer
	ch := output.New(&result, &diag, trace)
	wf := NewWorkflow(testConfig(), dataflows.NewStubProvider(), comp, ch)
	return &testRun{
		outcome: wf.Run(context.Background(), ticker, mode, forceDebate),
		diag:    &diag,
	}
}

func TestDeterministicRunProducesBareReport(t *testing.T) {
	r := run(t, nil, "AAPL", models.ModeDeterministic, false, false)
	if r.outcome.Fatal {
		t.Fatal("deterministic stub run must not be fatal")
	}
	report := r.outcome.Doc.FundamentalsReport
	if report == nil {
		t.Fatal("result document must carry the report")
	}
	if report.Appendix != nil {
		t.Fatal("deterministic run must not attach an appendix")
	}
	if report.Stance != models.StanceNeutral || report.Action != models.ActionSellCall {
		t.Fatalf("unexpected AAPL outcome: stance=%s action=%s", report.Stance, report.Action)
	}
	if r.outcome.State.Degraded {
		t.Fatal("nothing degraded in a deterministic run")
	}
}

func TestHealthyUntracedRunEmitsNoDiagnostics(t *testing.T) {
	r := run(t, nil, "MSFT", models.ModeDeterministic, false, false)
	if r.outcome.Fatal {
		t.Fatal("run must succeed")
	}
	if r.diag.Len() != 0 {
		t.Fatalf("diagnostic channel must be silent, got %q", r.diag.String())
	}
}

func TestTracedRunEmitsPerNodeRecords(t *testing.T) {
	r := run(t, nil, "MSFT", models.ModeDeterministic, false, true)
	if r.diag.Len() == 0 {
		t.Fatal("trace mode must emit diagnostic records")
	}
	for _, want := range []string{"fundamentals", "resolve", "proposal"} {
		if !bytes.Contains(r.diag.Bytes(), []byte(want)) {
			t.Fatalf("trace output missing node %q: %s", want, r.diag.String())
		}
	}
}

func TestAssistedFailureDegradesToDeterministic(t *testing.T) {
	comp := &stuckCompleter{}
	r := run(t, comp, "AAPL", models.ModeLLM, false, false)

	if r.outcome.Fatal {
		t.Fatal("collaborator failure must not be fatal")
	}
	st := r.outcome.State
	if !st.Degraded {
		t.Fatal("run must be marked degraded")
	}
	report := r.outcome.Doc.FundamentalsReport
	if report.Stance != st.DetView.Stance {
		t.Fatal("degraded run must fall back to the deterministic stance")
	}
	if report.Appendix != nil {
		t.Fatal("no divergence or debate ran; appendix must be absent")
	}
}

func TestMockLLMRunDebatesOnMaterialDivergence(t *testing.T) {
	r := run(t, llm.NewMockCompleter(), "AAPL", models.ModeLLM, false, false)
	if r.outcome.Fatal {
		t.Fatal("mock llm run must succeed")
	}
	report := r.outcome.Doc.FundamentalsReport
	if report.Appendix == nil || report.Appendix.Divergence == nil {
		t.Fatal("material divergence must surface in the appendix")
	}
	if !report.Appendix.Divergence.Material {
		t.Fatalf("mock views must diverge materially: %+v", report.Appendix.Divergence)
	}
	if report.Appendix.Debate == nil {
		t.Fatal("material divergence must trigger the debate")
	}
	// Not forced, so the contested stance resolves deterministic.
	if r.outcome.State.Final.Source != models.SourceDeterministic {
		t.Fatalf("expected deterministic winner, got %s", r.outcome.State.Final.Source)
	}
}

func TestForceDebatePrefersAssisted(t *testing.T) {
	r := run(t, llm.NewMockCompleter(), "AAPL", models.ModeLLM, true, false)
	st := r.outcome.State
	if st.Final.Source != models.SourceAssisted {
		t.Fatalf("force-debate with divergence must pick assisted, got %s", st.Final.Source)
	}
	report := r.outcome.Doc.FundamentalsReport
	if report.Stance != models.StanceBearish {
		t.Fatalf("final stance must follow the assisted view, got %s", report.Stance)
	}
	// Capped at the deterministic confidence under material divergence.
	if report.Confidence != 0.8 {
		t.Fatalf("expected capped confidence 0.8, got %v", report.Confidence)
	}
	if report.Action != models.ActionCloseOrRoll {
		t.Fatalf("bearish/caution at 0.8 must CLOSE_OR_ROLL, got %s", report.Action)
	}
}

func TestRunsAreByteIdentical(t *testing.T) {
	a := run(t, llm.NewMockCompleter(), "AAPL", models.ModeLLM, true, false)
	b := run(t, llm.NewMockCompleter(), "AAPL", models.ModeLLM, true, false)

	aj, err := json.Marshal(a.outcome.Doc)
	if err != nil {
		t.Fatal(err)
	}
	bj, err := json.Marshal(b.outcome.Doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(aj, bj) {
		t.Fatalf("identical runs must produce identical documents:\n%s\n%s", aj, bj)
	}
}

func TestUnknownTickerIsFatal(t *testing.T) {
	r := run(t, nil, "ZZZZ", models.ModeDeterministic, false, false)
	if !r.outcome.Fatal {
		t.Fatal("no scoring inputs must abort the run")
	}
	doc := r.outcome.Doc
	if doc.FundamentalsReport != nil {
		t.Fatal("fatal runs must not carry a report")
	}
	if doc.Error == nil || doc.Error.Code != "DATA_INSUFFICIENT" {
		t.Fatalf("unexpected error document: %+v", doc.Error)
	}
	if doc.Error.Ticker != "ZZZZ" {
		t.Fatalf("error document must name the ticker: %+v", doc.Error)
	}
	if r.diag.Len() == 0 {
		t.Fatal("fatal summary must reach the diagnostic channel even untraced")
	}
}

// stuckCompleter times out on every call.
type stuckCompleter struct{}

func (s *stuckCompleter) CompleteJSON(context.Context, string, string, string, any) error {
	return llm.ErrCompletionTimeout
}
