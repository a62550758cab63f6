package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStateOverwrite reports a second write to a single-assignment state
// field. It is a programming error: the router aborts the run rather than
// let a node silently overwrite upstream output.
var ErrStateOverwrite = errors.New("state field already set")

// TraceRecord is one diagnostic entry appended by a node. Records are
// write-only for nodes; only the output channel manager reads them.
type TraceRecord struct {
	Node    string `json:"node"`
	Message string `json:"message"`
}

// AnalysisState is the single mutable record threaded through the workflow.
// Exactly one instance exists per run. Every field except TraceLog is
// single-assignment: writes go through the Set* methods, which refuse a
// second write. Nodes never read fields produced downstream of themselves.
type AnalysisState struct {
	Ticker      string    `json:"ticker"`
	AsOf        time.Time `json:"as_of"`
	Mode        Mode      `json:"mode"`
	ForceDebate bool      `json:"force_debate"`

	Snapshot *FundamentalSnapshot `json:"snapshot,omitempty"`

	DetView      *StanceView       `json:"det_fundamentals,omitempty"`
	AssistedView *StanceView       `json:"assisted_fundamentals,omitempty"`
	Divergence   *DivergenceReport `json:"divergence_report,omitempty"`

	BullCase *AgentArgument `json:"bull_case,omitempty"`
	BearCase *AgentArgument `json:"bear_case,omitempty"`
	Debate   *DebateSummary `json:"debate_summary,omitempty"`

	Final  *FinalDecision `json:"final_fundamentals,omitempty"`
	Report *Report        `json:"fundamentals_report,omitempty"`

	// Degraded is set when the assisted node failed and the run continued
	// on the deterministic-only path.
	Degraded bool `json:"degraded,omitempty"`

	TraceLog []TraceRecord `json:"trace_log,omitempty"`
}

// NewAnalysisState builds the state for one run. The ticker is uppercased
// once here and immutable afterwards.
func NewAnalysisState(ticker string, mode Mode, forceDebate bool) *AnalysisState {
	return &AnalysisState{
		Ticker:      strings.ToUpper(strings.TrimSpace(ticker)),
		AsOf:        time.Now().UTC(),
		Mode:        mode,
		ForceDebate: forceDebate,
	}
}

// Trace appends a diagnostic record. Append-only, any node may call it.
func (s *AnalysisState) Trace(node, format string, args ...any) {
	s.TraceLog = append(s.TraceLog, TraceRecord{Node: node, Message: fmt.Sprintf(format, args...)})
}

func overwrite(field string) error {
	return fmt.Errorf("%w: %s", ErrStateOverwrite, field)
}

func (s *AnalysisState) SetSnapshot(v *FundamentalSnapshot) error {
	if s.Snapshot != nil {
		return overwrite("snapshot")
	}
	s.Snapshot = v
	return nil
}

func (s *AnalysisState) SetDetView(v *StanceView) error {
	if s.DetView != nil {
		return overwrite("det_fundamentals")
	}
	s.DetView = v
	return nil
}

func (s *AnalysisState) SetAssistedView(v *StanceView) error {
	if s.AssistedView != nil {
		return overwrite("assisted_fundamentals")
	}
	s.AssistedView = v
	return nil
}

func (s *AnalysisState) SetDivergence(v *DivergenceReport) error {
	if s.Divergence != nil {
		return overwrite("divergence_report")
	}
	s.Divergence = v
	return nil
}

func (s *AnalysisState) SetBullCase(v *AgentArgument) error {
	if s.BullCase != nil {
		return overwrite("bull_case")
	}
	s.BullCase = v
	return nil
}

func (s *AnalysisState) SetBearCase(v *AgentArgument) error {
	if s.BearCase != nil {
		return overwrite("bear_case")
	}
	s.BearCase = v
	return nil
}

func (s *AnalysisState) SetDebate(v *DebateSummary) error {
	if s.Debate != nil {
		return overwrite("debate_summary")
	}
	s.Debate = v
	return nil
}

func (s *AnalysisState) SetFinal(v *FinalDecision) error {
	if s.Final != nil {
		return overwrite("final_fundamentals")
	}
	s.Final = v
	return nil
}

// SetReport is terminal: once it succeeds the workflow is complete.
func (s *AnalysisState) SetReport(v *Report) error {
	if s.Report != nil {
		return overwrite("fundamentals_report")
	}
	s.Report = v
	return nil
}
