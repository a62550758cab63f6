// Package output owns the two process output channels. "result" carries
// exactly one JSON document per run; "diagnostic" carries trace records and
// degradation notices. The two never mix.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dyike/coveredcall/models"
)

// Channels is injected into the router and every node that needs to emit
// diagnostics. Nodes never write to the result channel directly.
type Channels struct {
	mu sync.Mutex

	result       io.Writer
	resultClosed bool
	wroteResult  bool

	diag    *zap.Logger
	trace   bool
	flushed int
}

// New builds the channel manager. With trace disabled the diagnostic
// channel only passes error-level records (fatal summaries); everything
// else is suppressed at the level gate, so diagnostic volume is zero for
// healthy untraced runs.
func New(result, diag io.Writer, trace bool) *Channels {
	level := zapcore.ErrorLevel
	if trace {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(diag), level)

	return &Channels{
		result: result,
		diag:   zap.New(core),
		trace:  trace,
	}
}

// Std returns channels bound to stdout/stderr.
func Std(trace bool) *Channels {
	return New(os.Stdout, os.Stderr, trace)
}

// FlushTrace incrementally writes trace records appended since the last
// flush. The router calls this after every node.
func (c *Channels) FlushTrace(state *models.AnalysisState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ; c.flushed < len(state.TraceLog); c.flushed++ {
		rec := state.TraceLog[c.flushed]
		c.diag.Debug(rec.Message, zap.String("node", rec.Node))
	}
}

// Degraded records a non-fatal collaborator failure on the diagnostic
// channel, on top of whatever the node put in the trace log.
func (c *Channels) Degraded(node string, err error) {
	c.diag.Warn("degraded, continuing without this component",
		zap.String("node", node), zap.Error(err))
}

// Fatal records a fatal-error summary. Always emitted to the diagnostic
// channel, trace flag or not.
func (c *Channels) Fatal(node string, err error) {
	c.diag.Error("workflow aborted", zap.String("node", node), zap.Error(err))
}

// WriteResult writes the single result document. A second call is a
// programming error. A consumer that closed its read end is tolerated:
// the write is dropped, diagnostic state stays intact, and further write
// attempts are suppressed.
func (c *Channels) WriteResult(doc *models.ResultDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wroteResult {
		return errors.New("result document already written")
	}
	c.wroteResult = true

	if c.resultClosed {
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result document: %w", err)
	}
	data = append(data, '\n')

	if _, err := c.result.Write(data); err != nil {
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
			c.resultClosed = true
			return nil
		}
		return fmt.Errorf("write result document: %w", err)
	}
	return nil
}

// Sync flushes the diagnostic channel. Sync errors on stderr are expected
// on some platforms and ignored.
func (c *Channels) Sync() {
	_ = c.diag.Sync()
}
