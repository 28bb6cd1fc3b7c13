// Package telemetry is the ARC core's structured logging facade, per spec
// §7: "there are no user-facing diagnostics from the core; instrumentation
// uses a structured logging facade (debug/trace level) that the host can
// ignore." It wraps github.com/tliron/commonlog, the logging library the
// teacher wires into its language server
// (kanso-lang-kanso/cmd/kanso-lsp/main.go calls commonlog.Configure at
// startup). A host that never calls commonlog.Configure gets commonlog's
// own default behavior — the ARC core never requires logging to be
// configured.
package telemetry

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/tliron/commonlog"
)

// loggerName is the commonlog logger name every Logger logs under,
// mirroring the `tracing::debug!(function = ...)` call sites in the
// original ori_arc implementation: one name with a `function` field rather
// than one logger per package. internal/rcinsert is the only pass that
// logs; internal/borrow, internal/liveness and internal/ownership do not.
const loggerName = "oriarc"

// RunID tags every log line and PassCounters report produced by one
// invocation of the pipeline, so a host running many functions
// concurrently (internal/arcpipeline's parallel driver) can group log
// output by run without needing a wall-clock timestamp at call sites that
// don't have one handy. ksuid is lexically sortable and self-describing
// (embeds its own generation time), which is why it was picked over a
// bare random token.
type RunID string

// NewRunID mints a fresh correlation id for one pipeline invocation.
func NewRunID() RunID { return RunID(ksuid.New().String()) }

// Logger is the facade every ARC pass is given. It exists so callers don't
// need to depend on commonlog's Logger interface directly, and so a
// zero-value Logger (no Run set) can be used safely in unit tests of
// individual passes that don't go through internal/arcpipeline.
type Logger struct {
	run RunID
	log commonlog.Logger
}

// New creates a Logger tagged with run, backed by commonlog's global
// logger for the "oriarc" name.
func New(run RunID) Logger {
	return Logger{run: run, log: commonlog.GetLogger(loggerName)}
}

// Debug logs a debug-level message with the given function name, matching
// the field the original Rust implementation's tracing::debug! calls
// carry.
func (l Logger) Debug(function string, message string) {
	if l.log == nil {
		return
	}
	l.log.Debugf("run=%s function=%s %s", l.run, function, message)
}

// Debugf is Debug with a format string.
func (l Logger) Debugf(function string, format string, args ...interface{}) {
	l.Debug(function, fmt.Sprintf(format, args...))
}

// Trace logs a trace-level message — used for per-instruction detail that
// would be too noisy at Debug (e.g. dumping the IR of every function
// before/after RC insertion).
func (l Logger) Trace(function string, message string) {
	if l.log == nil {
		return
	}
	l.log.Tracef("run=%s function=%s %s", l.run, function, message)
}

// PassCounters accumulates the per-function instrumentation spec §7
// calls out by name: "counts of block-start decrements and edge-split
// trampolines" after each function. internal/rcinsert populates one of
// these per function and hands it to Logger.ReportCounters.
type PassCounters struct {
	Function           string
	BlockStartDecrements int
	EdgeSplitTrampolines int
}

// ReportCounters logs c at Debug level in the performance-tuning format
// spec §7 describes.
func (l Logger) ReportCounters(c PassCounters) {
	l.Debugf(c.Function, "block_start_decrements=%d edge_split_trampolines=%d",
		c.BlockStartDecrements, c.EdgeSplitTrampolines)
}
