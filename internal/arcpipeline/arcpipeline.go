// Package arcpipeline wires the four core passes into the external
// interface spec §6 describes: whole-program borrow inference, apply-back,
// and a per-function driver that runs derived-ownership, liveness and RC
// insertion for every function — in parallel, one goroutine per function,
// per spec §5's "may be run in parallel by an orchestrating driver, one
// function per worker". Borrow inference itself is the one whole-program
// pass and always runs single-threaded to its fixed point before the
// parallel phase starts.
package arcpipeline

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"oriarc/internal/borrow"
	"oriarc/internal/ir"
	"oriarc/internal/liveness"
	"oriarc/internal/ownership"
	"oriarc/internal/rcinsert"
	"oriarc/internal/telemetry"
	"oriarc/internal/typepool"
)

// Options configures the parallel per-function driver. It is the only
// "configuration" the core has (spec §A.3): a library with no environment
// variables and no persisted state.
type Options struct {
	// MaxWorkers caps how many functions are processed concurrently. Zero
	// or negative means 2*GOMAXPROCS, matching gopls's symbolize-in-parallel
	// driver (internal/cache/snapshot.go), which the RC insertion workload
	// resembles: many independent, CPU-bound per-item jobs fed from one
	// slice.
	MaxWorkers int
}

// Result is everything a caller gets back from one pipeline run: the
// converged signature map (callers may want it for their own diagnostics)
// and the per-function instrumentation counters spec §7 calls out.
type Result struct {
	Sigs     borrow.SignatureMap
	Counters map[ir.Name]telemetry.PassCounters
}

// Run executes the full pipeline over functions: whole-program borrow
// inference and apply-back, then derived ownership, liveness and RC
// insertion per function, fanned out across Options.MaxWorkers goroutines.
//
// Every function must satisfy ir.ValidateFresh — carry no RcInc/RcDec yet —
// or Run returns an error without mutating anything. This is the one
// checked precondition spec §7 promotes to an error return rather than a
// bare panic, since a whole-pipeline driver would rather fail a batch with
// a clear message than crash on the first malformed function it meets.
func Run(functions []*ir.Function, pool *typepool.Pool, opts Options) (*Result, error) {
	for _, fn := range functions {
		if err := ir.ValidateFresh(fn); err != nil {
			return nil, errors.WithMessage(err, "arcpipeline: precondition failed")
		}
	}

	classifier := ir.PoolClassifier{Pool: pool}
	log := telemetry.New(telemetry.NewRunID())

	// Borrow inference is inherently whole-program (spec §5): it runs to a
	// fixed point single-threaded before anything else starts.
	sigs := borrow.InferBorrows(functions, classifier)
	borrow.ApplyBorrows(functions, sigs)

	// The signature map is read-only from here on (spec §5). Each worker
	// checks that its function is present through sigSync's guarded
	// lookup; RC insertion itself is handed the plain map and reads it
	// directly, which is safe because nothing writes to it during this
	// phase.
	sigSync := borrow.NewSyncSignatureMap(sigs)

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2 * runtime.GOMAXPROCS(-1)
	}

	var (
		g          errgroup.Group
		countersMu sync.Mutex
		counters   = make(map[ir.Name]telemetry.PassCounters, len(functions))
	)
	g.SetLimit(maxWorkers)

	for _, fn := range functions {
		fn := fn
		g.Go(func() error {
			if _, ok := sigSync.Get(fn.Name); !ok {
				return errors.Errorf("arcpipeline: function %q missing from converged signature map", fn.Name)
			}

			derived := ownership.Infer(fn, classifier)
			l := liveness.ComputeLiveness(fn, classifier)
			c := rcinsert.InsertRcOpsWithOwnership(fn, classifier, l, derived, sigs, log)

			countersMu.Lock()
			counters[fn.Name] = c
			countersMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WithMessage(err, "arcpipeline: per-function pass failed")
	}

	return &Result{Sigs: sigs, Counters: counters}, nil
}
