package ir

import "oriarc/internal/typepool"

// Classifier is the read-only interface the ARC passes need from the type
// pool: just NeedsRC, wrapped behind an interface rather than importing
// *typepool.Pool directly so that internal/borrow, internal/ownership,
// internal/liveness and internal/rcinsert depend only on the single
// predicate they actually use, not the whole type-pool surface. Tests can
// supply a trivial map-backed fake without constructing a real Pool.
type Classifier interface {
	NeedsRC(t typepool.TypeIdx) bool
}

// PoolClassifier adapts a *typepool.Pool to Classifier.
type PoolClassifier struct {
	Pool *typepool.Pool
}

func (c PoolClassifier) NeedsRC(t typepool.TypeIdx) bool { return c.Pool.NeedsRC(t) }

// NeedsRCVar is a convenience used throughout the ARC passes: does this
// variable's declared type need reference counting?
func NeedsRCVar(f *Function, c Classifier, v VarId) bool {
	return c.NeedsRC(f.VarType(v))
}
