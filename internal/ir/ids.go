// Package ir defines the typed low-level IR consumed and produced by the
// ARC middle-end: functions made of basic blocks, each block an explicit
// list of instructions and one terminator, every SSA value indexed into a
// per-function variable table.
//
// This package owns only the data model and the mechanical helpers
// (construction, validation, printing) that the analyses in internal/cfgutil,
// internal/borrow, internal/ownership, internal/liveness and
// internal/rcinsert operate over. It performs no analysis of its own.
package ir

import "fmt"

// VarId is a dense index into a Function's variable table. VarId 0 is
// valid; there is no reserved "no variable" sentinel, so absence is always
// represented by a Go zero value at a different type (nil slice, bool flag)
// rather than by a magic VarId.
type VarId uint32

func (v VarId) Index() int { return int(v) }

func (v VarId) String() string { return fmt.Sprintf("v%d", v) }

// BlockId is a dense index into a Function's block list.
type BlockId uint32

func (b BlockId) Index() int { return int(b) }

func (b BlockId) String() string { return fmt.Sprintf("bb%d", b) }

// Name is a program-wide interned function identifier. Interning happens
// one layer up (whatever lowering pass produces the IR); within this
// package a Name is compared and hashed as a plain string.
type Name string
