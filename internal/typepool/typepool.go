// Package typepool implements the read-only type pool the ARC core consumes
// from the type checker: a structurally-interned table of types, queried by
// TypeIdx, that knows which types are reference-counted.
//
// The shape of this package — a registry that interns descriptors and
// answers membership/kind queries by name — is adapted from
// kanso-lang-kanso's internal/types.TypeRegistry, generalized from a
// string-keyed surface-syntax registry into a structurally-interned pool
// indexed by dense integer handles, since the ARC core never sees type
// names, only TypeIdx.
package typepool

import "fmt"

// TypeIdx is an opaque, interned handle into a Pool. Two TypeIdx values
// compare equal if and only if the underlying Pool interned structurally
// identical descriptors to them.
type TypeIdx uint32

func (t TypeIdx) String() string { return fmt.Sprintf("ty%d", t) }

// Kind distinguishes the scalar (unboxed) types from the heap-allocated,
// reference-counted ones.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindFloat
	KindByte
	KindChar
	KindUnit
	KindString
	KindList
	KindTuple
	KindSum
	KindClosure
	KindBox
)

// scalarKinds are never reference-counted; every other Kind needs_rc.
var scalarKinds = map[Kind]bool{
	KindInt:   true,
	KindBool:  true,
	KindFloat: true,
	KindByte:  true,
	KindChar:  true,
	KindUnit:  true,
}

// NeedsRC reports whether values of kind k carry a reference count.
func NeedsRC(k Kind) bool { return !scalarKinds[k] }

// descriptor is the structural shape of a single interned type. Two
// descriptors with equal fields intern to the same TypeIdx.
type descriptor struct {
	kind   Kind
	fields []TypeIdx // tuple elements, sum-variant payloads, closure captures
	name   string    // struct/enum/closure display name, "" for anonymous
}

// Pool interns type descriptors and answers the ARC core's two read-only
// queries: NeedsRC and FieldType. It is built once by the type checker and
// is read-only thereafter — safe for concurrent readers across the
// parallel per-function driver in internal/arcpipeline.
type Pool struct {
	descriptors []descriptor
	interned    map[string]TypeIdx
}

// New creates an empty pool pre-seeded with the six scalar types, at fixed
// well-known indices, so callers building test fixtures don't need to
// round-trip through Intern for the common case.
func New() *Pool {
	p := &Pool{interned: make(map[string]TypeIdx)}
	for _, k := range []Kind{KindInt, KindBool, KindFloat, KindByte, KindChar, KindUnit} {
		p.Intern(k, nil, "")
	}
	return p
}

// Intern returns the TypeIdx for a descriptor with the given shape,
// allocating a fresh one if this exact shape hasn't been seen before.
func (p *Pool) Intern(kind Kind, fields []TypeIdx, name string) TypeIdx {
	key := internKey(kind, fields, name)
	if idx, ok := p.interned[key]; ok {
		return idx
	}
	idx := TypeIdx(len(p.descriptors))
	p.descriptors = append(p.descriptors, descriptor{kind: kind, fields: append([]TypeIdx(nil), fields...), name: name})
	p.interned[key] = idx
	return idx
}

func internKey(kind Kind, fields []TypeIdx, name string) string {
	key := fmt.Sprintf("%d:%s:", kind, name)
	for _, f := range fields {
		key += fmt.Sprintf("%d,", f)
	}
	return key
}

// Well-known scalar indices, valid for any Pool returned by New.
const (
	Int TypeIdx = iota
	Bool
	Float
	Byte
	Char
	Unit
)

func (p *Pool) Kind(t TypeIdx) Kind {
	if int(t) >= len(p.descriptors) {
		panic(fmt.Sprintf("typepool: TypeIdx %d out of range (pool has %d entries)", t, len(p.descriptors)))
	}
	return p.descriptors[t].kind
}

// NeedsRC answers whether t is a heap-allocated, reference-counted type.
// This is the sole classification the ARC core needs from the type
// checker, per spec §3 ("the pool exposes a predicate needs_rc(type)").
func (p *Pool) NeedsRC(t TypeIdx) bool { return NeedsRC(p.Kind(t)) }

// FieldType returns the type of the field at the given index within an
// aggregate type (tuple element, struct field, sum-variant payload slot).
// The ARC passes do not call it: internal/ownership classifies a Project
// result the same way whatever the field's type, and scalar-typed values
// are filtered out of RC work through NeedsRC on the variable's own type.
func (p *Pool) FieldType(t TypeIdx, field int) TypeIdx {
	d := p.descriptors[t]
	if field < 0 || field >= len(d.fields) {
		panic(fmt.Sprintf("typepool: field %d out of range for %s (%d fields)", field, t, len(d.fields)))
	}
	return d.fields[field]
}

// Tuple interns (or reuses) a tuple type with the given element types.
func (p *Pool) Tuple(elems ...TypeIdx) TypeIdx {
	return p.Intern(KindTuple, elems, "")
}

// Sum interns a named sum-type variant payload, e.g. one constructor of an
// algebraic data type. payload is the flattened list of field types carried
// by this specific variant.
func (p *Pool) Sum(name string, payload ...TypeIdx) TypeIdx {
	return p.Intern(KindSum, payload, name)
}

// Closure interns a closure type capturing the given types.
func (p *Pool) Closure(captures ...TypeIdx) TypeIdx {
	return p.Intern(KindClosure, captures, "")
}

// String interns (or reuses) the single String type.
func (p *Pool) String() TypeIdx { return p.Intern(KindString, nil, "") }

// List interns (or reuses) a list type with the given element type.
func (p *Pool) List(elem TypeIdx) TypeIdx { return p.Intern(KindList, []TypeIdx{elem}, "") }

// Box interns (or reuses) a boxed-scalar type wrapping the given scalar.
func (p *Pool) Box(inner TypeIdx) TypeIdx { return p.Intern(KindBox, []TypeIdx{inner}, "") }
