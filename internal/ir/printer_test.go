package ir

import (
	"strings"
	"testing"

	"oriarc/internal/typepool"
)

func TestPrint_IncludesFunctionNameAndEntryMark(t *testing.T) {
	b := NewFuncBuilder("greet", typepool.Int)
	b.Block()
	x := b.Param(typepool.Int)
	b.Return(x)
	fn := b.Build()

	out := Print(fn)
	if !strings.Contains(out, "fn greet(") {
		t.Errorf("Print() = %q, want it to contain the function name", out)
	}
	if !strings.Contains(out, "(entry)") {
		t.Errorf("Print() = %q, want the entry block marked", out)
	}
	if !strings.Contains(out, "return v0") {
		t.Errorf("Print() = %q, want the Return terminator rendered", out)
	}
}

func TestPrint_RendersLetAndConstruct(t *testing.T) {
	b := NewFuncBuilder("f", typepool.Int)
	b.Block()
	x := b.Param(typepool.Int)
	lit := b.Let(typepool.Int, Literal{Payload: 1})
	b.Construct(typepool.Int, "Pair", x, lit)
	b.Return(lit)
	fn := b.Build()

	out := Print(fn)
	for _, want := range []string{"= lit 1", "= construct Pair("} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() = %q, want it to contain %q", out, want)
		}
	}
}
