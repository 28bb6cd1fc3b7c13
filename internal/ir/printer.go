package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Print renders fn as a readable textual dump, in the spirit of the
// teacher's internal/ir.Print (kanso-lang-kanso/internal/ir/printer.go):
// one line per instruction/terminator, blocks delimited by labels. Used by
// tests (golden-ish assertions are avoided per instructions, but Print is
// useful for debugging failures); no other package in this module calls it.
func Print(fn *Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s/%s", p.Var, p.Type, p.Ownership)
	}
	fmt.Fprintf(&sb, ") -> %s {\n", fn.ReturnType)

	for _, b := range fn.Blocks {
		entryMark := ""
		if b.Id == fn.Entry {
			entryMark = " (entry)"
		}
		fmt.Fprintf(&sb, "%s%s(", b.Id, entryMark)
		for i, p := range b.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", p.Var, p.Type)
		}
		sb.WriteString("):\n")

		for _, instr := range b.Body {
			fmt.Fprintf(&sb, "  %s\n", printInstruction(instr))
		}
		fmt.Fprintf(&sb, "  %s\n", printTerminator(b.Terminator))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func printInstruction(instr Instruction) string {
	switch i := instr.(type) {
	case Let:
		return fmt.Sprintf("%s = %s", i.Dst, printValue(i.Value))
	case Apply:
		return fmt.Sprintf("%s = apply %s(%s)", i.Dst, i.Func, printVars(i.Args))
	case ApplyIndirect:
		return fmt.Sprintf("%s = apply_indirect %s(%s)", i.Dst, i.Closure, printVars(i.Args))
	case PartialApply:
		return fmt.Sprintf("%s = partial_apply %s(%s)", i.Dst, i.Func, printVars(i.Args))
	case Project:
		return fmt.Sprintf("%s = project %s.%d", i.Dst, i.Value, i.Field)
	case Construct:
		return fmt.Sprintf("%s = construct %s(%s)", i.Dst, i.Ctor, printVars(i.Args))
	case RcInc:
		return fmt.Sprintf("rc_inc %s, %d", i.Var, i.Count)
	case RcDec:
		return fmt.Sprintf("rc_dec %s", i.Var)
	case Set:
		return fmt.Sprintf("set %s.%d = %s", i.Base, i.Field, i.Value)
	case SetTag:
		return fmt.Sprintf("set_tag %s = %d", i.Base, i.Tag)
	case Reset:
		return fmt.Sprintf("%s = reset %s", i.Token, i.Var)
	case Reuse:
		return fmt.Sprintf("%s = reuse(%s) %s(%s)", i.Dst, i.Token, i.Ctor, printVars(i.Args))
	case IsShared:
		return fmt.Sprintf("%s = is_shared %s", i.Dst, i.Var)
	default:
		return fmt.Sprintf("<unknown instruction %T>", instr)
	}
}

func printValue(v Value) string {
	switch val := v.(type) {
	case Literal:
		return fmt.Sprintf("lit %v", val.Payload)
	case VarCopy:
		return val.Var.String()
	case PrimOp:
		return fmt.Sprintf("%s(%s)", val.Op, printVars(val.Args))
	default:
		return fmt.Sprintf("<unknown value %T>", v)
	}
}

func printTerminator(t Terminator) string {
	switch term := t.(type) {
	case Return:
		if !term.HasValue {
			return "return"
		}
		return fmt.Sprintf("return %s", term.Value)
	case Jump:
		return fmt.Sprintf("jump %s(%s)", term.Target, printVars(term.Args))
	case Branch:
		return fmt.Sprintf("branch %s ? %s : %s", term.Cond, term.Then, term.Else)
	case Switch:
		cases := make([]string, 0, len(term.Cases))
		for _, c := range term.Cases {
			cases = append(cases, fmt.Sprintf("%d -> %s", c.Tag, c.Target))
		}
		sort.Strings(cases)
		return fmt.Sprintf("switch %s {%s, default -> %s}", term.Scrutinee, strings.Join(cases, ", "), term.Default)
	case Invoke:
		return fmt.Sprintf("%s = invoke %s(%s) normal %s unwind %s", term.Dst, term.Func, printVars(term.Args), term.Normal, term.Unwind)
	case Resume:
		return "resume"
	case Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("<unknown terminator %T>", t)
	}
}

func printVars(vs []VarId) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
