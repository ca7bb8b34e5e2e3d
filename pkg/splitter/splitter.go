// Package splitter is the message splitter's external facade: it owns
// one parsed message name and exposes every query and operation a caller —
// a method-table installer, a call-site parser, or a diagnostic tool —
// needs against it, without exposing the Expression tree itself.
package splitter

import (
	"fmt"
	"strings"

	"github.com/kristofer/avail/pkg/instr"
	"github.com/kristofer/avail/pkg/namelexer"
	"github.com/kristofer/avail/pkg/nameparser"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/sigcheck"
	"github.com/kristofer/avail/pkg/splitast"
	"github.com/kristofer/avail/pkg/splitcode"
)

// ErrorIndicatorSymbol marks the source position of a parse failure when a
// caller asks for a highlighted rendering of the name.
const ErrorIndicatorSymbol = "⁁"

// MessageSplitter is built once per distinct message name and then queried
// any number of times — its parsed tree never changes, so every method
// below is safe for concurrent use.
type MessageSplitter struct {
	name                       string
	root                       *splitast.Sequence
	parts                      []namelexer.Part
	underscorePartNumbers      []int
	numberOfSectionCheckpoints int
}

// New lexes and parses name, returning a *nameparser.MalformedMessage on
// any canonicity or grammar violation.
func New(name string) (*MessageSplitter, error) {
	root, result, err := nameparser.Parse(name)
	if err != nil {
		return nil, err
	}
	return &MessageSplitter{
		name:                       name,
		root:                       root,
		parts:                      result.Parts,
		underscorePartNumbers:      result.UnderscorePartNumbers,
		numberOfSectionCheckpoints: result.NumberOfSectionCheckpoints,
	}, nil
}

// NumberOfArguments is the method's call-site arity: the count of
// top-level argument-or-group positions, not the total number of
// underscores nested arbitrarily deep inside groups.
func (m *MessageSplitter) NumberOfArguments() int {
	return len(m.root.ArgumentPositions())
}

// NumberOfUnderscores is the total count of "_"/"…" occurrences anywhere
// in the name, however deeply nested.
func (m *MessageSplitter) NumberOfUnderscores() int {
	return m.root.UnderscoreCount()
}

// NumberOfSectionCheckpoints is the count of "§" occurrences in the name.
func (m *MessageSplitter) NumberOfSectionCheckpoints() int {
	return m.numberOfSectionCheckpoints
}

// ContainsGroups reports whether the name has at least one "«...»"
// construct anywhere in its tree.
func (m *MessageSplitter) ContainsGroups() bool {
	return containsGroup(m.root)
}

func containsGroup(e splitast.Expression) bool {
	switch v := e.(type) {
	case *splitast.Group:
		return true
	case *splitast.Sequence:
		for _, child := range v.Expressions {
			if containsGroup(child) {
				return true
			}
		}
		return false
	case *splitast.Counter:
		return containsGroup(v.Group)
	case *splitast.Optional:
		return containsGroup(v.Sequence)
	case *splitast.CompletelyOptional:
		return containsGroup(v.Expression)
	case *splitast.CaseInsensitive:
		return containsGroup(v.Expression)
	case *splitast.NumberedChoice:
		return containsGroup(v.Alternation)
	case *splitast.Alternation:
		for _, alt := range v.Alternatives {
			if containsGroup(alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// MessageParts returns the text of every lexed message part, in order.
func (m *MessageSplitter) MessageParts() []string {
	out := make([]string, len(m.parts))
	for i, p := range m.parts {
		out[i] = p.Text
	}
	return out
}

// MessagePartPositions returns the one-based code-point start position of
// every lexed message part, in order, aligned with MessageParts.
func (m *MessageSplitter) MessagePartPositions() []int {
	out := make([]int, len(m.parts))
	for i, p := range m.parts {
		out[i] = p.Position
	}
	return out
}

// UnderscorePartNumbers returns the one-based MessageParts index of every
// "_"/"…" occurrence, in the order their absolute underscore index was
// assigned.
func (m *MessageSplitter) UnderscorePartNumbers() []int {
	out := make([]int, len(m.underscorePartNumbers))
	for i, partIndex := range m.underscorePartNumbers {
		out[i] = partIndex + 1
	}
	return out
}

// CheckImplementationSignature reports whether argsType is an acceptable
// argument-tuple type for this name, independent of any other signature
// sharing the name.
func (m *MessageSplitter) CheckImplementationSignature(argsType *phrasetype.TupleType) error {
	return sigcheck.CheckType(m.root, argsType)
}

// InstructionsFor checks argsType and, if it is acceptable, emits the
// parsing-instruction program for it.
func (m *MessageSplitter) InstructionsFor(argsType *phrasetype.TupleType) ([]instr.Instruction, error) {
	if err := m.CheckImplementationSignature(argsType); err != nil {
		return nil, err
	}
	instructions, _ := splitcode.Emit(m.root, argsType)
	return instructions, nil
}

// OriginExpressionsFor returns the Expression each instruction in
// InstructionsFor(argsType)'s result was emitted for, index-aligned, for
// diagnostics such as NameHighlightingPc.
func (m *MessageSplitter) OriginExpressionsFor(argsType *phrasetype.TupleType) ([]splitast.Expression, error) {
	if err := m.CheckImplementationSignature(argsType); err != nil {
		return nil, err
	}
	_, origins := splitcode.Emit(m.root, argsType)
	return origins, nil
}

// NameHighlightingPc maps an instruction index (into the program emitted
// for argsType) back to the half-open code-point range in the original
// name it was emitted from, for highlighting a parse error at that
// instruction. pc must be a valid index into OriginExpressionsFor's
// result; an out-of-range pc reports ErrorIndicatorSymbol's position
// instead of panicking.
func (m *MessageSplitter) NameHighlightingPc(argsType *phrasetype.TupleType, pc int) (start, end int, err error) {
	origins, err := m.OriginExpressionsFor(argsType)
	if err != nil {
		return 0, 0, err
	}
	pastEnd := len([]rune(m.name)) + 1
	if pc < 0 || pc >= len(origins) {
		return pastEnd, pastEnd, nil
	}
	tokenIndex := origins[pc].FirstTokenIndex()
	if tokenIndex < 0 || tokenIndex >= len(m.parts) {
		return pastEnd, pastEnd, nil
	}
	part := m.parts[tokenIndex]
	start = part.Position
	end = start + len([]rune(part.Text))
	return start, end, nil
}

// PrintSendNode renders the name with each argument-or-group position
// replaced by a placeholder reflecting what it parses and every literal
// part printed as "part", e.g. "part part _ part part «_»" for
// "foo:_bar:«_»" — a human-readable shape for tooling and tests, not a
// restatement of the original literal text.
func (m *MessageSplitter) PrintSendNode(argsType *phrasetype.TupleType) (string, error) {
	if err := m.CheckImplementationSignature(argsType); err != nil {
		return "", err
	}
	var b strings.Builder
	printSequence(&b, m.root, true)
	return strings.TrimSpace(b.String()), nil
}

func printSequence(b *strings.Builder, seq *splitast.Sequence, topLevel bool) {
	for i, e := range seq.Expressions {
		if i > 0 {
			b.WriteByte(' ')
		}
		printExpression(b, e)
	}
}

func printExpression(b *strings.Builder, e splitast.Expression) {
	switch v := e.(type) {
	case *splitast.Simple:
		b.WriteString("part")
	case *splitast.Argument:
		if v.IsRawToken() {
			b.WriteString("…")
		} else {
			b.WriteString("_")
		}
		writeOrdinalSuffix(b, v)
	case *splitast.Group:
		b.WriteString("«")
		printSequence(b, v.BeforeDagger, false)
		if v.HasDagger {
			b.WriteString(" ‡ ")
			printSequence(b, v.AfterDagger, false)
		}
		b.WriteString("»")
		writeOrdinalSuffix(b, v)
	case *splitast.Counter:
		printExpression(b, v.Group)
		b.WriteString("#")
	case *splitast.Optional:
		b.WriteString("«")
		printSequence(b, v.Sequence, false)
		b.WriteString("»?")
	case *splitast.CompletelyOptional:
		printExpression(b, v.Expression)
		b.WriteString("⁇")
	case *splitast.CaseInsensitive:
		printExpression(b, v.Expression)
		b.WriteString("~")
	case *splitast.Alternation:
		for i, alt := range v.Alternatives {
			if i > 0 {
				b.WriteString("|")
			}
			printExpression(b, alt)
		}
	case *splitast.NumberedChoice:
		b.WriteString("«")
		printExpression(b, v.Alternation)
		b.WriteString("»!")
	case *splitast.SectionCheckpoint:
		fmt.Fprintf(b, "§%d", v.Subscript)
	}
}

// writeOrdinalSuffix re-emits e's explicit reordering ordinal, if it has
// one, so a reordered name survives a print round-trip.
func writeOrdinalSuffix(b *strings.Builder, e splitast.Expression) {
	ord := e.ExplicitOrdinal()
	if ord < 0 {
		return
	}
	if glyph, ok := nameparser.CircledNumberFor(ord); ok {
		b.WriteString(glyph)
	}
}
