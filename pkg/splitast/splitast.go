// Package splitast defines the Expression tree that models a message
// name's grammar. It is a pure data package, so that pkg/sigcheck and
// pkg/splitcode can each dispatch on the variant with an ordinary type
// switch without Expression needing to know about phrase types or
// instructions.
package splitast

// unsetOrdinal is the sentinel explicitOrdinal value for an expression
// that has not been (and, for non-reorderable variants, never will be)
// given an explicit ordinal.
const unsetOrdinal = -1

// Expression is the sum type at the root of the name's grammar tree.
// Every variant below implements it.
type Expression interface {
	// CanBeReordered reports whether explicitOrdinal may legally be set
	// on this node: true exactly for Argument-like leaves and Group.
	CanBeReordered() bool
	// ExplicitOrdinal returns the node's explicit ordinal, or -1 if unset.
	ExplicitOrdinal() int
	// SetExplicitOrdinal records a circled-number ordinal (0..50) parsed
	// immediately after this node. Callers must only invoke this when
	// CanBeReordered() holds.
	SetExplicitOrdinal(n int)
	// UnderscoreCount is the number of `_`/`…` occurrences nested within
	// this node; argument-count checking and absolute-index bookkeeping
	// use this.
	UnderscoreCount() int
	// FirstTokenIndex returns the message-part index of the leftmost
	// token this node was built from, used by nameHighlightingPc to map
	// an instruction back to a source position.
	FirstTokenIndex() int
}

// base carries the fields shared by every Expression variant.
type base struct {
	explicitOrdinal int
}

func newBase() base { return base{explicitOrdinal: unsetOrdinal} }

func (b *base) ExplicitOrdinal() int     { return b.explicitOrdinal }
func (b *base) SetExplicitOrdinal(n int) { b.explicitOrdinal = n }

// --- Simple ---

// Simple matches a single literal keyword or operator message part.
type Simple struct {
	base
	TokenIndex int // index into the message's Part slice
}

func NewSimple(tokenIndex int) *Simple { return &Simple{base: newBase(), TokenIndex: tokenIndex} }

func (s *Simple) CanBeReordered() bool  { return false }
func (s *Simple) UnderscoreCount() int  { return 0 }
func (s *Simple) FirstTokenIndex() int  { return s.TokenIndex }

// --- Argument-like leaves ---

// ArgumentKind distinguishes the five "_"/"…" leaf forms.
type ArgumentKind int

const (
	KindArgument ArgumentKind = iota
	KindArgumentInModuleScope
	KindVariableQuote
	KindArgumentForMacroOnly
	KindRawTokenArgument
	KindRawKeywordTokenArgument
	KindRawStringLiteralTokenArgument
	KindRawWholeNumberLiteralTokenArgument
)

// Argument is an argument-hole leaf: "_", "_†", "_↑", "_!", "…", "…!",
// "…$" or "…#". AbsoluteUnderscoreIndex is this hole's 1-based position
// among all underscore/ellipsis occurrences in the whole name, assigned
// left to right as the tree is built.
type Argument struct {
	base
	Kind                    ArgumentKind
	AbsoluteUnderscoreIndex int
	TokenIndex              int
}

func NewArgument(kind ArgumentKind, absoluteIndex, tokenIndex int) *Argument {
	return &Argument{base: newBase(), Kind: kind, AbsoluteUnderscoreIndex: absoluteIndex, TokenIndex: tokenIndex}
}

func (a *Argument) CanBeReordered() bool { return true }
func (a *Argument) UnderscoreCount() int { return 1 }
func (a *Argument) FirstTokenIndex() int { return a.TokenIndex }

// IsRawToken reports whether a is one of the four "…" forms, which emit a
// raw-token-capturing instruction instead of PARSE_ARGUMENT and never
// participate in CHECK_ARGUMENT.
func (a *Argument) IsRawToken() bool {
	switch a.Kind {
	case KindRawTokenArgument, KindRawKeywordTokenArgument, KindRawStringLiteralTokenArgument, KindRawWholeNumberLiteralTokenArgument:
		return true
	default:
		return false
	}
}

// --- Sequence ---

// OrdinalMode is the tri-state a Sequence tracks for whether its
// reorderable children all carry an explicit ordinal, none do, or it's
// still unset.
type OrdinalMode int

const (
	OrdinalsUnset OrdinalMode = iota
	OrdinalsAllNumbered
	OrdinalsNoneNumbered
)

// Sequence is an ordered juxtaposition of expressions. Root and every
// Group half is a Sequence.
type Sequence struct {
	Expressions           []Expression
	ArgumentsAreReordered OrdinalMode
	PermutedArguments     []int // 1-based permutation of 1..N, empty if not reordered
}

func NewSequence() *Sequence { return &Sequence{ArgumentsAreReordered: OrdinalsUnset} }

func (s *Sequence) CanBeReordered() bool     { return false }
func (s *Sequence) ExplicitOrdinal() int     { return unsetOrdinal }
func (s *Sequence) SetExplicitOrdinal(int)   {}
func (s *Sequence) UnderscoreCount() int {
	n := 0
	for _, e := range s.Expressions {
		n += e.UnderscoreCount()
	}
	return n
}
func (s *Sequence) FirstTokenIndex() int {
	if len(s.Expressions) == 0 {
		return 0
	}
	return s.Expressions[0].FirstTokenIndex()
}

// IsArgumentOrGroup reports whether e occupies an argument-tuple position
// within a Sequence: anything that yields a value into the assembled
// argument list. That includes the Argument-like leaves and Group itself,
// but also Counter, Optional and NumberedChoice — each yields a value
// (a count, a boolean, a choice index) even though none of them can carry
// an explicit ordinal. CompletelyOptional yields nothing at all, so it
// never occupies a slot. A CaseInsensitive wrapper defers to whatever it
// wraps: "~" may follow an expression generally, so this looks through the
// wrapper.
func IsArgumentOrGroup(e Expression) bool {
	switch v := e.(type) {
	case *Argument, *Group, *Counter, *Optional, *NumberedChoice:
		return true
	case *CaseInsensitive:
		return IsArgumentOrGroup(v.Expression)
	default:
		return false
	}
}

// ArgumentPositions returns the indices into s.Expressions that are
// argument-or-group slots, in order. numberOfArguments for a Sequence is
// len(ArgumentPositions()).
func (s *Sequence) ArgumentPositions() []int {
	var out []int
	for i, e := range s.Expressions {
		if IsArgumentOrGroup(e) {
			out = append(out, i)
		}
	}
	return out
}

// --- Group ---

// Group is "«beforeDagger ‡ afterDagger»" (afterDagger empty, HasDagger
// false, when there is no "‡").
type Group struct {
	base
	BeforeDagger       *Sequence
	AfterDagger        *Sequence
	HasDagger          bool
	DaggerPosition     int
	MaximumCardinality int // -1 for no explicit limit
}

func NewGroup(before, after *Sequence) *Group {
	return &Group{base: newBase(), BeforeDagger: before, AfterDagger: after, MaximumCardinality: -1}
}

func (g *Group) CanBeReordered() bool { return true }
func (g *Group) UnderscoreCount() int {
	return g.BeforeDagger.UnderscoreCount() + g.AfterDagger.UnderscoreCount()
}
func (g *Group) FirstTokenIndex() int { return g.BeforeDagger.FirstTokenIndex() }

// IsSimple reports whether g is the "simple group" case for signature
// checking and emission: exactly one before-dagger argument slot and no
// after-dagger argument slots.
func (g *Group) IsSimple() bool {
	return len(g.BeforeDagger.ArgumentPositions()) == 1 && len(g.AfterDagger.ArgumentPositions()) == 0
}

// --- Counter ---

// Counter is "«group»#": it parses repetitions but yields only their
// count.
type Counter struct {
	base
	Group *Group
}

func NewCounter(g *Group) *Counter { return &Counter{base: newBase(), Group: g} }

func (c *Counter) CanBeReordered() bool { return false }
func (c *Counter) UnderscoreCount() int { return 0 }
func (c *Counter) FirstTokenIndex() int { return c.Group.FirstTokenIndex() }

// --- Optional ---

// Optional is "«sequence»?" where sequence has no arguments: it yields a
// boolean for whether the sequence was present.
type Optional struct {
	base
	Sequence *Sequence
}

func NewOptional(s *Sequence) *Optional { return &Optional{base: newBase(), Sequence: s} }

func (o *Optional) CanBeReordered() bool { return false }
func (o *Optional) UnderscoreCount() int { return 0 }
func (o *Optional) FirstTokenIndex() int { return o.Sequence.FirstTokenIndex() }

// --- CompletelyOptional ---

// CompletelyOptional is "«expr»⁇" or "x⁇": parses optionally, yields
// nothing at all (not even a boolean).
type CompletelyOptional struct {
	base
	Expression Expression
}

func NewCompletelyOptional(e Expression) *CompletelyOptional {
	return &CompletelyOptional{base: newBase(), Expression: e}
}

func (c *CompletelyOptional) CanBeReordered() bool { return false }
func (c *CompletelyOptional) UnderscoreCount() int { return 0 }
func (c *CompletelyOptional) FirstTokenIndex() int { return c.Expression.FirstTokenIndex() }

// --- CaseInsensitive ---

// CaseInsensitive is a trailing "~": parses the wrapped expression's
// literal parts without regard to case.
type CaseInsensitive struct {
	base
	Expression Expression
}

func NewCaseInsensitive(e Expression) *CaseInsensitive {
	return &CaseInsensitive{base: newBase(), Expression: e}
}

func (c *CaseInsensitive) CanBeReordered() bool { return false }
func (c *CaseInsensitive) UnderscoreCount() int  { return c.Expression.UnderscoreCount() }
func (c *CaseInsensitive) FirstTokenIndex() int  { return c.Expression.FirstTokenIndex() }

// --- Alternation ---

// Alternation is "x|y|z": exactly one alternative is parsed, none may
// contain arguments (invariant enforced by the parser).
type Alternation struct {
	base
	Alternatives []Expression
}

func NewAlternation(alts []Expression) *Alternation {
	return &Alternation{base: newBase(), Alternatives: alts}
}

func (a *Alternation) CanBeReordered() bool { return false }
func (a *Alternation) UnderscoreCount() int { return 0 }
func (a *Alternation) FirstTokenIndex() int {
	if len(a.Alternatives) == 0 {
		return 0
	}
	return a.Alternatives[0].FirstTokenIndex()
}

// --- NumberedChoice ---

// NumberedChoice is "«a|b|c»!": yields the 1-based index of whichever
// alternative parsed.
type NumberedChoice struct {
	base
	Alternation *Alternation
}

func NewNumberedChoice(a *Alternation) *NumberedChoice {
	return &NumberedChoice{base: newBase(), Alternation: a}
}

func (n *NumberedChoice) CanBeReordered() bool { return false }
func (n *NumberedChoice) UnderscoreCount() int { return 0 }
func (n *NumberedChoice) FirstTokenIndex() int { return n.Alternation.FirstTokenIndex() }

// --- SectionCheckpoint ---

// SectionCheckpoint is "§": a point where a macro's prefix function runs
// over arguments accumulated so far. Subscript is assigned consecutively
// in source order starting at 1.
type SectionCheckpoint struct {
	base
	Subscript  int
	TokenIndex int
}

func NewSectionCheckpoint(subscript, tokenIndex int) *SectionCheckpoint {
	return &SectionCheckpoint{base: newBase(), Subscript: subscript, TokenIndex: tokenIndex}
}

func (s *SectionCheckpoint) CanBeReordered() bool { return false }
func (s *SectionCheckpoint) UnderscoreCount() int { return 0 }
func (s *SectionCheckpoint) FirstTokenIndex() int { return s.TokenIndex }
