// Package phrasetype is a minimal stand-in for the host object model's type
// lattice. It carries exactly enough structure — tuple types, a handful of
// primitive types, and "phrase type" wrappers — for pkg/sigcheck and
// pkg/splitcode to do their work against.
package phrasetype

import "fmt"

// Type is a value in the simplified type lattice used for signature
// checking. Real Avail types form a much richer lattice; this package only
// models what the Splitter inspects: bottom-ness, subtyping and size
// ranges for tuples.
type Type interface {
	// IsBottom reports whether this is the uninhabited type ⊥.
	IsBottom() bool
	// IsSubtypeOf reports whether every instance of this type is also an
	// instance of other.
	IsSubtypeOf(other Type) bool
	String() string
}

// primitive is a named, non-bottom leaf type such as "any" or "boolean".
// Subtyping among primitives is reflexive only, except that everything
// is a subtype of Any.
type primitive struct{ name string }

func (p *primitive) IsBottom() bool { return false }
func (p *primitive) String() string { return p.name }
func (p *primitive) IsSubtypeOf(other Type) bool {
	if other == Any {
		return true
	}
	o, ok := other.(*primitive)
	return ok && o.name == p.name
}

// Any is the top of the lattice.
var Any Type = &primitive{name: "any"}

// Boolean is the type inhabited by true and false.
var Boolean Type = &primitive{name: "boolean"}

// bottomType is the uninhabited type; it is a subtype of every type.
type bottomType struct{}

func (bottomType) IsBottom() bool           { return true }
func (bottomType) String() string           { return "⊥" }
func (bottomType) IsSubtypeOf(Type) bool    { return true }

// Bottom is the uninhabited type ⊥.
var Bottom Type = bottomType{}

// IntegerRangeType models a closed integer interval, e.g. whole numbers
// ([0, +inf]) or the [1..K] range used by NumberedChoice.
type IntegerRangeType struct {
	Min, Max int // Max == MaxInt means unbounded above
}

const Unbounded = int(^uint(0) >> 1)

func (r *IntegerRangeType) IsBottom() bool { return r.Min > r.Max }
func (r *IntegerRangeType) String() string {
	if r.Max == Unbounded {
		return fmt.Sprintf("[%d..∞)", r.Min)
	}
	return fmt.Sprintf("[%d..%d]", r.Min, r.Max)
}
func (r *IntegerRangeType) IsSubtypeOf(other Type) bool {
	if other == Any {
		return true
	}
	o, ok := other.(*IntegerRangeType)
	if !ok {
		return false
	}
	return r.Min >= o.Min && r.Max <= o.Max
}

// WholeNumbers is the range [0, ∞).
var WholeNumbers Type = &IntegerRangeType{Min: 0, Max: Unbounded}

// IntegerRange constructs the closed range [min, max].
func IntegerRange(min, max int) *IntegerRangeType { return &IntegerRangeType{Min: min, Max: max} }

// TupleType describes a tuple whose first len(LeadingTypes) elements have
// individually-specified types and whose remaining elements (if any; see
// MaxSize) share DefaultType.
type TupleType struct {
	MinSize      int
	MaxSize      int // Unbounded for "no upper limit"
	LeadingTypes []Type
	DefaultType  Type
}

func (t *TupleType) IsBottom() bool { return t.MinSize > t.MaxSize }

func (t *TupleType) String() string {
	return fmt.Sprintf("tuple[%d..%d]", t.MinSize, t.MaxSize)
}

// IsSubtypeOf holds when every size admitted by t is admitted by other and
// every positional/default element type of t is a subtype of the
// corresponding element type of other. This is a simplification of the
// real tuple-type lattice sufficient for the Splitter's needs.
func (t *TupleType) IsSubtypeOf(other Type) bool {
	if other == Any {
		return true
	}
	o, ok := other.(*TupleType)
	if !ok {
		return false
	}
	if t.MinSize < o.MinSize || t.MaxSize > o.MaxSize {
		return false
	}
	n := len(t.LeadingTypes)
	if len(o.LeadingTypes) > n {
		n = len(o.LeadingTypes)
	}
	for i := 0; i < n; i++ {
		if !t.TypeAt(i + 1).IsSubtypeOf(o.TypeAt(i + 1)) {
			return false
		}
	}
	return true
}

// SizeRange returns the tuple's admissible length bounds.
func (t *TupleType) SizeRange() (min, max int) { return t.MinSize, t.MaxSize }

// TypeAt returns the type of the i-th element (1-based), falling back to
// DefaultType past the leading types.
func (t *TupleType) TypeAt(i int) Type {
	if i >= 1 && i <= len(t.LeadingTypes) {
		return t.LeadingTypes[i-1]
	}
	if t.DefaultType != nil {
		return t.DefaultType
	}
	return Any
}

// FixedTuple builds a TupleType of the given exact size with Any for every
// unspecified element.
func FixedTuple(types ...Type) *TupleType {
	return &TupleType{MinSize: len(types), MaxSize: len(types), LeadingTypes: types, DefaultType: Any}
}

// Kind distinguishes list phrases (whose subexpressions tuple type is
// given directly) from every other phrase shape.
type Kind int

const (
	// ListPhrase is a phrase built from a fixed or repeated sequence of
	// sub-phrases, e.g. the phrase produced by a Group or Sequence.
	ListPhrase Kind = iota
	// SimplePhrase is any other phrase shape, described only by the type
	// of tuple it yields when evaluated.
	SimplePhrase
)

// PhraseType describes the shape of a parsed call-site argument: what kind
// of phrase it is, the type of value it yields, and — for list phrases —
// the tuple type of its subexpressions, which drives unrolling in
// pkg/splitcode.
type PhraseType struct {
	Kind                     Kind
	YieldType                Type
	SubexpressionsTupleType  *TupleType
}

// ForYield builds a SimplePhrase phrase type yielding values of t.
func ForYield(t Type) *PhraseType { return &PhraseType{Kind: SimplePhrase, YieldType: t} }

// IsBottom, IsSubtypeOf and String let *PhraseType double as a Type so that
// SubexpressionsTupleType can box element phrase types directly into a
// TupleType's LeadingTypes/DefaultType slots (see ElementPhraseTypeAt).
func (pt *PhraseType) IsBottom() bool { return pt.YieldType != nil && pt.YieldType.IsBottom() }
func (pt *PhraseType) String() string { return fmt.Sprintf("phrase yielding %s", pt.YieldType) }
func (pt *PhraseType) IsSubtypeOf(other Type) bool {
	o, ok := other.(*PhraseType)
	if !ok {
		return false
	}
	return pt.YieldType.IsSubtypeOf(o.YieldType)
}

// ForList builds a ListPhrase phrase type over the given subexpressions
// tuple type; YieldType is the tuple type itself, per Avail's convention
// that a list phrase yields the tuple of its subexpressions' values.
func ForList(sub *TupleType) *PhraseType {
	return &PhraseType{Kind: ListPhrase, YieldType: sub, SubexpressionsTupleType: sub}
}

// SubexpressionsTupleType returns the tuple type describing pt's
// subexpressions, synthesizing one when pt is not already a list phrase
// type (Design Notes, "Phrase-type destructuring"): if pt is a list phrase,
// its own subexpressions tuple type is used directly; otherwise a tuple
// type is synthesized by mapping each element type of the yielded tuple
// type to a simple phrase type yielding that element.
func SubexpressionsTupleType(pt *PhraseType) *TupleType {
	if pt.Kind == ListPhrase && pt.SubexpressionsTupleType != nil {
		return pt.SubexpressionsTupleType
	}
	yieldTuple, ok := pt.YieldType.(*TupleType)
	if !ok {
		// Not a tuple-yielding phrase at all; treat as an empty tuple of
		// subexpressions so callers degrade gracefully rather than panic.
		return &TupleType{MinSize: 0, MaxSize: 0, DefaultType: Any}
	}
	leading := make([]Type, len(yieldTuple.LeadingTypes))
	for i, t := range yieldTuple.LeadingTypes {
		leading[i] = ForYield(t)
		_ = i
	}
	// The synthesized tuple's "types" are themselves phrase types; we box
	// them behind ForYield so TypeAt still returns a phrasetype.Type. The
	// default element, if present, is boxed the same way.
	var def Type
	if yieldTuple.DefaultType != nil {
		def = ForYield(yieldTuple.DefaultType)
	}
	return &TupleType{
		MinSize:      yieldTuple.MinSize,
		MaxSize:      yieldTuple.MaxSize,
		LeadingTypes: leading,
		DefaultType:  def,
	}
}

// ElementPhraseTypeAt returns the phrase type of the tuple's i-th element
// (1-based) as produced by SubexpressionsTupleType: a *PhraseType boxed as
// a Type by ForYield, or pt.TypeAt(i) unwrapped back to a *PhraseType.
func ElementPhraseTypeAt(sub *TupleType, i int) *PhraseType {
	t := sub.TypeAt(i)
	if pt, ok := t.(*PhraseType); ok {
		return pt
	}
	return ForYield(t)
}
