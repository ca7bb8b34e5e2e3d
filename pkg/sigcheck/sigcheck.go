// Package sigcheck implements the signature checker: given a parsed name's
// Expression tree and a candidate argument-tuple type, it decides whether
// that tree's argument-and-group positions are compatible with the type,
// independently of whatever other signatures might exist for the same name.
//
// Like pkg/splitcode, this package type-switches over splitast's variants
// rather than asking Expression to dispatch on itself (see pkg/splitast's
// package doc).
package sigcheck

import (
	"fmt"

	"github.com/kristofer/avail/pkg/errcode"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/splitast"
)

// SignatureError is a per-call rejection: this message's grammar is fine,
// but the supplied argument types don't fit it. It never invalidates the
// name itself (contrast pkg/nameparser.MalformedMessage).
type SignatureError struct {
	Code    errcode.Code
	Message string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func sigErr(code errcode.Code, format string, args ...interface{}) error {
	return &SignatureError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CheckType checks root's argument-or-group positions, in order, against
// argsType's element types, and checks that argsType's size range admits
// exactly the number of positions root has.
func CheckType(root *splitast.Sequence, argsType *phrasetype.TupleType) error {
	positions := root.ArgumentPositions()
	n := len(positions)
	minSize, maxSize := argsType.SizeRange()
	if n < minSize || n > maxSize {
		return sigErr(errcode.IncorrectNumberOfArguments,
			"expected between %d and %d arguments, the message name has %d", minSize, maxSize, n)
	}

	for i, pos := range positions {
		argIndex := i + 1
		pt := phrasetype.ElementPhraseTypeAt(argsType, argIndex)
		if err := checkExpressionType(root.Expressions[pos], pt); err != nil {
			return err
		}
	}
	return nil
}

// checkExpressionType dispatches on e's concrete variant. Expressions that
// never occupy an argument-or-group slot on their own (Simple,
// CompletelyOptional when not wrapping a group, Alternation,
// SectionCheckpoint) have nothing to check here; they are validated purely
// by the parser's grammar rules.
func checkExpressionType(e splitast.Expression, pt *phrasetype.PhraseType) error {
	switch v := e.(type) {
	case *splitast.Argument:
		return checkArgumentType(v, pt)
	case *splitast.Group:
		return checkGroupType(v, pt)
	case *splitast.Counter:
		return checkCounterType(v, pt)
	case *splitast.Optional:
		return checkOptionalType(v, pt)
	case *splitast.NumberedChoice:
		return checkNumberedChoiceType(v, pt)
	case *splitast.CaseInsensitive:
		return checkExpressionType(v.Expression, pt)
	default:
		return nil
	}
}

func checkArgumentType(a *splitast.Argument, pt *phrasetype.PhraseType) error {
	if pt == nil || pt.YieldType == nil || pt.YieldType.IsBottom() {
		return sigErr(errcode.IncorrectArgumentType, "an argument's declared type must not be ⊥")
	}
	if a.Kind == splitast.KindRawWholeNumberLiteralTokenArgument && !pt.YieldType.IsSubtypeOf(phrasetype.WholeNumbers) {
		return sigErr(errcode.IncorrectArgumentType, "a raw whole-number-literal argument requires a whole-number-compatible declared type")
	}
	return nil
}

func checkGroupType(g *splitast.Group, pt *phrasetype.PhraseType) error {
	if pt == nil {
		return sigErr(errcode.IncorrectTypeForGroup, "a group argument requires a tuple or list-phrase type")
	}
	reps := phrasetype.SubexpressionsTupleType(pt)

	_, maxCard := reps.SizeRange()
	if g.MaximumCardinality >= 0 && maxCard > g.MaximumCardinality {
		return sigErr(errcode.IncorrectTypeForGroup,
			"the group permits at most %d repetitions but its declared type allows up to %d", g.MaximumCardinality, maxCard)
	}

	repType := phrasetype.ElementPhraseTypeAt(reps, 1)

	if g.IsSimple() {
		argPos := g.BeforeDagger.ArgumentPositions()[0]
		return checkExpressionType(g.BeforeDagger.Expressions[argPos], repType)
	}

	slots := collectGroupArgumentSlots(g)
	beforeCount := len(g.BeforeDagger.ArgumentPositions())
	perIteration := phrasetype.SubexpressionsTupleType(repType)
	minSlots, maxSlots := perIteration.SizeRange()
	if minSlots < beforeCount || maxSlots > len(slots) {
		return sigErr(errcode.IncorrectTypeForComplexGroup,
			"a complex group's repeated element must be a tuple type between %d and %d elements long", beforeCount, len(slots))
	}
	for i, slot := range slots {
		elemType := phrasetype.ElementPhraseTypeAt(perIteration, i+1)
		if err := checkExpressionType(slot, elemType); err != nil {
			return err
		}
	}
	return nil
}

func checkCounterType(c *splitast.Counter, pt *phrasetype.PhraseType) error {
	if pt == nil || pt.YieldType == nil || !phrasetype.WholeNumbers.IsSubtypeOf(pt.YieldType) {
		return sigErr(errcode.IncorrectTypeForCountingGroup, "a counting group (\"#\") requires a whole-number-accepting declared type")
	}
	return nil
}

func checkOptionalType(o *splitast.Optional, pt *phrasetype.PhraseType) error {
	if pt == nil || pt.YieldType == nil || !phrasetype.Boolean.IsSubtypeOf(pt.YieldType) {
		return sigErr(errcode.IncorrectTypeForBooleanGroup, "an optional group (\"?\") requires a boolean-accepting declared type")
	}
	return nil
}

func checkNumberedChoiceType(n *splitast.NumberedChoice, pt *phrasetype.PhraseType) error {
	k := len(n.Alternation.Alternatives)
	produced := phrasetype.IntegerRange(1, k)
	if pt == nil || pt.YieldType == nil || !produced.IsSubtypeOf(pt.YieldType) {
		return sigErr(errcode.IncorrectTypeForNumberedChoice,
			"a numbered-choice group (\"!\") over %d alternatives requires a declared type accepting [1..%d]", k, k)
	}
	return nil
}

// collectGroupArgumentSlots returns g's argument-or-group positions across
// both halves, before-dagger first, in source order — the order their
// types must appear in a complex group's per-iteration tuple type.
func collectGroupArgumentSlots(g *splitast.Group) []splitast.Expression {
	var out []splitast.Expression
	for _, i := range g.BeforeDagger.ArgumentPositions() {
		out = append(out, g.BeforeDagger.Expressions[i])
	}
	for _, i := range g.AfterDagger.ArgumentPositions() {
		out = append(out, g.AfterDagger.Expressions[i])
	}
	return out
}
