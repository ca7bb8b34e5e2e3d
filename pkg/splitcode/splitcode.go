// Package splitcode implements the type-directed emitter: it walks a
// parsed name's Expression tree alongside a concrete argument-tuple type
// and drives a pkg/instr.Generator to build the linear parsing-instruction
// program a message-bundle tree would run to parse a call site.
//
// As with pkg/sigcheck, dispatch is an ordinary type switch over
// splitast's variants (see pkg/splitast's package doc for why).
package splitcode

import (
	"github.com/kristofer/avail/pkg/instr"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/registry"
	"github.com/kristofer/avail/pkg/splitast"
)

// Emit builds the parsing-instruction program for root against argsType,
// along with the origin-expression list used for name-highlighting.
func Emit(root *splitast.Sequence, argsType *phrasetype.TupleType) ([]instr.Instruction, []splitast.Expression) {
	gen := instr.New()
	emitSequence(gen, root, argsType, 0, false)
	return gen.Result()
}

// emitSequence emits seq's children in source order, then seq's own
// PERMUTE_LIST if it is reordered. It wraps its body with the nesting
// counter's Sequence rule: partialListsCount is incremented on entry and
// decremented on exit, so a SectionCheckpoint emitted anywhere within seq
// (however deeply nested) sees the correct depth.
//
// argsType supplies the phrase type for each argument-or-group position,
// consumed starting at startIndex+1 (so a complex group can thread one
// per-iteration tuple type across its before-dagger and after-dagger
// halves); it returns the index reached. When appendEachSlot is set, every
// argument-or-group position's value is pushed into the currently open
// list with AppendArgument as it is produced — used for a complex group's
// per-iteration sub-list, where each slot must land in that list rather
// than staying on the stack.
func emitSequence(gen *instr.Generator, seq *splitast.Sequence, argsType *phrasetype.TupleType, startIndex int, appendEachSlot bool) int {
	return emitSequenceNested(gen, seq, argsType, startIndex, appendEachSlot, 0, true)
}

// emitSequenceNested is emitSequence generalized for a Group's
// double-wrapped halves: extraNesting carries the additional
// partialListsCount increments the nesting-counter rule assigns to each
// half of such an emission (2, on top of the Sequence rule's own 1), and
// emitPermute lets a caller suppress seq's own PERMUTE_LIST so it can
// combine the permutation with another half's instead (see
// groupIterationEmitters's complex-group branch).
func emitSequenceNested(gen *instr.Generator, seq *splitast.Sequence, argsType *phrasetype.TupleType, startIndex int, appendEachSlot bool, extraNesting int, emitPermute bool) int {
	for i := 0; i < extraNesting; i++ {
		gen.EnterPartialList()
	}
	gen.EnterPartialList()

	argIndex := startIndex
	for _, e := range seq.Expressions {
		if splitast.IsArgumentOrGroup(e) {
			argIndex++
			var pt *phrasetype.PhraseType
			if argsType != nil {
				pt = phrasetype.ElementPhraseTypeAt(argsType, argIndex)
			}
			emitExpression(gen, e, pt)
			if appendEachSlot {
				gen.Emit(e, instr.AppendArgument, 0)
			}
		} else {
			emitExpression(gen, e, nil)
		}
	}
	if emitPermute && seq.ArgumentsAreReordered == splitast.OrdinalsAllNumbered {
		idx := registry.IndexForPermutation(seq.PermutedArguments)
		gen.Emit(seq, instr.PermuteList, idx)
	}

	gen.ExitPartialList()
	for i := 0; i < extraNesting; i++ {
		gen.ExitPartialList()
	}
	return argIndex
}

// offsetPermutation combines an identity prefix of length offset (standing
// in for a before-dagger permutation already applied) with perm's own
// indices shifted by offset, per the double-wrapped Group emission's rule
// for combining a before-dagger permutation with an after-dagger one.
func offsetPermutation(perm []int, offset int) []int {
	combined := make([]int, 0, offset+len(perm))
	for i := 1; i <= offset; i++ {
		combined = append(combined, i)
	}
	for _, p := range perm {
		combined = append(combined, p+offset)
	}
	return combined
}

func emitExpression(gen *instr.Generator, e splitast.Expression, pt *phrasetype.PhraseType) {
	switch v := e.(type) {
	case *splitast.Simple:
		gen.EmitParsePart(v, v.TokenIndex)
	case *splitast.Argument:
		emitArgument(gen, v, pt)
	case *splitast.Group:
		emitGroup(gen, v, pt)
	case *splitast.Counter:
		emitCounter(gen, v, pt)
	case *splitast.Optional:
		emitOptional(gen, v, pt)
	case *splitast.CompletelyOptional:
		emitCompletelyOptional(gen, v)
	case *splitast.Alternation:
		emitAlternation(gen, v)
	case *splitast.NumberedChoice:
		emitNumberedChoice(gen, v, pt)
	case *splitast.SectionCheckpoint:
		emitSectionCheckpoint(gen, v)
	case *splitast.CaseInsensitive:
		restore := gen.PushCaseInsensitive(true)
		emitExpression(gen, v.Expression, pt)
		restore()
	}
}

// emitArgument emits the parse instruction matching a's kind, then —
// unless a is one of the four raw-token forms, which are never type
// checked — a CHECK_ARGUMENT against the registry index for the declared
// type.
func emitArgument(gen *instr.Generator, a *splitast.Argument, pt *phrasetype.PhraseType) {
	if a.IsRawToken() {
		switch a.Kind {
		case splitast.KindRawTokenArgument:
			gen.Emit(a, instr.ParseAnyRawToken, a.TokenIndex)
		case splitast.KindRawKeywordTokenArgument:
			gen.Emit(a, instr.ParseRawKeywordToken, a.TokenIndex)
		case splitast.KindRawStringLiteralTokenArgument:
			gen.Emit(a, instr.ParseRawStringLiteralToken, a.TokenIndex)
		case splitast.KindRawWholeNumberLiteralTokenArgument:
			gen.Emit(a, instr.ParseRawWholeNumberLiteralToken, a.TokenIndex)
		}
		return
	}

	switch a.Kind {
	case splitast.KindArgumentInModuleScope:
		gen.Emit(a, instr.ParseArgumentInModuleScope, 0)
	case splitast.KindVariableQuote:
		gen.Emit(a, instr.ParseVariableReference, 0)
	case splitast.KindArgumentForMacroOnly:
		gen.Emit(a, instr.ParseTopValuedArgument, 0)
	default:
		gen.Emit(a, instr.ParseArgument, 0)
	}

	if pt != nil && pt.YieldType != nil {
		gen.Emit(a, instr.CheckArgument, registry.IndexForType(pt.YieldType))
	}
}

// emitGroup is the type-directed unrolling of a Group's repetitions: the
// leading element types of the phrase type's subexpressions tuple type
// (the "variation region") are unrolled one repetition per type, each with
// its own statically-known exit test; everything past that region is
// handled by one generic zero-or-more loop using the tuple's default
// element type, capped at runtime by CHECK_AT_MOST when the type has a
// finite maximum and validated at runtime by CHECK_AT_LEAST when the
// unrolled region alone cannot statically guarantee the declared minimum.
func emitGroup(gen *instr.Generator, grp *splitast.Group, pt *phrasetype.PhraseType) {
	var reps *phrasetype.TupleType
	if pt != nil {
		reps = phrasetype.SubexpressionsTupleType(pt)
	}
	minSize, maxSize := 0, phrasetype.Unbounded
	leadingCount := 0
	if reps != nil {
		minSize, maxSize = reps.SizeRange()
		leadingCount = len(reps.LeadingTypes)
	}

	gen.Emit(grp, instr.NewList, 0)
	if maxSize == 0 {
		return
	}
	endOfVariation := leadingCount + 1

	skip := gen.NewLabel()
	exit := gen.NewLabel()
	exitCheckMin := gen.NewLabel()
	loopStart := gen.NewLabel()

	if minSize == 0 {
		gen.EmitBranch(grp, instr.Branch, skip)
	}
	gen.Emit(grp, instr.SaveParsePosition, 0)

	emitBefore, emitAfter := groupIterationEmitters(gen, grp)

	for index := 1; index < endOfVariation; index++ {
		emitBefore(elementTypeOrNil(reps, index))
		if index >= minSize {
			gen.EmitBranch(grp, instr.Branch, exit)
		}
		emitAfter()
		gen.Emit(grp, instr.EnsureParseProgress, 0)
	}

	if endOfVariation <= maxSize {
		gen.BindLabel(loopStart)
		emitBefore(elementTypeOrNil(reps, endOfVariation))
		if endOfVariation >= minSize {
			gen.EmitBranch(grp, instr.Branch, exit)
		} else {
			gen.EmitBranch(grp, instr.Branch, exitCheckMin)
		}
		if maxSize != phrasetype.Unbounded {
			gen.Emit(grp, instr.CheckAtMost, maxSize-1)
		}
		emitAfter()
		gen.Emit(grp, instr.EnsureParseProgress, 0)
		gen.EmitBranch(grp, instr.Jump, loopStart)
	}
	if endOfVariation < minSize {
		gen.BindLabel(exitCheckMin)
		gen.Emit(grp, instr.CheckAtLeast, minSize)
	}

	gen.BindLabel(exit)
	gen.Emit(grp, instr.EnsureParseProgress, 0)
	gen.Emit(grp, instr.DiscardSavedParsePosition, 0)
	gen.BindLabel(skip)
}

func elementTypeOrNil(reps *phrasetype.TupleType, index int) *phrasetype.PhraseType {
	if reps == nil {
		return nil
	}
	return phrasetype.ElementPhraseTypeAt(reps, index)
}

// groupIterationEmitters returns the before-dagger and after-dagger
// emitters for one repetition of grp.
//
// A simple group's sole before-dagger argument is appended directly onto
// the group's own accumulation list (wrapped as a singular list phrase
// type so it type-checks against elemType).
//
// A complex (double-wrapped) group instead assembles each repetition into
// its own fresh sub-list — NEW_LIST, each slot appended as it's produced,
// any before-dagger permutation applied directly, and any after-dagger
// permutation combined with the before-dagger half via offsetPermutation
// before being applied to the whole sub-list — which the after-emitter
// then appends onto the outer accumulation list.
func groupIterationEmitters(gen *instr.Generator, grp *splitast.Group) (before func(*phrasetype.PhraseType), after func()) {
	if grp.IsSimple() {
		before = func(elemType *phrasetype.PhraseType) {
			emitSequence(gen, grp.BeforeDagger, wrapSingle(elemType), 0, true)
		}
		after = func() {
			if grp.HasDagger {
				emitSequence(gen, grp.AfterDagger, nil, 0, false)
			}
		}
		return before, after
	}

	beforeArgCount := len(grp.BeforeDagger.ArgumentPositions())
	var perIteration *phrasetype.TupleType
	before = func(elemType *phrasetype.PhraseType) {
		perIteration = nil
		if elemType != nil {
			perIteration = phrasetype.SubexpressionsTupleType(elemType)
		}
		gen.Emit(grp, instr.NewList, 0)
		emitSequenceNested(gen, grp.BeforeDagger, perIteration, 0, true, 2, true)
	}
	after = func() {
		if grp.HasDagger {
			emitSequenceNested(gen, grp.AfterDagger, perIteration, beforeArgCount, true, 2, false)
			if grp.AfterDagger.ArgumentsAreReordered == splitast.OrdinalsAllNumbered {
				combined := offsetPermutation(grp.AfterDagger.PermutedArguments, beforeArgCount)
				gen.Emit(grp.AfterDagger, instr.PermuteList, registry.IndexForPermutation(combined))
			}
		}
		gen.Emit(grp, instr.AppendArgument, 0)
	}
	return before, after
}

func wrapSingle(pt *phrasetype.PhraseType) *phrasetype.TupleType {
	if pt == nil {
		return nil
	}
	return &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{pt}, DefaultType: phrasetype.Any}
}

// emitCounter parses grp's repetitions the same way emitGroup's loop does,
// but appends a placeholder per repetition rather than a real value, then
// converts the finished list to its element count via the LIST_TO_SIZE
// conversion.
func emitCounter(gen *instr.Generator, c *splitast.Counter, pt *phrasetype.PhraseType) {
	emitCountingLoop(gen, c.Group)
	gen.Emit(c, instr.Convert, int(instr.ListToSize))
	if pt != nil && pt.YieldType != nil {
		gen.Emit(c, instr.TypeCheckArgument, registry.IndexForType(pt.YieldType))
	}
}

func emitCountingLoop(gen *instr.Generator, grp *splitast.Group) {
	gen.Emit(grp, instr.NewList, 0)
	gen.EnterPartialList()

	loopStart := gen.NewLabel()
	loopExit := gen.NewLabel()
	gen.BindLabel(loopStart)
	gen.Emit(grp, instr.SaveParsePosition, 0)
	gen.EmitBranch(grp, instr.Branch, loopExit)

	emitSequence(gen, grp.BeforeDagger, nil, 0, false)
	if grp.HasDagger {
		emitSequence(gen, grp.AfterDagger, nil, 0, false)
	}
	gen.Emit(grp, instr.PushTrue, 0)
	gen.Emit(grp, instr.AppendArgument, 0)
	gen.Emit(grp, instr.EnsureParseProgress, 0)
	gen.Emit(grp, instr.DiscardSavedParsePosition, 0)
	gen.EmitBranch(grp, instr.Jump, loopStart)

	gen.BindLabel(loopExit)
	gen.ExitPartialList()
}

// emitOptional tries sequence once; on success it discards the saved
// position and pushes true, on failure it rewinds to the saved position
// and pushes false — an Optional always yields a boolean.
func emitOptional(gen *instr.Generator, o *splitast.Optional, pt *phrasetype.PhraseType) {
	skip := gen.NewLabel()
	done := gen.NewLabel()

	gen.Emit(o, instr.SaveParsePosition, 0)
	gen.EmitBranch(o, instr.Branch, skip)
	emitSequence(gen, o.Sequence, nil, 0, false)
	gen.Emit(o, instr.EnsureParseProgress, 0)
	gen.Emit(o, instr.DiscardSavedParsePosition, 0)
	gen.Emit(o, instr.PushTrue, 0)
	gen.EmitBranch(o, instr.Jump, done)

	gen.BindLabel(skip)
	gen.Emit(o, instr.DiscardSavedParsePosition, 0)
	gen.Emit(o, instr.PushFalse, 0)

	gen.BindLabel(done)
	if pt != nil && pt.YieldType != nil {
		gen.Emit(o, instr.TypeCheckArgument, registry.IndexForType(pt.YieldType))
	}
}

// emitCompletelyOptional tries the wrapped expression once and yields
// nothing either way.
func emitCompletelyOptional(gen *instr.Generator, c *splitast.CompletelyOptional) {
	skip := gen.NewLabel()
	gen.Emit(c, instr.SaveParsePosition, 0)
	gen.EmitBranch(c, instr.Branch, skip)
	emitExpression(gen, c.Expression, nil)
	gen.Emit(c, instr.EnsureParseProgress, 0)
	gen.BindLabel(skip)
	gen.Emit(c, instr.DiscardSavedParsePosition, 0)
}

// emitAlternation tries each alternative in turn, committing to the first
// that parses. A bare alternation (not wrapped in a NumberedChoice group)
// yields nothing — it only constrains which literal text may appear.
func emitAlternation(gen *instr.Generator, alt *splitast.Alternation) {
	done := gen.NewLabel()
	last := len(alt.Alternatives) - 1
	for i, a := range alt.Alternatives {
		next := gen.NewLabel()
		if i < last {
			gen.Emit(alt, instr.SaveParsePosition, 0)
			gen.EmitBranch(alt, instr.Branch, next)
		}
		emitExpression(gen, a, nil)
		if i < last {
			gen.Emit(alt, instr.DiscardSavedParsePosition, 0)
		}
		gen.EmitBranch(alt, instr.Jump, done)
		gen.BindLabel(next)
	}
	gen.BindLabel(done)
}

// emitNumberedChoice is emitAlternation's shape plus a PUSH_INTEGER_LITERAL
// of the 1-based alternative index that actually parsed.
func emitNumberedChoice(gen *instr.Generator, n *splitast.NumberedChoice, pt *phrasetype.PhraseType) {
	done := gen.NewLabel()
	last := len(n.Alternation.Alternatives) - 1
	for i, a := range n.Alternation.Alternatives {
		choiceNumber := i + 1
		next := gen.NewLabel()
		if i < last {
			gen.Emit(n, instr.SaveParsePosition, 0)
			gen.EmitBranch(n, instr.Branch, next)
		}
		emitExpression(gen, a, nil)
		if i < last {
			gen.Emit(n, instr.DiscardSavedParsePosition, 0)
		}
		gen.Emit(n, instr.PushIntegerLiteral, choiceNumber)
		gen.EmitBranch(n, instr.Jump, done)
		gen.BindLabel(next)
	}
	gen.BindLabel(done)
	if pt != nil && pt.YieldType != nil {
		gen.Emit(n, instr.TypeCheckArgument, registry.IndexForType(pt.YieldType))
	}
}

// emitSectionCheckpoint prepares and runs the checkpoint's prefix function,
// telling the runtime how many list assemblies are currently in progress so
// it can snapshot arguments correctly.
func emitSectionCheckpoint(gen *instr.Generator, s *splitast.SectionCheckpoint) {
	gen.Emit(s, instr.PrepareToRunPrefixFunction, gen.PartialListsCount())
	gen.Emit(s, instr.RunPrefixFunction, s.Subscript)
}
