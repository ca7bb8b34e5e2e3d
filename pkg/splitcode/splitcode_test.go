package splitcode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/avail/pkg/instr"
	"github.com/kristofer/avail/pkg/nameparser"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/registry"
)

func opcodes(program []instr.Instruction) []instr.Opcode {
	out := make([]instr.Opcode, len(program))
	for i, in := range program {
		out[i] = in.Op
	}
	return out
}

func TestEmit_SimpleArgument(t *testing.T) {
	root, _, err := nameparser.Parse("foo:_")
	require.NoError(t, err)

	program, origins := Emit(root, phrasetype.FixedTuple(phrasetype.Any))
	require.Len(t, origins, len(program))

	wantIdx := registry.IndexForType(phrasetype.Any)
	want := []instr.Instruction{
		{Op: instr.ParsePart, Operand: 0},
		{Op: instr.ParsePart, Operand: 1},
		{Op: instr.ParseArgument, Operand: 0},
		{Op: instr.CheckArgument, Operand: wantIdx},
	}
	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("instruction program mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_RawTokenArgumentSkipsCheckArgument(t *testing.T) {
	root, _, err := nameparser.Parse("x:…!")
	require.NoError(t, err)

	program, _ := Emit(root, phrasetype.FixedTuple(phrasetype.Any))
	assert.Equal(t, []instr.Opcode{
		instr.ParsePart, instr.ParsePart, instr.ParseAnyRawToken,
	}, opcodes(program))
}

func TestEmit_CounterConvertsListToSize(t *testing.T) {
	root, _, err := nameparser.Parse("repeat«x»#")
	require.NoError(t, err)

	program, _ := Emit(root, phrasetype.FixedTuple(phrasetype.WholeNumbers))
	ops := opcodes(program)
	require.Contains(t, ops, instr.Convert)

	var convertOp instr.Instruction
	for _, in := range program {
		if in.Op == instr.Convert {
			convertOp = in
		}
	}
	assert.Equal(t, int(instr.ListToSize), convertOp.Operand)
	assert.Contains(t, ops, instr.TypeCheckArgument)
}

func TestEmit_OptionalPushesBooleanEitherWay(t *testing.T) {
	root, _, err := nameparser.Parse("silently«do stuff»?")
	require.NoError(t, err)

	program, _ := Emit(root, phrasetype.FixedTuple(phrasetype.Boolean))
	ops := opcodes(program)
	assert.Contains(t, ops, instr.PushTrue)
	assert.Contains(t, ops, instr.PushFalse)
	assert.Contains(t, ops, instr.Branch)
	assert.Contains(t, ops, instr.Jump)
}

func TestEmit_NumberedChoicePushesOrdinalAndTypeChecks(t *testing.T) {
	root, _, err := nameparser.Parse("direction:«north|south|east|west»!")
	require.NoError(t, err)

	program, _ := Emit(root, phrasetype.FixedTuple(phrasetype.IntegerRange(1, 4)))
	var literals []int
	for _, in := range program {
		if in.Op == instr.PushIntegerLiteral {
			literals = append(literals, in.Operand)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4}, literals)
	assert.Contains(t, opcodes(program), instr.TypeCheckArgument)
}

func TestEmit_ReorderedArgumentsEmitPermuteList(t *testing.T) {
	root, _, err := nameparser.Parse("between:_②and:_①")
	require.NoError(t, err)

	program, _ := Emit(root, phrasetype.FixedTuple(phrasetype.Any, phrasetype.Any))
	ops := opcodes(program)
	require.Contains(t, ops, instr.PermuteList)

	var permuteOp instr.Instruction
	for _, in := range program {
		if in.Op == instr.PermuteList {
			permuteOp = in
		}
	}
	assert.Equal(t, registry.IndexForPermutation([]int{2, 1}), permuteOp.Operand)
}

func TestEmit_SimpleGroupLoopsAndChecksCardinality(t *testing.T) {
	root, _, err := nameparser.Parse("maybe:«_»?")
	require.NoError(t, err)

	repeated := phrasetype.ForList(&phrasetype.TupleType{MinSize: 0, MaxSize: 1, DefaultType: phrasetype.Any})
	argsType := &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{repeated}}

	program, _ := Emit(root, argsType)
	ops := opcodes(program)
	assert.Contains(t, ops, instr.NewList)
	assert.Contains(t, ops, instr.SaveParsePosition)
	assert.Contains(t, ops, instr.EnsureParseProgress)
	assert.Contains(t, ops, instr.CheckAtMost)
}
