package sigcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/avail/pkg/errcode"
	"github.com/kristofer/avail/pkg/nameparser"
	"github.com/kristofer/avail/pkg/phrasetype"
)

func TestCheckType_SimpleArgumentAcceptsAny(t *testing.T) {
	root, _, err := nameparser.Parse("foo:_")
	require.NoError(t, err)
	err = CheckType(root, phrasetype.FixedTuple(phrasetype.Any))
	assert.NoError(t, err)
}

func TestCheckType_WrongArgumentCount(t *testing.T) {
	root, _, err := nameparser.Parse("foo:_bar:_")
	require.NoError(t, err)
	err = CheckType(root, phrasetype.FixedTuple(phrasetype.Any))
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectNumberOfArguments, se.Code)
}

func TestCheckType_RawWholeNumberArgumentRequiresWholeNumberType(t *testing.T) {
	root, _, err := nameparser.Parse("x:…#")
	require.NoError(t, err)

	err = CheckType(root, phrasetype.FixedTuple(phrasetype.WholeNumbers))
	assert.NoError(t, err)

	err = CheckType(root, phrasetype.FixedTuple(phrasetype.Boolean))
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectArgumentType, se.Code)
}

func TestCheckType_SimpleGroup(t *testing.T) {
	root, _, err := nameparser.Parse("list:«_,»")
	require.NoError(t, err)

	repeated := phrasetype.ForList(&phrasetype.TupleType{
		MinSize: 0, MaxSize: phrasetype.Unbounded, DefaultType: phrasetype.Any,
	})
	tup := &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{repeated}}
	assert.NoError(t, CheckType(root, tup))
}

func TestCheckType_GroupCardinalityExceeded(t *testing.T) {
	root, _, err := nameparser.Parse("maybe:«_»?")
	require.NoError(t, err)

	repeated := phrasetype.ForList(&phrasetype.TupleType{MinSize: 0, MaxSize: 5, DefaultType: phrasetype.Any})
	tup := &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{repeated}}
	err = CheckType(root, tup)
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectTypeForGroup, se.Code)
}

func TestCheckType_CountingGroupRequiresWholeNumberType(t *testing.T) {
	root, _, err := nameparser.Parse("repeat«x»#")
	require.NoError(t, err)

	assert.NoError(t, CheckType(root, phrasetype.FixedTuple(phrasetype.WholeNumbers)))

	err = CheckType(root, phrasetype.FixedTuple(phrasetype.Boolean))
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectTypeForCountingGroup, se.Code)
}

func TestCheckType_OptionalGroupRequiresBooleanType(t *testing.T) {
	root, _, err := nameparser.Parse("silently«do stuff»?")
	require.NoError(t, err)

	assert.NoError(t, CheckType(root, phrasetype.FixedTuple(phrasetype.Boolean)))

	err = CheckType(root, phrasetype.FixedTuple(phrasetype.WholeNumbers))
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectTypeForBooleanGroup, se.Code)
}

func TestCheckType_NumberedChoiceRequiresMatchingRange(t *testing.T) {
	root, _, err := nameparser.Parse("direction:«north|south|east|west»!")
	require.NoError(t, err)

	assert.NoError(t, CheckType(root, phrasetype.FixedTuple(phrasetype.IntegerRange(1, 4))))

	err = CheckType(root, phrasetype.FixedTuple(phrasetype.Boolean))
	require.Error(t, err)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errcode.IncorrectTypeForNumberedChoice, se.Code)
}

func TestCheckType_ComplexGroupAcceptsFixedTuplePerIteration(t *testing.T) {
	root, _, err := nameparser.Parse("from:_to:«_‡_»")
	require.NoError(t, err)

	perIteration := phrasetype.ForList(&phrasetype.TupleType{
		MinSize: 2, MaxSize: 2, LeadingTypes: []phrasetype.Type{phrasetype.Any, phrasetype.Any},
	})
	reps := phrasetype.ForList(&phrasetype.TupleType{
		MinSize: 0, MaxSize: phrasetype.Unbounded, DefaultType: perIteration,
	})
	tup := &phrasetype.TupleType{MinSize: 2, MaxSize: 2, LeadingTypes: []phrasetype.Type{phrasetype.Any, reps}}
	assert.NoError(t, CheckType(root, tup))
}

// A complex group's per-iteration type doesn't have to be a fixed tuple the
// exact width of beforeDagger+afterDagger: any width in between is legal,
// since the after-dagger half is free to sit out a given repetition.
func TestCheckType_ComplexGroupAcceptsRangedPerIterationTuple(t *testing.T) {
	root, _, err := nameparser.Parse("«A_‡x_»")
	require.NoError(t, err)

	perIteration := phrasetype.ForList(&phrasetype.TupleType{
		MinSize: 1, MaxSize: 2, LeadingTypes: []phrasetype.Type{phrasetype.Any, phrasetype.Any},
	})
	reps := phrasetype.ForList(&phrasetype.TupleType{
		MinSize: 0, MaxSize: phrasetype.Unbounded, DefaultType: perIteration,
	})
	tup := &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{reps}}
	assert.NoError(t, CheckType(root, tup))
}
