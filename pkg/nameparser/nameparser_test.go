package nameparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/avail/pkg/errcode"
	"github.com/kristofer/avail/pkg/splitast"
)

func mustParse(t *testing.T, name string) (*splitast.Sequence, *Result) {
	t.Helper()
	root, result, err := Parse(name)
	require.NoError(t, err, "parsing %q", name)
	return root, result
}

func TestParse_SimpleKeywordMessage(t *testing.T) {
	root, _ := mustParse(t, "foo:_bar:_")
	require.Len(t, root.Expressions, 6)
	assert.Equal(t, 2, len(root.ArgumentPositions()))
}

func TestParse_Group(t *testing.T) {
	root, _ := mustParse(t, "list:«_,»")
	require.Len(t, root.Expressions, 3)
	grp, ok := root.Expressions[2].(*splitast.Group)
	require.True(t, ok)
	assert.True(t, grp.IsSimple())
	assert.Equal(t, -1, grp.MaximumCardinality)
}

func TestParse_CardinalityOneGroup(t *testing.T) {
	root, _ := mustParse(t, "maybe:«_»?")
	grp, ok := root.Expressions[2].(*splitast.Group)
	require.True(t, ok)
	assert.Equal(t, 1, grp.MaximumCardinality)
}

func TestParse_OptionalNoArguments(t *testing.T) {
	root, _ := mustParse(t, "silently«do stuff»?")
	_, ok := root.Expressions[1].(*splitast.Optional)
	assert.True(t, ok)
}

func TestParse_Counter(t *testing.T) {
	root, _ := mustParse(t, "repeat«x»#")
	_, ok := root.Expressions[1].(*splitast.Counter)
	assert.True(t, ok)
}

func TestParse_NumberedChoice(t *testing.T) {
	root, _ := mustParse(t, "direction:«north|south|east|west»!")
	nc, ok := root.Expressions[2].(*splitast.NumberedChoice)
	require.True(t, ok)
	assert.Len(t, nc.Alternation.Alternatives, 4)
}

func TestParse_CaseInsensitiveLiteral(t *testing.T) {
	root, _ := mustParse(t, "select~:_")
	_, ok := root.Expressions[0].(*splitast.CaseInsensitive)
	assert.True(t, ok)
}

func TestParse_ExplicitOrdinals(t *testing.T) {
	root, _ := mustParse(t, "between:_②and:_①")
	positions := root.ArgumentPositions()
	require.Len(t, positions, 2)
	first := root.Expressions[positions[0]]
	second := root.Expressions[positions[1]]
	assert.Equal(t, 2, first.ExplicitOrdinal())
	assert.Equal(t, 1, second.ExplicitOrdinal())
	assert.Equal(t, []int{2, 1}, root.PermutedArguments)
}

func TestParse_RejectsIdentityOrdinalPermutation(t *testing.T) {
	_, _, err := Parse("between:_①and:_②and again:_③")
	// three reorderable args in identity order ①②③ must be rejected
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.InconsistentArgumentReordering, me.Code)
}

func TestParse_RejectsMixedOrdinals(t *testing.T) {
	_, _, err := Parse("between:_①and:_")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.InconsistentArgumentReordering, me.Code)
}

func TestParse_AlternativeMustNotContainArguments(t *testing.T) {
	_, _, err := Parse("a|_")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.AlternativeMustNotContainArguments, me.Code)
}

func TestParse_UnbalancedGuillemets(t *testing.T) {
	_, _, err := Parse("«foo")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.UnbalancedGuillemets, me.Code)
}

func TestParse_FreeStandingOctothorp(t *testing.T) {
	_, _, err := Parse("foo#")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.OctothorpMustFollowASimpleGroupOrEllipsis, me.Code)
}

func TestParse_TildeMustNotFollowArgument(t *testing.T) {
	_, _, err := Parse("foo:_~")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.TildeMustNotFollowArgument, me.Code)
}

func TestParse_UpperCaseBeforeTildeIsRejected(t *testing.T) {
	_, _, err := Parse("Foo~")
	require.Error(t, err)
	var me *MalformedMessage
	require.ErrorAs(t, err, &me)
	assert.Equal(t, errcode.CaseInsensitiveExpressionCanonization, me.Code)
}

func TestParse_SectionCheckpointsAreDenselyNumbered(t *testing.T) {
	root, result := mustParse(t, "foo§bar§baz")
	assert.Equal(t, 2, result.NumberOfSectionCheckpoints)
	var subscripts []int
	for _, e := range root.Expressions {
		if sc, ok := e.(*splitast.SectionCheckpoint); ok {
			subscripts = append(subscripts, sc.Subscript)
		}
	}
	assert.Equal(t, []int{1, 2}, subscripts)
}

func TestParse_EscapedLiteralOperator(t *testing.T) {
	root, _ := mustParse(t, "foo`#bar")
	require.Len(t, root.Expressions, 3)
	escaped, ok := root.Expressions[1].(*splitast.Simple)
	require.True(t, ok)
	assert.Equal(t, 2, escaped.TokenIndex)
}

func TestParse_RawTokenKinds(t *testing.T) {
	cases := []struct {
		name string
		kind splitast.ArgumentKind
	}{
		{"x:…", splitast.KindRawKeywordTokenArgument},
		{"x:…!", splitast.KindRawTokenArgument},
		{"x:…#", splitast.KindRawWholeNumberLiteralTokenArgument},
		{"x:…$", splitast.KindRawStringLiteralTokenArgument},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			root, _ := mustParse(t, c.name)
			arg, ok := root.Expressions[2].(*splitast.Argument)
			require.True(t, ok)
			assert.Equal(t, c.kind, arg.Kind)
			assert.True(t, arg.IsRawToken())
		})
	}
}

func TestParse_UnderscorePartNumbers(t *testing.T) {
	_, result := mustParse(t, "between:_and:_")
	assert.Len(t, result.UnderscorePartNumbers, 2)
}
