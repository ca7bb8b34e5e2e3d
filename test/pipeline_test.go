package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/avail/pkg/errcode"
	"github.com/kristofer/avail/pkg/fixtures"
	"github.com/kristofer/avail/pkg/nameparser"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/sigcheck"
	"github.com/kristofer/avail/pkg/splitcodec"
	"github.com/kristofer/avail/pkg/splitter"
)

func TestPipeline_KeywordMessageEndToEnd(t *testing.T) {
	m, err := splitter.New("between:_and:_")
	require.NoError(t, err)

	assert.Equal(t, 2, m.NumberOfArguments())
	assert.Equal(t, []int{3, 6}, m.UnderscorePartNumbers())

	argsType := phrasetype.FixedTuple(phrasetype.WholeNumbers, phrasetype.WholeNumbers)
	require.NoError(t, m.CheckImplementationSignature(argsType))

	program, err := m.InstructionsFor(argsType)
	require.NoError(t, err)
	require.NotEmpty(t, program)

	rendered, err := m.PrintSendNode(argsType)
	require.NoError(t, err)
	assert.Equal(t, "part part _ part part _", rendered)

	start, end, err := m.NameHighlightingPc(argsType, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Greater(t, end, start)
}

func TestPipeline_MalformedNameNeverReachesSplitter(t *testing.T) {
	_, err := splitter.New("«foo")
	require.Error(t, err)

	var malformed *nameparser.MalformedMessage
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, errcode.UnbalancedGuillemets, malformed.Code)
}

func TestPipeline_SignatureMismatchRejectedBeforeEmission(t *testing.T) {
	m, err := splitter.New("flag:_")
	require.NoError(t, err)

	_, err = m.InstructionsFor(phrasetype.FixedTuple(phrasetype.Any, phrasetype.Any))
	require.Error(t, err)

	var sigErr *sigcheck.SignatureError
	require.ErrorAs(t, err, &sigErr, "signature mismatches are sigcheck.SignatureError, not a parser failure")
}

func TestPipeline_InstructionProgramSurvivesCodecRoundTrip(t *testing.T) {
	m, err := splitter.New("list:«_,»")
	require.NoError(t, err)

	repeated := phrasetype.ForList(&phrasetype.TupleType{MinSize: 0, MaxSize: phrasetype.Unbounded, DefaultType: phrasetype.Any})
	argsType := &phrasetype.TupleType{MinSize: 1, MaxSize: 1, LeadingTypes: []phrasetype.Type{repeated}}

	program, err := m.InstructionsFor(argsType)
	require.NoError(t, err)

	encoded, err := splitcodec.Encode("list:«_,»", program)
	require.NoError(t, err)

	name, decoded, err := splitcodec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "list:«_,»", name)
	assert.Equal(t, program, decoded)
}

func TestPipeline_FixturesSuiteDrivesSplitterBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: "foo:_"
    argument_types: ["any"]
  - name: "repeat«x»#"
    argument_types: ["whole_number"]
  - name: "oops:_"
    argument_types: ["boolean", "boolean"]
    expect_error: "signature"
`), 0o644))

	suite, err := fixtures.Load(path)
	require.NoError(t, err)
	require.Len(t, suite.Scenarios, 3)

	for _, sc := range suite.Scenarios {
		m, err := splitter.New(sc.Name)
		require.NoError(t, err)

		argsType, err := sc.ArgsType()
		require.NoError(t, err)

		_, checkErr := m.InstructionsFor(argsType)
		if sc.ExpectError != "" {
			assert.Error(t, checkErr)
		} else {
			assert.NoError(t, checkErr)
		}
	}
}
