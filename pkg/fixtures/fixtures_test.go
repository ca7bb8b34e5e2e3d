package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/avail/pkg/phrasetype"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		descriptor string
		want       phrasetype.Type
	}{
		{"any", phrasetype.Any},
		{"boolean", phrasetype.Boolean},
		{"whole_number", phrasetype.WholeNumbers},
		{"bottom", phrasetype.Bottom},
	}
	for _, c := range cases {
		t.Run(c.descriptor, func(t *testing.T) {
			got, err := ParseType(c.descriptor)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	t.Run("range", func(t *testing.T) {
		got, err := ParseType("range:1:4")
		require.NoError(t, err)
		assert.Equal(t, phrasetype.IntegerRange(1, 4), got)
	})

	t.Run("malformed range", func(t *testing.T) {
		_, err := ParseType("range:1")
		assert.Error(t, err)
	})

	t.Run("unrecognized descriptor", func(t *testing.T) {
		_, err := ParseType("complex_number")
		assert.Error(t, err)
	})
}

func TestScenario_ArgsType(t *testing.T) {
	sc := Scenario{Name: "foo:_", ArgumentTypes: []string{"whole_number", "boolean"}}
	tup, err := sc.ArgsType()
	require.NoError(t, err)
	assert.Equal(t, 2, len(tup.LeadingTypes))
	assert.Equal(t, phrasetype.WholeNumbers, tup.TypeAt(1))
	assert.Equal(t, phrasetype.Boolean, tup.TypeAt(2))
}

func TestLoad_ValidFixturesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	contents := `
scenarios:
  - name: "foo:_"
    argument_types: ["any"]
  - name: "bar:_"
    argument_types: ["whole_number"]
    expect_error: "INCORRECT_ARGUMENT_TYPE"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite.Scenarios, 2)
	assert.Equal(t, "foo:_", suite.Scenarios[0].Name)
	assert.Equal(t, "INCORRECT_ARGUMENT_TYPE", suite.Scenarios[1].ExpectError)
}

func TestLoad_RejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	contents := `
scenarios:
  - argument_types: ["any"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownTypeDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	contents := `
scenarios:
  - name: "foo:_"
    argument_types: ["not_a_type"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
