// Package fixtures loads YAML-described batches of {name, signature}
// scenarios for exercising the splitter from the command line or from
// tests: read the file, unmarshal with gopkg.in/yaml.v3, then validate
// before handing it back.
package fixtures

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kristofer/avail/pkg/phrasetype"
)

// Scenario is one name plus the argument types to check it against.
// ArgumentTypes elements are small type descriptors resolved by ParseType:
// "any", "boolean", "whole_number", "bottom", or "range:MIN:MAX".
type Scenario struct {
	Name          string   `yaml:"name"`
	ArgumentTypes []string `yaml:"argument_types"`
	ExpectError   string   `yaml:"expect_error,omitempty"`
}

// Suite is a batch of scenarios, the unit a fixtures file holds.
type Suite struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads and parses a YAML fixtures file.
func Load(filename string) (*Suite, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures file: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing fixtures file: %w", err)
	}

	if err := validate(&suite); err != nil {
		return nil, fmt.Errorf("validating fixtures file: %w", err)
	}
	return &suite, nil
}

func validate(s *Suite) error {
	for i, sc := range s.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i)
		}
		for _, td := range sc.ArgumentTypes {
			if _, err := ParseType(td); err != nil {
				return fmt.Errorf("scenario %d (%s): %w", i, sc.Name, err)
			}
		}
	}
	return nil
}

// ArgsType builds the fixed-arity argument-tuple type a scenario's
// ArgumentTypes describes.
func (s Scenario) ArgsType() (*phrasetype.TupleType, error) {
	types := make([]phrasetype.Type, len(s.ArgumentTypes))
	for i, td := range s.ArgumentTypes {
		t, err := ParseType(td)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return phrasetype.FixedTuple(types...), nil
}

// ParseType resolves one of the small fixtures type descriptors into a
// phrasetype.Type.
func ParseType(descriptor string) (phrasetype.Type, error) {
	switch descriptor {
	case "any":
		return phrasetype.Any, nil
	case "boolean":
		return phrasetype.Boolean, nil
	case "whole_number":
		return phrasetype.WholeNumbers, nil
	case "bottom":
		return phrasetype.Bottom, nil
	}

	if rest, ok := strings.CutPrefix(descriptor, "range:"); ok {
		parts := strings.Split(rest, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed range descriptor %q, want range:MIN:MAX", descriptor)
		}
		min, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed range descriptor %q: %w", descriptor, err)
		}
		max, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed range descriptor %q: %w", descriptor, err)
		}
		return phrasetype.IntegerRange(min, max), nil
	}

	return nil, fmt.Errorf("unrecognized type descriptor %q", descriptor)
}
