package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kristofer/avail/pkg/fixtures"
	"github.com/kristofer/avail/pkg/phrasetype"
	"github.com/kristofer/avail/pkg/splitter"
)

func newEmitCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "emit <name> [argument-type ...]",
		Short: "Emit the parsing-instruction program for a name against the given argument types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, args[0], args[1:], out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the CBOR-encoded program to this file instead of printing it")
	return cmd
}

func runEmit(cmd *cobra.Command, name string, argumentTypeDescriptors []string, outPath string) error {
	ms, err := splitter.New(name)
	if err != nil {
		return fmt.Errorf("splitting %q: %w", name, err)
	}

	types := make([]phrasetype.Type, len(argumentTypeDescriptors))
	for i, d := range argumentTypeDescriptors {
		t, err := fixtures.ParseType(d)
		if err != nil {
			return err
		}
		types[i] = t
	}
	argsType := phrasetype.FixedTuple(types...)

	instructions, err := ms.InstructionsFor(argsType)
	if err != nil {
		return fmt.Errorf("emitting instructions for %q: %w", name, err)
	}

	if outPath != "" {
		return writeProgram(outPath, name, instructions)
	}

	out := cmd.OutOrStdout()
	for i, ins := range instructions {
		fmt.Fprintf(out, "%4d  %v %d\n", i, ins.Op, ins.Operand)
	}
	return nil
}
