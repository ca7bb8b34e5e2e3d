package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kristofer/avail/pkg/splitter"
)

func newSplitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "split <name>",
		Short: "Parse a message name and print its structural summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args[0])
		},
	}
}

func runSplit(cmd *cobra.Command, name string) error {
	ms, err := splitter.New(name)
	if err != nil {
		return fmt.Errorf("splitting %q: %w", name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name: %s\n", name)
	fmt.Fprintf(out, "arguments: %d\n", ms.NumberOfArguments())
	fmt.Fprintf(out, "underscores: %d\n", ms.NumberOfUnderscores())
	fmt.Fprintf(out, "section checkpoints: %d\n", ms.NumberOfSectionCheckpoints())
	fmt.Fprintf(out, "contains groups: %t\n", ms.ContainsGroups())
	fmt.Fprintf(out, "parts: %v\n", ms.MessageParts())
	fmt.Fprintf(out, "underscore part numbers: %v\n", ms.UnderscorePartNumbers())
	return nil
}
