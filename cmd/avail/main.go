// Command avail is a small diagnostic front end for the message-name
// splitter: it can split a single name, emit its parsing instructions
// against concrete argument types, or run a whole batch of named
// signature-checking scenarios from a fixtures file.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "avail",
		Short: "Inspect and drive the Avail message-name splitter",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSplitCommand())
	root.AddCommand(newEmitCommand())
	root.AddCommand(newCheckCommand())
	return root
}
