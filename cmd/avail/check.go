package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/spf13/cobra"

	"github.com/kristofer/avail/pkg/fixtures"
	"github.com/kristofer/avail/pkg/splitter"
)

func newCheckCommand() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "check <fixtures-file>",
		Short: "Run every {name, signature} scenario in a fixtures file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], workers)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 8, "number of scenarios to check concurrently")
	return cmd
}

type checkOutcome struct {
	scenario fixtures.Scenario
	err      error
	mismatch bool
}

func runCheck(cmd *cobra.Command, path string, workers int) error {
	suite, err := fixtures.Load(path)
	if err != nil {
		return err
	}

	pool := workerpool.New(workers)
	outcomes := make([]checkOutcome, len(suite.Scenarios))
	var mu sync.Mutex

	for i, sc := range suite.Scenarios {
		i, sc := i, sc
		pool.Submit(func() {
			err := checkScenario(sc)
			mu.Lock()
			outcomes[i] = checkOutcome{scenario: sc, err: err, mismatch: mismatched(sc, err)}
			mu.Unlock()
		})
	}
	pool.StopWait()

	out := cmd.OutOrStdout()
	failures := 0
	for _, o := range outcomes {
		if o.mismatch {
			failures++
			fmt.Fprintf(out, "FAIL %s: %v (expected %q)\n", o.scenario.Name, o.err, o.scenario.ExpectError)
			slog.Error("scenario mismatch", "name", o.scenario.Name, "error", o.err, "expected", o.scenario.ExpectError)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", o.scenario.Name)
		slog.Debug("scenario ok", "name", o.scenario.Name)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failures, len(outcomes))
	}
	return nil
}

func checkScenario(sc fixtures.Scenario) error {
	ms, err := splitter.New(sc.Name)
	if err != nil {
		return err
	}
	argsType, err := sc.ArgsType()
	if err != nil {
		return err
	}
	return ms.CheckImplementationSignature(argsType)
}

// mismatched reports whether the scenario's actual outcome (err, possibly
// nil) disagrees with its declared expectation.
func mismatched(sc fixtures.Scenario, err error) bool {
	if sc.ExpectError == "" {
		return err != nil
	}
	return err == nil || !strings.Contains(err.Error(), sc.ExpectError)
}
