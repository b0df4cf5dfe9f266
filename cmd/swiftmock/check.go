package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/swiftmock/internal/cli"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify that generated mocks are up to date",
		Long: `Generate every mock in memory and compare it with the file on disk.
Differences are printed as unified diffs and the command exits with
status 1. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, opts, args)
			if err != nil {
				return err
			}

			generator, err := cli.NewGenerator(env.config, env.diagnostics, env.reporter)
			if err != nil {
				env.reporter.ReportError(err)
				return &reportedError{err: err}
			}

			env.diagnostics.StartProgress("Checking mocks")
			drifts, err := generator.Check(cmd.Context(), env.paths)
			if err != nil {
				return env.fail(err)
			}

			if len(drifts) == 0 {
				env.diagnostics.EndProgress(true, "")
				env.diagnostics.Success("%d mock(s) up to date", len(generator.GetSummary().UnchangedFiles))
				return nil
			}

			env.diagnostics.EndProgress(false, fmt.Sprintf("%d mock(s) out of date", len(drifts)))
			for _, drift := range drifts {
				if drift.Missing {
					env.reporter.ReportWarning(fmt.Sprintf("%s is missing", drift.Path))
					continue
				}
				env.reporter.ReportWarning(fmt.Sprintf("%s is out of date", drift.Path))
				fmt.Fprint(cmd.OutOrStdout(), drift.Diff)
			}
			return &reportedError{err: fmt.Errorf("%d mock(s) out of date, run 'swiftmock generate'", len(drifts))}
		},
	}
}
