package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/swiftmock/internal/cli"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Write a mock for every protocol found",
		Long: `Parse every Swift source under the given paths and write one
<Protocol>Mock.swift per protocol. Protocols that cannot be mocked are
reported and skipped; the rest are still written.`,
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

			env.diagnostics.StartProgress("Generating mocks")
			err = generator.Generate(cmd.Context(), env.paths)
			summary := generator.GetSummary()
			if err != nil {
				printSummary(env, "Generation Failed", summary)
				return env.fail(err)
			}
			env.diagnostics.EndProgress(true, "")

			printSummary(env, "Generation Complete!", summary)
			return nil
		},
	}
}

func printSummary(env *environment, title string, summary cli.GenerationSummary) {
	env.diagnostics.Summary(title, map[string]interface{}{
		"Sources scanned": summary.SourcesScanned,
		"Mocks generated": summary.MocksGenerated,
		"Files written":   len(summary.WrittenFiles),
		"Files unchanged": len(summary.UnchangedFiles),
		"Skipped":         summary.Skipped,
		"Warnings":        summary.Warnings,
	})
}
