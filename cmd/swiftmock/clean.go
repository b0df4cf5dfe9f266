package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/swiftmock/internal/cli"
)

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Remove generated mocks",
		Long: `Delete every <Protocol>Mock.swift under the given paths, and under the
output directory when one is configured, that declares the generated mock
class. Hand-written files sharing the suffix are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, opts, args)
			if err != nil {
				return err
			}

			env.diagnostics.StartProgress("Cleaning generated mocks")
			removed, err := cli.NewCleaner(env.config, env.diagnostics).CleanGeneratedFiles(env.paths)
			if err != nil {
				return env.fail(err)
			}
			env.diagnostics.EndProgress(true, "")
			env.diagnostics.Success("Removed %d generated mock(s)", len(removed))
			return nil
		},
	}
}
