package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toyz/swiftmock/internal/cli"
	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/utils"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// reportedError marks an error whose details were already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// options are the flags shared by every command
type options struct {
	configPath string
	output     string
	verbose    bool
	quiet      bool
	workers    int
	include    []string
	exclude    []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "swiftmock",
		Short: "Generate Swift mock classes from protocol declarations",
		Long: `swiftmock reads Swift protocols and writes a mock class for each one.
A mock records whether each method was called and with which arguments,
returns stubbed results and calls closure parameters with stubbed values.

Paths may name files, directories (their files only) or dir/... to include
every subdirectory. Without paths ./... is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+cli.DefaultConfigFile+" when present)")
	flags.StringVarP(&opts.output, "output", "o", "", "directory to write mocks to (default: next to each source)")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable verbose output")
	flags.BoolVar(&opts.quiet, "quiet", false, "only show errors")
	flags.IntVar(&opts.workers, "workers", 0, "number of sources processed in parallel (default: number of CPUs)")
	flags.StringSliceVar(&opts.include, "include", nil, "only read sources matching these glob patterns")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "skip sources matching these glob patterns")

	root.AddCommand(
		newGenerateCmd(opts),
		newCheckCmd(opts),
		newCleanCmd(opts),
	)
	return root
}

// environment is what every command needs once flags are parsed
type environment struct {
	config      cli.Config
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	paths       []string
}

// setup loads the config file, applies flags on top of it and wires the
// diagnostics to the command's output
func setup(cmd *cobra.Command, opts *options, args []string) (*environment, error) {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case opts.quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case opts.verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if cmd.OutOrStdout() != io.Writer(os.Stdout) {
		diagnostics.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	reporter := cli.NewDiagnosticReporter(opts.verbose, cmd.ErrOrStderr())

	config, err := cli.LoadConfig(opts.configPath)
	if err != nil {
		reporter.ReportError(err)
		return nil, &reportedError{err: err}
	}

	changed := cmd.Flags().Changed
	if changed("output") {
		config.Output = opts.output
	}
	if changed("workers") {
		config.Workers = opts.workers
	}
	if changed("include") {
		config.Include = opts.include
	}
	if changed("exclude") {
		config.Exclude = opts.exclude
	}
	if err := config.Validate(); err != nil {
		reporter.ReportError(err)
		return nil, &reportedError{err: err}
	}

	if len(args) == 0 {
		args = []string{"." + utils.RecursiveSuffix}
	}

	if opts.verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Paths: %s", strings.Join(args, ", "))
		if config.Output != "" {
			diagnostics.List("Output: %s", config.Output)
		}
		diagnostics.List("Mock files: <Protocol>%s.swift", config.MockSuffix())
		if config.Access != "" {
			diagnostics.List("Access: %s", config.Access)
		}
	}

	return &environment{
		config:      config,
		diagnostics: diagnostics,
		reporter:    reporter,
		paths:       args,
	}, nil
}

// fail ends a progress step with err: per-protocol failures were reported as
// they happened, anything else is reported here
func (env *environment) fail(err error) error {
	env.diagnostics.EndProgress(false, "")

	var multiple *errors.MultipleErrors
	if errors.As(err, &multiple) {
		env.diagnostics.Error("%d mock(s) could not be generated (%s)",
			multiple.Count(), strings.Join(env.reporter.Breakdown(multiple), ", "))
	} else {
		env.reporter.ReportError(err)
	}
	return &reportedError{err: err}
}
