// Package cli implements the laerad command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

// Exit codes.
const (
	ExitClean      = 0
	ExitViolations = 1
	ExitError      = 2
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// exitError carries a process exit code through cobra. A nil err exits
// silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func violationsFound() error { return &exitError{code: ExitViolations} }

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(withDefaultCommand(root, args))

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitClean
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, "Error:", exit.err)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitError
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "laerad",
		Short: "laerad - single-use identifier finder for Ruby",
		Long: `Finds local variables and methods in Ruby code that are used at most once,
counting the definition as a use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging(stderr, opts.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ./laerad.toml when present)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(
		newScanCommand(opts),
		newWatchCommand(opts),
		newReviewCommand(opts),
		newHistoryCommand(opts),
		newVersionCommand(),
	)
	return root
}

// withDefaultCommand routes invocations without a subcommand to scan, so
// "laerad app lib" scans app and lib.
func withDefaultCommand(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err == nil && cmd != root {
		return args
	}
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		if err == nil {
			return args
		}
	}
	return append([]string{"scan"}, args...)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "laerad %s\n", versionString)
			return err
		},
	}
}
