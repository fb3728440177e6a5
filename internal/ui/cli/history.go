package cli

import (
	"fmt"
	"os"
	"strings"

	"laerad/internal/data/history"
	"laerad/internal/ui/report"

	"github.com/spf13/cobra"
)

type historyOptions struct {
	since  string
	limit  int
	format string
}

func newHistoryCommand(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan snapshots",
		Long: `List the snapshots recorded by "laerad scan --history", oldest first, with
the change in violations since the previous scan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.since, "since", "", "Only snapshots at/after this time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Only the N most recent snapshots (0 for all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatTable, "Output format: table or json")
	return cmd
}

func runHistory(cmd *cobra.Command, root *rootOptions, opts *historyOptions) error {
	since, err := parseSince(opts.since)
	if err != nil {
		return usageError(err)
	}
	if opts.limit < 0 {
		return usageError(fmt.Errorf("--limit must not be negative"))
	}
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != report.FormatTable && format != report.FormatJSON {
		return usageError(fmt.Errorf("unknown history format %q (want table or json)", opts.format))
	}

	rt, err := loadRuntime(root)
	if err != nil {
		return usageError(err)
	}

	out := cmd.OutOrStdout()
	// Listing must not create the database as a side effect.
	if _, err := os.Stat(rt.paths.HistoryPath); os.IsNotExist(err) {
		return report.RenderHistory(out, nil, format)
	}

	store, err := history.Open(rt.paths.HistoryPath, rt.cfg.History.BusyTimeout)
	if err != nil {
		return usageError(err)
	}
	defer store.Close()

	snapshots, err := store.LoadSnapshots(cmd.Context(), rt.paths.ProjectName, since, opts.limit)
	if err != nil {
		return usageError(err)
	}
	return report.RenderHistory(out, history.BuildTrend(snapshots), format)
}
