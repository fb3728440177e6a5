package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"laerad/internal/core/ports"
	"laerad/internal/review"
	"laerad/internal/shared/util"

	"github.com/spf13/cobra"
)

type reviewOptions struct {
	repo   string
	pr     int
	dryRun bool
	json   bool
}

type pullRequestReviewer interface {
	Review(ctx context.Context, owner, repo string, number int, dryRun bool) ([]review.Message, error)
}

// newPullRequestReviewer is swapped in tests.
var newPullRequestReviewer = func(token string, analyzer ports.FileAnalyzer, limiter *util.Limiter) pullRequestReviewer {
	return review.NewGitHubReviewer(review.NewGitHubClient(token), analyzer, limiter)
}

func newReviewCommand(root *rootOptions) *cobra.Command {
	opts := &reviewOptions{}

	cmd := &cobra.Command{
		Use:   "review --repo owner/name --pr N",
		Short: "Comment on single-use identifiers a GitHub pull request adds",
		Long: `Analyze the Ruby files changed by a pull request at its head commit and post
one review comment per violation on an added line. The token is read from
GITHUB_TOKEN.

Examples:
  laerad review --repo acme/shop --pr 42
  laerad review --repo acme/shop --pr 42 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReview(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository as owner/name")
	cmd.Flags().IntVar(&opts.pr, "pr", 0, "Pull request number")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the comments instead of posting them")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the comments as JSON")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")
	return cmd
}

func runReview(cmd *cobra.Command, root *rootOptions, opts *reviewOptions) error {
	owner, repo, err := review.ParseRepository(opts.repo)
	if err != nil {
		return usageError(err)
	}
	if opts.pr <= 0 {
		return usageError(fmt.Errorf("--pr must be a positive pull request number"))
	}
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" && !opts.dryRun {
		return usageError(fmt.Errorf("GITHUB_TOKEN is required to post a review (use --dry-run to preview)"))
	}

	rt, err := loadRuntime(root)
	if err != nil {
		return usageError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer rt.startTracing(ctx)()

	a, err := rt.newApp(false)
	if err != nil {
		return usageError(err)
	}
	defer a.Close()

	limiter := util.NewLimiter(rt.cfg.Review.RatePerSecond, rt.cfg.Review.Burst)
	reviewer := newPullRequestReviewer(token, a.Analyzer, limiter)

	messages, err := reviewer.Review(ctx, owner, repo, opts.pr, opts.dryRun)
	if err != nil {
		return usageError(err)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		if messages == nil {
			messages = []review.Message{}
		}
		data, err := json.MarshalIndent(messages, "", "  ")
		if err != nil {
			return usageError(err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	for _, m := range messages {
		fmt.Fprintf(out, "%s:%d: %s: %s\n", m.Path, m.Line, m.Level, m.Text)
	}
	switch {
	case len(messages) == 0:
		fmt.Fprintln(out, "No violations on added lines.")
	case opts.dryRun:
		fmt.Fprintf(out, "%d comment(s) not posted (dry run).\n", len(messages))
	default:
		fmt.Fprintf(out, "Posted %d comment(s) to %s/%s#%d.\n", len(messages), owner, repo, opts.pr)
	}
	return nil
}
