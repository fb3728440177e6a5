package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"laerad/internal/core/ports"
	"laerad/internal/shared/observability"
	"laerad/internal/shared/util"

	"github.com/google/go-github/v62/github"
)

// GitHub review errors.
var (
	ErrInvalidRepository   = errors.New("invalid repository, expected owner/name")
	ErrPullRequestNotFound = errors.New("pull request not found")
	ErrUnauthorized        = errors.New("unauthorized access to GitHub API")
	ErrRateLimited         = errors.New("rate limited by GitHub API")
)

const (
	filesPerPage = 100
	reviewEvent  = "COMMENT"
	reviewSide   = "RIGHT"
)

// GitHubReviewer posts the violations a pull request introduces as a single
// review.
type GitHubReviewer struct {
	pulls    PullRequestService
	contents ContentService
	runner   *Runner
	limiter  *util.Limiter
}

// NewGitHubClient returns an API client, authenticated when token is set.
func NewGitHubClient(token string) *github.Client {
	if token != "" {
		return github.NewTokenClient(context.Background(), token)
	}
	return github.NewClient(nil)
}

func NewGitHubReviewer(client *github.Client, analyzer ports.FileAnalyzer, limiter *util.Limiter) *GitHubReviewer {
	return NewGitHubReviewerWithServices(client.PullRequests, client.Repositories, analyzer, limiter)
}

func NewGitHubReviewerWithServices(pulls PullRequestService, contents ContentService, analyzer ports.FileAnalyzer, limiter *util.Limiter) *GitHubReviewer {
	return &GitHubReviewer{
		pulls:    pulls,
		contents: contents,
		runner:   NewRunner(analyzer),
		limiter:  limiter,
	}
}

// ParseRepository splits "owner/name".
func ParseRepository(ref string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSpace(ref), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, ref)
	}
	return parts[0], parts[1], nil
}

// Review analyzes the changed files of pull request number and, unless
// dryRun is set, posts one comment per message. The messages are returned
// either way.
func (g *GitHubReviewer) Review(ctx context.Context, owner, repo string, number int, dryRun bool) ([]Message, error) {
	ctx, span := observability.Tracer.Start(ctx, "review.GitHub")
	defer span.End()

	if err := g.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}
	pr, resp, err := g.pulls.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, handleGitHubError(err, resp, number)
	}
	headSHA := pr.GetHead().GetSHA()

	patches, err := g.collectPatches(ctx, owner, repo, number, headSHA)
	if err != nil {
		return nil, err
	}
	messages, err := g.runner.Run(ctx, patches)
	if err != nil {
		return nil, err
	}

	slog.Info("pull request analyzed", "repo", owner+"/"+repo, "pr", number, "files", len(patches), "comments", len(messages))
	if dryRun {
		observability.ReviewCommentsTotal.WithLabelValues("dry_run").Add(float64(len(messages)))
		return messages, nil
	}
	if len(messages) == 0 {
		return messages, nil
	}

	if err := g.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}
	_, resp, err = g.pulls.CreateReview(ctx, owner, repo, number, buildReview(headSHA, messages))
	if err != nil {
		observability.ReviewCommentsTotal.WithLabelValues("failed").Add(float64(len(messages)))
		return nil, handleGitHubError(err, resp, number)
	}
	observability.ReviewCommentsTotal.WithLabelValues("posted").Add(float64(len(messages)))
	return messages, nil
}

func (g *GitHubReviewer) collectPatches(ctx context.Context, owner, repo string, number int, ref string) ([]Patch, error) {
	var patches []Patch
	opts := &github.ListOptions{PerPage: filesPerPage}
	for {
		if err := g.limiter.Wait(ctx, 1); err != nil {
			return nil, err
		}
		files, resp, err := g.pulls.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, handleGitHubError(err, resp, number)
		}

		for _, f := range files {
			if f.GetStatus() == "removed" || f.GetPatch() == "" {
				continue
			}
			patch := ParsePatch(f.GetFilename(), f.GetPatch())
			if len(patch.AddedLines) == 0 || !g.runner.analyzer.IsSupportedPath(patch.Path) {
				continue
			}
			content, err := g.fetchContent(ctx, owner, repo, patch.Path, ref)
			if err != nil {
				return nil, err
			}
			patch.Content = content
			patches = append(patches, patch)
		}

		if resp == nil || resp.NextPage == 0 {
			return patches, nil
		}
		opts.Page = resp.NextPage
	}
}

func (g *GitHubReviewer) fetchContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if err := g.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}
	file, _, _, err := g.contents.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, fmt.Errorf("fetch %s at %s: %w", path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("fetch %s: not a file", path)
	}
	text, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []byte(text), nil
}

func buildReview(commitSHA string, messages []Message) *github.PullRequestReviewRequest {
	comments := make([]*github.DraftReviewComment, 0, len(messages))
	for _, m := range messages {
		comments = append(comments, &github.DraftReviewComment{
			Path: github.String(m.Path),
			Line: github.Int(m.Line),
			Side: github.String(reviewSide),
			Body: github.String(m.Text),
		})
	}
	req := &github.PullRequestReviewRequest{
		Body:     github.String(fmt.Sprintf("laerad found %d single-use identifier(s) on added lines.", len(messages))),
		Event:    github.String(reviewEvent),
		Comments: comments,
	}
	if commitSHA != "" {
		req.CommitID = github.String(commitSHA)
	}
	return req
}

func handleGitHubError(err error, resp *github.Response, number int) error {
	if resp != nil && resp.Response != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: #%d", ErrPullRequestNotFound, number)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: check GITHUB_TOKEN environment variable", ErrUnauthorized)
		case http.StatusForbidden:
			if resp.Header.Get("X-RateLimit-Remaining") == "0" {
				return fmt.Errorf("%w: %v", ErrRateLimited, err)
			}
			return fmt.Errorf("%w: access forbidden", ErrUnauthorized)
		}
	}
	return fmt.Errorf("github request for #%d: %w", number, err)
}
