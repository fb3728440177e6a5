package review

//go:generate go tool mockgen -source=services.go -destination=mocks/services.gen.go -package=mocks

import (
	"context"

	"github.com/google/go-github/v62/github"
)

// PullRequestService is the part of the GitHub pull request API the reviewer
// uses. *github.PullRequestsService satisfies it.
type PullRequestService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	CreateReview(ctx context.Context, owner, repo string, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, *github.Response, error)
}

// ContentService fetches files at a revision. *github.RepositoriesService
// satisfies it.
type ContentService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
}
