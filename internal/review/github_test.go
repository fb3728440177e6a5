package review

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"laerad/internal/engine/analyzer"
	"laerad/internal/review/mocks"
	"laerad/internal/shared/util"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const headSHA = "abc123"

func encodedContent(src string) *github.RepositoryContent {
	return &github.RepositoryContent{
		Encoding: github.String("base64"),
		Content:  github.String(base64.StdEncoding.EncodeToString([]byte(src))),
	}
}

func newReviewer(t *testing.T) (*GitHubReviewer, *mocks.MockPullRequestService, *mocks.MockContentService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	pulls := mocks.NewMockPullRequestService(ctrl)
	contents := mocks.NewMockContentService(ctrl)
	reviewer := NewGitHubReviewerWithServices(pulls, contents, analyzer.New(nil, analyzer.DefaultRules()), util.NewLimiter(0, 1))
	return reviewer, pulls, contents
}

func expectPullRequest(pulls *mocks.MockPullRequestService) {
	pulls.EXPECT().
		Get(gomock.Any(), "acme", "shop", 7).
		Return(&github.PullRequest{Head: &github.PullRequestBranch{SHA: github.String(headSHA)}}, nil, nil).
		Times(1)
}

func TestParseRepository(t *testing.T) {
	owner, repo, err := ParseRepository("acme/shop")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "shop", repo)

	for _, bad := range []string{"", "acme", "acme/", "/shop", "a/b/c"} {
		_, _, err := ParseRepository(bad)
		assert.ErrorIs(t, err, ErrInvalidRepository, bad)
	}
}

func TestGitHubReviewer_PostsReview(t *testing.T) {
	reviewer, pulls, contents := newReviewer(t)
	expectPullRequest(pulls)

	pulls.EXPECT().
		ListFiles(gomock.Any(), "acme", "shop", 7, gomock.Any()).
		Return([]*github.CommitFile{
			{Filename: github.String("app/a.rb"), Status: github.String("modified"), Patch: github.String("@@ -0,0 +1,2 @@\n+x = 1\n+puts x\n")},
			{Filename: github.String("README.md"), Status: github.String("modified"), Patch: github.String("@@ -1 +1 @@\n-a\n+b\n")},
			{Filename: github.String("old.rb"), Status: github.String("removed"), Patch: github.String("@@ -1 +0,0 @@\n-y = 1\n")},
		}, &github.Response{}, nil).
		Times(1)

	contents.EXPECT().
		GetContents(gomock.Any(), "acme", "shop", "app/a.rb", &github.RepositoryContentGetOptions{Ref: headSHA}).
		Return(encodedContent("x = 1\nputs x\n"), nil, nil, nil).
		Times(1)

	var posted *github.PullRequestReviewRequest
	pulls.EXPECT().
		CreateReview(gomock.Any(), "acme", "shop", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, req *github.PullRequestReviewRequest) (*github.PullRequestReview, *github.Response, error) {
			posted = req
			return &github.PullRequestReview{}, nil, nil
		}).
		Times(1)

	messages, err := reviewer.Review(context.Background(), "acme", "shop", 7, false)
	require.NoError(t, err)
	assert.Equal(t, []Message{{Path: "app/a.rb", Line: 1, Level: LevelWarning, Text: "x is a single-use variable"}}, messages)

	require.NotNil(t, posted)
	assert.Equal(t, headSHA, posted.GetCommitID())
	assert.Equal(t, reviewEvent, posted.GetEvent())
	require.Len(t, posted.Comments, 1)
	assert.Equal(t, "app/a.rb", posted.Comments[0].GetPath())
	assert.Equal(t, 1, posted.Comments[0].GetLine())
	assert.Equal(t, reviewSide, posted.Comments[0].GetSide())
	assert.Equal(t, "x is a single-use variable", posted.Comments[0].GetBody())
}

func TestGitHubReviewer_DryRunDoesNotPost(t *testing.T) {
	reviewer, pulls, contents := newReviewer(t)
	expectPullRequest(pulls)

	pulls.EXPECT().
		ListFiles(gomock.Any(), "acme", "shop", 7, gomock.Any()).
		Return([]*github.CommitFile{
			{Filename: github.String("lib/b.rb"), Status: github.String("added"), Patch: github.String("@@ -0,0 +1,3 @@\n+def helper\n+  1\n+end\n")},
		}, nil, nil).
		Times(1)
	contents.EXPECT().
		GetContents(gomock.Any(), "acme", "shop", "lib/b.rb", gomock.Any()).
		Return(encodedContent("def helper\n  1\nend\n"), nil, nil, nil).
		Times(1)
	pulls.EXPECT().CreateReview(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	messages, err := reviewer.Review(context.Background(), "acme", "shop", 7, true)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "helper is a single-use method", messages[0].Text)
}

func TestGitHubReviewer_Paginates(t *testing.T) {
	reviewer, pulls, contents := newReviewer(t)
	expectPullRequest(pulls)

	first := pulls.EXPECT().
		ListFiles(gomock.Any(), "acme", "shop", 7, &github.ListOptions{PerPage: filesPerPage}).
		Return([]*github.CommitFile{
			{Filename: github.String("a.rb"), Status: github.String("added"), Patch: github.String("@@ -0,0 +1 @@\n+a = 1\n")},
		}, &github.Response{NextPage: 2}, nil)
	pulls.EXPECT().
		ListFiles(gomock.Any(), "acme", "shop", 7, &github.ListOptions{PerPage: filesPerPage, Page: 2}).
		Return([]*github.CommitFile{
			{Filename: github.String("b.rb"), Status: github.String("added"), Patch: github.String("@@ -0,0 +1 @@\n+b = 1\n")},
		}, &github.Response{}, nil).
		After(first)

	contents.EXPECT().GetContents(gomock.Any(), "acme", "shop", "a.rb", gomock.Any()).Return(encodedContent("a = 1\n"), nil, nil, nil)
	contents.EXPECT().GetContents(gomock.Any(), "acme", "shop", "b.rb", gomock.Any()).Return(encodedContent("b = 1\n"), nil, nil, nil)

	messages, err := reviewer.Review(context.Background(), "acme", "shop", 7, true)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a.rb", messages[0].Path)
	assert.Equal(t, "b.rb", messages[1].Path)
}

func TestGitHubReviewer_NoMessagesSkipsPosting(t *testing.T) {
	reviewer, pulls, _ := newReviewer(t)
	expectPullRequest(pulls)
	pulls.EXPECT().ListFiles(gomock.Any(), "acme", "shop", 7, gomock.Any()).Return(nil, nil, nil)

	messages, err := reviewer.Review(context.Background(), "acme", "shop", 7, false)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestGitHubReviewer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrPullRequestNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "rate limited", status: http.StatusForbidden, header: http.Header{"X-Ratelimit-Remaining": []string{"0"}}, want: ErrRateLimited},
		{name: "forbidden", status: http.StatusForbidden, header: http.Header{}, want: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewer, pulls, _ := newReviewer(t)
			resp := &github.Response{Response: &http.Response{StatusCode: tt.status, Header: tt.header}}
			pulls.EXPECT().Get(gomock.Any(), "acme", "shop", 7).Return(nil, resp, errors.New("boom"))

			_, err := reviewer.Review(context.Background(), "acme", "shop", 7, false)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGitHubReviewer_CreateReviewFailure(t *testing.T) {
	reviewer, pulls, contents := newReviewer(t)
	expectPullRequest(pulls)
	pulls.EXPECT().
		ListFiles(gomock.Any(), "acme", "shop", 7, gomock.Any()).
		Return([]*github.CommitFile{
			{Filename: github.String("a.rb"), Status: github.String("added"), Patch: github.String("@@ -0,0 +1 @@\n+a = 1\n")},
		}, nil, nil)
	contents.EXPECT().GetContents(gomock.Any(), "acme", "shop", "a.rb", gomock.Any()).Return(encodedContent("a = 1\n"), nil, nil, nil)
	pulls.EXPECT().CreateReview(gomock.Any(), "acme", "shop", 7, gomock.Any()).Return(nil, nil, errors.New("validation failed"))

	_, err := reviewer.Review(context.Background(), "acme", "shop", 7, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
