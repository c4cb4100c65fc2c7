package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pollbox/pollbox/internal/cache"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

// Function-field mocks: tests set only the methods they expect to be
// called. An unset method being reached is itself a test failure, so it
// panics loudly rather than returning a zero value.

type mockPollRepo struct {
	createPoll         func(ctx context.Context, poll *model.Poll, options []model.Option) error
	getPoll            func(ctx context.Context, id string) (*model.Poll, error)
	getPollWithOptions func(ctx context.Context, id string) (*model.PollWithOptions, error)
	listPolls          func(ctx context.Context, opts repository.ListOptions) ([]model.PollSummary, error)
	replacePollOptions func(ctx context.Context, poll *model.Poll, options []model.Option) error
	deletePoll         func(ctx context.Context, id string) error
}

func (m *mockPollRepo) CreatePoll(ctx context.Context, poll *model.Poll, options []model.Option) error {
	return m.createPoll(ctx, poll, options)
}
func (m *mockPollRepo) GetPoll(ctx context.Context, id string) (*model.Poll, error) {
	return m.getPoll(ctx, id)
}
func (m *mockPollRepo) GetPollWithOptions(ctx context.Context, id string) (*model.PollWithOptions, error) {
	return m.getPollWithOptions(ctx, id)
}
func (m *mockPollRepo) ListPolls(ctx context.Context, opts repository.ListOptions) ([]model.PollSummary, error) {
	return m.listPolls(ctx, opts)
}
func (m *mockPollRepo) ReplacePollOptions(ctx context.Context, poll *model.Poll, options []model.Option) error {
	return m.replacePollOptions(ctx, poll, options)
}
func (m *mockPollRepo) DeletePoll(ctx context.Context, id string) error {
	return m.deletePoll(ctx, id)
}

type mockVoteRepo struct {
	castVote        func(ctx context.Context, vote *model.Vote) error
	tallyVotes      func(ctx context.Context, pollID string) (*model.Tally, error)
	findVoteByVoter func(ctx context.Context, pollID, voterID string) (*model.Vote, error)
}

func (m *mockVoteRepo) CastVote(ctx context.Context, vote *model.Vote) error {
	return m.castVote(ctx, vote)
}
func (m *mockVoteRepo) TallyVotes(ctx context.Context, pollID string) (*model.Tally, error) {
	return m.tallyVotes(ctx, pollID)
}
func (m *mockVoteRepo) FindVoteByVoter(ctx context.Context, pollID, voterID string) (*model.Vote, error) {
	return m.findVoteByVoter(ctx, pollID, voterID)
}

type mockCommentRepo struct {
	createComment func(ctx context.Context, comment *model.Comment) error
	getComment    func(ctx context.Context, id string) (*model.Comment, error)
	listComments  func(ctx context.Context, pollID string, opts repository.ListOptions) ([]model.Comment, error)
	deleteComment func(ctx context.Context, id string) error
}

func (m *mockCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	return m.createComment(ctx, comment)
}
func (m *mockCommentRepo) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	return m.getComment(ctx, id)
}
func (m *mockCommentRepo) ListComments(ctx context.Context, pollID string, opts repository.ListOptions) ([]model.Comment, error) {
	return m.listComments(ctx, pollID, opts)
}
func (m *mockCommentRepo) DeleteComment(ctx context.Context, id string) error {
	return m.deleteComment(ctx, id)
}

type mockUserRepo struct {
	createUser       func(ctx context.Context, user *model.User) error
	getUserByID      func(ctx context.Context, id string) (*model.User, error)
	getUserByEmail   func(ctx context.Context, email string) (*model.User, error)
	upsertGitHubUser func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return m.createUser(ctx, user)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return m.getUserByID(ctx, id)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.getUserByEmail(ctx, email)
}
func (m *mockUserRepo) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	return m.upsertGitHubUser(ctx, user)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(16, time.Minute)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return c
}
