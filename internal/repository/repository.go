// Package repository declares the storage-boundary interfaces consumed by
// the service layer. The concrete implementation lives in repository/sqlite;
// tests substitute in-memory mocks.
//
// The store is expected to provide unique constraints, foreign keys with
// cascading delete, and transactions — the vote-uniqueness and
// option-belongs-to-poll invariants are enforced there, not here.
package repository

import (
	"context"

	"github.com/pollbox/pollbox/internal/model"
)

// ListOptions is limit/offset pagination for list reads.
type ListOptions struct {
	Limit  int
	Offset int
}

// PollRepository persists polls and their option sets.
type PollRepository interface {
	// CreatePoll inserts the poll row and all option rows as one atomic
	// unit. If any option insert fails the poll row must not survive.
	CreatePoll(ctx context.Context, poll *model.Poll, options []model.Option) error

	GetPoll(ctx context.Context, id string) (*model.Poll, error)
	GetPollWithOptions(ctx context.Context, id string) (*model.PollWithOptions, error)
	ListPolls(ctx context.Context, opts ListOptions) ([]model.PollSummary, error)

	// ReplacePollOptions atomically updates the poll row and swaps the
	// full option set: old options are deleted (their votes cascade away)
	// and the new set inserted, all in a single transaction.
	ReplacePollOptions(ctx context.Context, poll *model.Poll, options []model.Option) error

	// DeletePoll removes the poll; options, votes, and comments cascade.
	DeletePoll(ctx context.Context, id string) error
}

// VoteRepository persists votes and recomputes tallies.
type VoteRepository interface {
	// CastVote inserts one vote row as a bare compare-and-insert. The
	// store's UNIQUE(poll_id, voter_id) surfaces as a duplicate-vote
	// conflict and the composite FK to options surfaces as a validation
	// error when the option does not belong to the poll.
	CastVote(ctx context.Context, vote *model.Vote) error

	// TallyVotes recomputes counts per option from the vote rows. Options
	// with zero votes are included; ordering follows option position.
	TallyVotes(ctx context.Context, pollID string) (*model.Tally, error)

	// FindVoteByVoter returns the caller's vote on a poll, or nil.
	FindVoteByVoter(ctx context.Context, pollID, voterID string) (*model.Vote, error)
}

// CommentRepository persists poll comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, pollID string, opts ListOptions) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHubUser inserts on first OAuth login and refreshes profile
	// fields on subsequent logins, keyed by the GitHub user ID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}
