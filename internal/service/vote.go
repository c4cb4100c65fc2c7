package service

import (
	"context"
	"log/slog"

	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/cache"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

// VoteService casts votes and computes tallies.
//
// Cast does no duplicate pre-check and no option-membership pre-check:
// both are decided by the store at insert time, so the answer is atomic
// with the write. A pre-check here would just be a racy second opinion.
type VoteService struct {
	votes  repository.VoteRepository
	polls  repository.PollRepository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewVoteService(votes repository.VoteRepository, polls repository.PollRepository, c *cache.Cache, logger *slog.Logger) *VoteService {
	return &VoteService{votes: votes, polls: polls, cache: c, logger: logger}
}

// Cast records one vote by voterID on pollID for optionID.
//
// A second vote by the same voter on the same poll fails with a conflict.
// An option that doesn't belong to the poll — including one removed by a
// concurrent edit — fails validation.
func (s *VoteService) Cast(ctx context.Context, voterID, pollID, optionID string) (*model.Vote, error) {
	if voterID == "" {
		return nil, apperror.Unauthenticated("authentication required to vote")
	}
	if optionID == "" {
		return nil, apperror.ValidationFailed("optionId", "optionId is required")
	}

	// Distinguishes "poll doesn't exist" (404) from "option isn't in this
	// poll" (400) before the insert; the insert's own constraints remain
	// the source of truth for everything else.
	if _, err := s.polls.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}

	vote := &model.Vote{PollID: pollID, OptionID: optionID, VoterID: voterID}
	if err := s.votes.CastVote(ctx, vote); err != nil {
		return nil, err
	}
	s.cache.Purge()

	s.logger.Info("vote cast",
		"poll_id", pollID, "option_id", optionID, "voter_id", voterID)
	return vote, nil
}

// Tally recomputes the per-option counts for a poll. Every call reads the
// vote rows fresh; results are never cached or stored.
func (s *VoteService) Tally(ctx context.Context, pollID string) (*model.Tally, error) {
	if _, err := s.polls.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}
	return s.votes.TallyVotes(ctx, pollID)
}

// VoteOf returns voterID's vote on the poll, or nil if they haven't voted
// (or the request is anonymous).
func (s *VoteService) VoteOf(ctx context.Context, pollID, voterID string) (*model.Vote, error) {
	if voterID == "" {
		return nil, nil
	}
	return s.votes.FindVoteByVoter(ctx, pollID, voterID)
}
