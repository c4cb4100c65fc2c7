// Package service holds the business rules: validation, ownership checks,
// and orchestration between repositories. Services accept primitives and
// return domain errors; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/cache"
	"github.com/pollbox/pollbox/internal/markdown"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
	MaxOptionLabelLength = 100
	MinOptions           = 2
	MaxOptions           = 20
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// PollService manages poll lifecycle: create, read, edit, delete.
//
// The cache holds only derived read views (list pages, detail views) and
// is dropped wholesale on every mutation — poll, vote, and comment writes
// all change the counts the list view shows. Tallies are never cached.
type PollService struct {
	repo   repository.PollRepository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewPollService(repo repository.PollRepository, c *cache.Cache, logger *slog.Logger) *PollService {
	return &PollService{repo: repo, cache: c, logger: logger}
}

// validatePollInput checks title, description, and option labels, and
// returns the trimmed title and the option set in submission order.
// Duplicate detection uses the normalized label; the store enforces the
// same rule with a unique index in case a duplicate slips through.
func validatePollInput(title, description string, optionLabels []string) (string, []model.Option, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return "", nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or fewer", MaxTitleLength))
	}
	if len(description) > MaxDescriptionLength {
		return "", nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or fewer", MaxDescriptionLength))
	}

	if len(optionLabels) < MinOptions {
		return "", nil, apperror.ValidationFailed("options",
			fmt.Sprintf("a poll needs at least %d options", MinOptions))
	}
	if len(optionLabels) > MaxOptions {
		return "", nil, apperror.ValidationFailed("options",
			fmt.Sprintf("a poll may have at most %d options", MaxOptions))
	}

	seen := make(map[string]bool, len(optionLabels))
	options := make([]model.Option, 0, len(optionLabels))
	for _, label := range optionLabels {
		label = strings.TrimSpace(label)
		if label == "" {
			return "", nil, apperror.ValidationFailed("options", "option labels must not be empty")
		}
		if len(label) > MaxOptionLabelLength {
			return "", nil, apperror.ValidationFailed("options",
				fmt.Sprintf("option labels must be %d characters or fewer", MaxOptionLabelLength))
		}
		norm := model.NormalizeLabel(label)
		if seen[norm] {
			return "", nil, apperror.ValidationFailed("options",
				fmt.Sprintf("duplicate option %q", label))
		}
		seen[norm] = true
		options = append(options, model.Option{Label: label})
	}

	return title, options, nil
}

// Create validates and stores a new poll with its options.
func (s *PollService) Create(ctx context.Context, ownerID, title, description string, optionLabels []string) (*model.PollWithOptions, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("authentication required to create a poll")
	}

	title, options, err := validatePollInput(title, description, optionLabels)
	if err != nil {
		return nil, err
	}

	poll := &model.Poll{OwnerID: ownerID, Title: title, Description: description}
	if err := s.repo.CreatePoll(ctx, poll, options); err != nil {
		return nil, err
	}
	s.cache.Purge()

	s.logger.Info("poll created",
		"poll_id", poll.ID, "owner_id", ownerID, "options", len(options))

	return &model.PollWithOptions{
		Poll:            *poll,
		Options:         options,
		DescriptionHTML: markdown.Render(poll.Description),
	}, nil
}

// Get returns the poll detail view with rendered description.
func (s *PollService) Get(ctx context.Context, pollID string) (*model.PollWithOptions, error) {
	key := "poll:" + pollID
	if v, ok := s.cache.Get(key).(*model.PollWithOptions); ok {
		return v, nil
	}

	pw, err := s.repo.GetPollWithOptions(ctx, pollID)
	if err != nil {
		return nil, err
	}
	pw.DescriptionHTML = markdown.Render(pw.Poll.Description)
	s.cache.Set(key, pw)
	return pw, nil
}

// List returns a page of poll summaries, newest first.
func (s *PollService) List(ctx context.Context, limit, offset int) ([]model.PollSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("polls:%d:%d", limit, offset)
	if v, ok := s.cache.Get(key).([]model.PollSummary); ok {
		return v, nil
	}

	summaries, err := s.repo.ListPolls(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, summaries)
	return summaries, nil
}

// Update edits a poll's title, description, and full option set. Only the
// owner may edit. Replacing the options deletes the old set, and existing
// votes cascade away with it — editing a poll resets its votes.
func (s *PollService) Update(ctx context.Context, actorID, pollID, title, description string, optionLabels []string) (*model.PollWithOptions, error) {
	if actorID == "" {
		return nil, apperror.Unauthenticated("authentication required to edit a poll")
	}

	title, options, err := validatePollInput(title, description, optionLabels)
	if err != nil {
		return nil, err
	}

	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.OwnerID != actorID {
		return nil, apperror.Forbidden("only the poll owner may edit it")
	}

	poll.Title = title
	poll.Description = description
	if err := s.repo.ReplacePollOptions(ctx, poll, options); err != nil {
		return nil, err
	}
	s.cache.Purge()

	s.logger.Info("poll updated",
		"poll_id", poll.ID, "actor_id", actorID, "options", len(options))

	return &model.PollWithOptions{
		Poll:            *poll,
		Options:         options,
		DescriptionHTML: markdown.Render(poll.Description),
	}, nil
}

// Delete removes a poll and everything under it. Only the owner may delete.
func (s *PollService) Delete(ctx context.Context, actorID, pollID string) error {
	if actorID == "" {
		return apperror.Unauthenticated("authentication required to delete a poll")
	}

	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.OwnerID != actorID {
		return apperror.Forbidden("only the poll owner may delete it")
	}

	if err := s.repo.DeletePoll(ctx, pollID); err != nil {
		return err
	}
	s.cache.Purge()

	s.logger.Info("poll deleted", "poll_id", pollID, "actor_id", actorID)
	return nil
}
