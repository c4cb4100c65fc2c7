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
	MaxCommentLength        = 1000
	DefaultCommentListLimit = 50
	MaxCommentListLimit     = 200
)

// CommentService manages poll comments. Comments are flat (no threading)
// and may be deleted by their author or by an admin.
type CommentService struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, users repository.UserRepository, c *cache.Cache, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, users: users, cache: c, logger: logger}
}

// Create posts a comment on a poll. The store's poll foreign key decides
// whether the poll still exists, atomically with the insert.
func (s *CommentService) Create(ctx context.Context, authorID, pollID, content string) (*model.Comment, error) {
	if authorID == "" {
		return nil, apperror.Unauthenticated("authentication required to comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comments must be %d characters or fewer", MaxCommentLength))
	}

	comment := &model.Comment{PollID: pollID, AuthorID: authorID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.cache.Purge()

	s.logger.Info("comment created",
		"comment_id", comment.ID, "poll_id", pollID, "author_id", authorID)
	return comment, nil
}

// List returns a poll's comments oldest-first with rendered HTML bodies.
func (s *CommentService) List(ctx context.Context, pollID string, limit, offset int) ([]model.Comment, error) {
	if limit <= 0 {
		limit = DefaultCommentListLimit
	}
	if limit > MaxCommentListLimit {
		limit = MaxCommentListLimit
	}
	if offset < 0 {
		offset = 0
	}

	comments, err := s.comments.ListComments(ctx, pollID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].ContentHTML = markdown.Render(comments[i].Content)
	}
	return comments, nil
}

// Delete removes a comment. Allowed for the comment's author and for
// admins; everyone else gets a forbidden error, including the poll owner.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	if actorID == "" {
		return apperror.Unauthenticated("authentication required to delete a comment")
	}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != actorID {
		actor, err := s.users.GetUserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return apperror.Forbidden("only the comment author or an admin may delete it")
		}
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.cache.Purge()

	s.logger.Info("comment deleted", "comment_id", commentID, "actor_id", actorID)
	return nil
}
