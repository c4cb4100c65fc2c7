package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a comment. The poll FK catches a comment posted against a
// poll that was deleted out from under the caller.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, poll_id, author_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.PollID, comment.AuthorID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("poll", comment.PollID)
		}
		return apperror.Storage(fmt.Errorf("inserting comment: %w", err))
	}
	return nil
}

// GetComment returns one comment.
func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, poll_id, author_id, content, created_at, updated_at
		 FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.PollID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, apperror.Storage(fmt.Errorf("getting comment %s: %w", id, err))
	}
	return &c, nil
}

// ListComments returns a poll's comments oldest-first with author names
// joined in.
func (db *DB) ListComments(ctx context.Context, pollID string, opts repository.ListOptions) ([]model.Comment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.poll_id, c.author_id, c.content, c.created_at, c.updated_at, u.name
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.poll_id = ?
		 ORDER BY c.created_at ASC, c.id ASC
		 LIMIT ? OFFSET ?`,
		pollID, limit, offset,
	)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing comments for poll %s: %w", pollID, err))
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PollID, &c.AuthorID, &c.Content,
			&c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
		); err != nil {
			return nil, apperror.Storage(fmt.Errorf("scanning comment row: %w", err))
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(fmt.Errorf("iterating comments: %w", err))
	}
	return comments, nil
}

// DeleteComment removes one comment. Authorization happens in the service layer;
// by the time this runs the caller is the author or an admin.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return apperror.Storage(fmt.Errorf("deleting comment %s: %w", id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Storage(fmt.Errorf("checking rows affected: %w", err))
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
