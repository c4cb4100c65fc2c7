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

var _ repository.PollRepository = (*DB)(nil)

// CreatePoll inserts the poll and its options in one transaction.
// If an option trips UNIQUE(poll_id, label_norm) — a duplicate that slipped
// past service validation — the whole transaction rolls back and no poll
// row survives.
func (db *DB) CreatePoll(ctx context.Context, poll *model.Poll, options []model.Option) error {
	poll.ID = xid.New().String()
	now := time.Now().UTC()
	poll.CreatedAt = now
	poll.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage(fmt.Errorf("begin create poll: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO polls (id, owner_id, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		poll.ID, poll.OwnerID, poll.Title, poll.Description, poll.CreatedAt, poll.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", poll.OwnerID)
		}
		return apperror.Storage(fmt.Errorf("inserting poll: %w", err))
	}

	if err := insertOptions(ctx, tx, poll.ID, options); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Storage(fmt.Errorf("committing poll create: %w", err))
	}
	return nil
}

// insertOptions writes a fresh option set inside an open transaction,
// assigning IDs and positions in submission order.
func insertOptions(ctx context.Context, tx *sql.Tx, pollID string, options []model.Option) error {
	for i := range options {
		opt := &options[i]
		opt.ID = xid.New().String()
		opt.PollID = pollID
		opt.Position = i

		_, err := tx.ExecContext(ctx,
			`INSERT INTO options (id, poll_id, label, label_norm, position)
			 VALUES (?, ?, ?, ?, ?)`,
			opt.ID, opt.PollID, opt.Label, model.NormalizeLabel(opt.Label), opt.Position,
		)
		if err != nil {
			if isUniqueViolation(err, "options.poll_id, options.label_norm") {
				return apperror.ValidationFailed("options",
					fmt.Sprintf("duplicate option %q", opt.Label))
			}
			return apperror.Storage(fmt.Errorf("inserting option %d: %w", i, err))
		}
	}
	return nil
}

// GetPoll returns the bare poll row.
func (db *DB) GetPoll(ctx context.Context, id string) (*model.Poll, error) {
	var p model.Poll
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, created_at, updated_at
		 FROM polls WHERE id = ?`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("poll", id)
		}
		return nil, apperror.Storage(fmt.Errorf("getting poll %s: %w", id, err))
	}
	return &p, nil
}

// GetPollWithOptions returns the poll and its option set in position order.
func (db *DB) GetPollWithOptions(ctx context.Context, id string) (*model.PollWithOptions, error) {
	poll, err := db.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, poll_id, label, position
		 FROM options WHERE poll_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing options for poll %s: %w", id, err))
	}
	defer rows.Close()

	options := []model.Option{}
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Label, &o.Position); err != nil {
			return nil, apperror.Storage(fmt.Errorf("scanning option row: %w", err))
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(fmt.Errorf("iterating options: %w", err))
	}

	return &model.PollWithOptions{Poll: *poll, Options: options}, nil
}

// ListPolls returns poll summaries newest-first with recomputed counts.
func (db *DB) ListPolls(ctx context.Context, opts repository.ListOptions) ([]model.PollSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.owner_id, p.title, p.description, p.created_at, p.updated_at,
		        (SELECT COUNT(*) FROM options o WHERE o.poll_id = p.id),
		        (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id),
		        (SELECT COUNT(*) FROM comments c WHERE c.poll_id = p.id)
		 FROM polls p
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("listing polls: %w", err))
	}
	defer rows.Close()

	summaries := make([]model.PollSummary, 0, limit)
	for rows.Next() {
		var s model.PollSummary
		if err := rows.Scan(
			&s.Poll.ID, &s.Poll.OwnerID, &s.Poll.Title, &s.Poll.Description,
			&s.Poll.CreatedAt, &s.Poll.UpdatedAt,
			&s.OptionCount, &s.VoteCount, &s.CommentCount,
		); err != nil {
			return nil, apperror.Storage(fmt.Errorf("scanning poll summary: %w", err))
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(fmt.Errorf("iterating polls: %w", err))
	}
	return summaries, nil
}

// ReplacePollOptions updates the poll row and swaps the entire option set in a
// single transaction. Deleting the old options cascades to their votes —
// editing a poll resets its votes, and a vote racing this transaction
// either lands before the delete (and cascades away with it) or fails its
// foreign-key check. It can never attach to a half-replaced set.
func (db *DB) ReplacePollOptions(ctx context.Context, poll *model.Poll, options []model.Option) error {
	poll.UpdatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Storage(fmt.Errorf("begin replace options: %w", err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE polls SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		poll.Title, poll.Description, poll.UpdatedAt, poll.ID,
	)
	if err != nil {
		return apperror.Storage(fmt.Errorf("updating poll %s: %w", poll.ID, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Storage(fmt.Errorf("checking rows affected: %w", err))
	}
	if affected == 0 {
		return apperror.NotFound("poll", poll.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM options WHERE poll_id = ?`, poll.ID,
	); err != nil {
		return apperror.Storage(fmt.Errorf("deleting options for poll %s: %w", poll.ID, err))
	}

	if err := insertOptions(ctx, tx, poll.ID, options); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Storage(fmt.Errorf("committing option replace: %w", err))
	}
	return nil
}

// DeletePoll removes the poll; options, votes, and comments cascade.
func (db *DB) DeletePoll(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM polls WHERE id = ?`, id)
	if err != nil {
		return apperror.Storage(fmt.Errorf("deleting poll %s: %w", id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Storage(fmt.Errorf("checking rows affected: %w", err))
	}
	if affected == 0 {
		return apperror.NotFound("poll", id)
	}
	return nil
}
