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

var _ repository.VoteRepository = (*DB)(nil)

// CastVote inserts one vote row. There is deliberately no prior SELECT: the
// uniqueness of (poll_id, voter_id) is decided by the engine at insert
// time, so two racing casts by the same voter get exactly one success.
//
// A foreign-key failure here means the (option_id, poll_id) pair does not
// exist — the option belongs to another poll, or was removed by an edit
// that this vote raced. The caller has already established that the poll
// itself and the voter exist.
func (db *DB) CastVote(ctx context.Context, vote *model.Vote) error {
	vote.ID = xid.New().String()
	vote.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO votes (id, poll_id, option_id, voter_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		vote.ID, vote.PollID, vote.OptionID, vote.VoterID, vote.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "votes.poll_id, votes.voter_id") {
			return apperror.DuplicateVote(vote.PollID)
		}
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("optionId", "option does not belong to poll")
		}
		return apperror.Storage(fmt.Errorf("inserting vote: %w", err))
	}
	return nil
}

// TallyVotes recomputes the per-option counts for a poll. The LEFT JOIN keeps
// zero-vote options in the result; ordering follows option position so the
// output is deterministic.
func (db *DB) TallyVotes(ctx context.Context, pollID string) (*model.Tally, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT o.id, o.label, COUNT(v.id)
		 FROM options o
		 LEFT JOIN votes v ON v.option_id = o.id
		 WHERE o.poll_id = ?
		 GROUP BY o.id, o.label, o.position
		 ORDER BY o.position`,
		pollID,
	)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("tallying poll %s: %w", pollID, err))
	}
	defer rows.Close()

	tally := &model.Tally{PollID: pollID, Options: []model.OptionCount{}}
	for rows.Next() {
		var oc model.OptionCount
		if err := rows.Scan(&oc.OptionID, &oc.Label, &oc.Count); err != nil {
			return nil, apperror.Storage(fmt.Errorf("scanning tally row: %w", err))
		}
		tally.Options = append(tally.Options, oc)
		tally.TotalVotes += oc.Count
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(fmt.Errorf("iterating tally: %w", err))
	}
	return tally, nil
}

// FindVoteByVoter returns the voter's vote on the poll, or nil if they have
// not voted. Used for the "your vote" marker on poll detail reads.
func (db *DB) FindVoteByVoter(ctx context.Context, pollID, voterID string) (*model.Vote, error) {
	var v model.Vote
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, poll_id, option_id, voter_id, created_at
		 FROM votes WHERE poll_id = ? AND voter_id = ?`,
		pollID, voterID,
	).Scan(&v.ID, &v.PollID, &v.OptionID, &v.VoterID, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperror.Storage(fmt.Errorf("finding vote: %w", err))
	}
	return &v, nil
}
