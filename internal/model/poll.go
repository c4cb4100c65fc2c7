// Package model defines the data records exchanged between the service,
// repository, and handler layers. These are plain structs — the JSON tags
// describe the API wire shape, nothing here knows about HTTP or SQL.
package model

import (
	"strings"
	"time"
)

// NormalizeLabel is the canonical form used to compare option labels:
// surrounding whitespace stripped, case folded. Two options of the same
// poll may not share a normalized label; the store carries this form in a
// unique index.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Poll is a question owned by exactly one user. Identity (ID, OwnerID,
// CreatedAt) is immutable; title and description may change on edit.
type Poll struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Option is one of a poll's answers. Position preserves the order the
// creator submitted the options in; tallies are reported in this order.
type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"pollId"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// Vote links a voter to the option they picked. Votes are never updated;
// they disappear only when their option or poll is deleted. The store
// enforces at most one vote per (poll, voter).
type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	OptionID  string    `json:"optionId"`
	VoterID   string    `json:"voterId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PollWithOptions is the poll detail view.
type PollWithOptions struct {
	Poll            Poll     `json:"poll"`
	Options         []Option `json:"options"`
	DescriptionHTML string   `json:"descriptionHtml,omitempty"`
}

// PollSummary is one row of the poll-list view.
type PollSummary struct {
	Poll         Poll  `json:"poll"`
	OptionCount  int   `json:"optionCount"`
	VoteCount    int64 `json:"voteCount"`
	CommentCount int64 `json:"commentCount"`
}

// OptionCount is an option with its recomputed vote count. Options with no
// votes are present with Count zero.
type OptionCount struct {
	OptionID string `json:"optionId"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
}

// Tally is the derived result view for one poll. It is never stored;
// every read recomputes it from the vote rows.
type Tally struct {
	PollID     string        `json:"pollId"`
	Options    []OptionCount `json:"options"`
	TotalVotes int64         `json:"totalVotes"`
}
