package model

import "time"

// Comment is a remark on a poll. Deletable only by its author or an admin.
type Comment struct {
	ID        string    `json:"id"`
	PollID    string    `json:"pollId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Filled on list reads, not stored.
	AuthorName  string `json:"authorName,omitempty"`
	ContentHTML string `json:"contentHtml,omitempty"`
}
