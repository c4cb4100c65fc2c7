package model

import "time"

// User roles. Admins may delete any comment; everything else is owner-only
// regardless of role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Identity can come from email/password
// signup or from GitHub OAuth; in the OAuth case GitHubID is set and
// PasswordHash stays empty.
//
// PasswordHash is never serialized — note the json:"-".
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	GitHubID     int64     `json:"githubId,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
