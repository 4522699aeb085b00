package models

import "time"

// User is the cached session user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Account is the server-side user record.
type Account struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// SessionState is the auth state of a client session.
type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
)

// Session holds the current user and token; both nil means anonymous.
type Session struct {
	User  *User   `json:"user"`
	Token *string `json:"token"`
}

// State returns authenticated only when both user and token are set.
func (s Session) State() SessionState {
	if s.User != nil && s.Token != nil {
		return SessionAuthenticated
	}
	return SessionAnonymous
}
