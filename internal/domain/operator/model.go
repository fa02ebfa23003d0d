package operator

import "time"

// Session is an authenticated operator session. Only the token hash is
// stored; the raw token is handed to the operator once at issue time.
type Session struct {
	TokenHash string    `json:"-"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session can authorize a write action at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Email != "" && now.Before(s.ExpiresAt)
}

// IssuedSession is returned by Issue and carries the raw bearer token.
type IssuedSession struct {
	Token   string
	Session Session
}
