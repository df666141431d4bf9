package domain

import "time"

// ID identifies stored documents (users, tours, reviews).
type ID string

// Principal is the authenticated actor of a single request. It is rebuilt by
// the auth middleware on every request and never persisted.
type Principal struct {
	ID                ID         `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	PasswordChangedAt *time.Time `json:"-"`
}

// ChangedPasswordAfter reports whether a token issued at issuedAt predates
// the last password change. A token must be issued strictly after the change
// to stay valid; both sides are compared at millisecond precision.
func (p Principal) ChangedPasswordAfter(issuedAt time.Time) bool {
	if p.PasswordChangedAt == nil {
		return false
	}
	return !issuedAt.After(p.PasswordChangedAt.Truncate(time.Millisecond))
}
