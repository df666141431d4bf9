package models

import (
	"time"

	"natours/internal/domain"
)

// User is the stored credential record.
type User struct {
	ID                domain.ID   `db:"id" json:"id"`
	Name              string      `db:"name" json:"name"`
	Email             string      `db:"email" json:"email"`
	Role              domain.Role `db:"role" json:"role"`
	PasswordHash      string      `db:"password_hash" json:"-"` // never sent to clients
	PasswordChangedAt *time.Time  `db:"password_changed_at" json:"-"`
	Active            bool        `db:"active" json:"-"`
	CreatedAt         time.Time   `db:"created_at" json:"createdAt"`
}

func (u User) Principal() domain.Principal {
	return domain.Principal{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		PasswordChangedAt: u.PasswordChangedAt,
	}
}

// UserUpdate carries the fields a user may change on their own profile.
// Nil pointers are left untouched.
type UserUpdate struct {
	Name  *string      `json:"name"`
	Email *string      `json:"email"`
	Role  *domain.Role `json:"role"`
}
