package repositories

import (
	"context"
	"strings"
	"time"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/utils"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, role, password_hash, password_changed_at, active, created_at`

// UserRepository is the credential store adapter. Deactivated users are
// treated as absent by every lookup.
type UserRepository struct {
	DB *sqlx.DB
}

func (r UserRepository) FindByID(ctx context.Context, id domain.ID) (models.User, error) {
	var u models.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ? AND active = TRUE`, string(id))
	if err != nil {
		return models.User{}, storeErr("user", "find user by id", err)
	}
	return u, nil
}

func (r UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ? AND active = TRUE`, utils.NormalizeEmail(email))
	if err != nil {
		return models.User{}, storeErr("user", "find user by email", err)
	}
	return u, nil
}

// Create inserts u, assigning id and creation time.
func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = NewID()
	u.Name = utils.NormalizeSpace(u.Name)
	u.Email = utils.NormalizeEmail(u.Email)
	u.Active = true
	u.CreatedAt = utils.StoreTime(utils.NowUTC())
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, password_changed_at, active, created_at)
		VALUES (:id, :name, :email, :role, :password_hash, :password_changed_at, :active, :created_at)`, u)
	if err != nil {
		return models.User{}, storeErr("user", "create user", err)
	}
	return u, nil
}

// Update applies the non-nil fields of upd and returns the fresh record.
func (r UserRepository) Update(ctx context.Context, id domain.ID, upd models.UserUpdate) (models.User, error) {
	sets := []string{}
	args := []any{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, utils.NormalizeSpace(*upd.Name))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, utils.NormalizeEmail(*upd.Email))
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, string(id))
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ? AND active = TRUE`, args...)
	if err != nil {
		return models.User{}, storeErr("user", "update user", err)
	}
	if err := requireAffected(res, "user"); err != nil {
		return models.User{}, err
	}
	return r.FindByID(ctx, id)
}

// UpdatePassword stores a new digest and records when it changed.
func (r UserRepository) UpdatePassword(ctx context.Context, id domain.ID, hash string, changedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = ?, password_changed_at = ? WHERE id = ? AND active = TRUE`,
		hash, utils.StoreTimeMillis(changedAt), string(id))
	if err != nil {
		return storeErr("user", "update password", err)
	}
	return requireAffected(res, "user")
}

func (r UserRepository) Deactivate(ctx context.Context, id domain.ID) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET active = FALSE WHERE id = ? AND active = TRUE`, string(id))
	if err != nil {
		return storeErr("user", "deactivate user", err)
	}
	return requireAffected(res, "user")
}

func (r UserRepository) Delete(ctx context.Context, id domain.ID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, string(id))
	if err != nil {
		return storeErr("user", "delete user", err)
	}
	return requireAffected(res, "user")
}

func (r UserRepository) Count(ctx context.Context, q *query.Query) (int, error) {
	n, err := countDocuments(ctx, r.DB, q)
	return n, storeErr("user", "count users", err)
}

func (r UserRepository) List(ctx context.Context, q *query.Query) ([]Document, error) {
	docs, err := listDocuments(ctx, r.DB, q)
	return docs, storeErr("user", "list users", err)
}
