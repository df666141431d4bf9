package repositories

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:3306: connection refused")

var userCols = []string{"id", "name", "email", "role", "password_hash", "password_changed_at", "active", "created_at"}

func TestUserFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE id = \? AND active = TRUE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Ann", "ann@example.com", "admin", "$2a$hash", nil, true, created))

	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("u1"), u.ID)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Nil(t, u.PasswordChangedAt)
	assert.Equal(t, created, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.FindByEmail(context.Background(), "  Ann@Example.com ")
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}

	mock.ExpectQuery(`FROM users WHERE id = \?`).WillReturnError(errConnRefused)

	_, err := repo.FindByID(context.Background(), "u1")
	assert.True(t, domain.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, errConnRefused)
}

func TestUserCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Ann", "ann@example.com", "user", "digest", nil, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := repo.Create(context.Background(), models.User{Name: "Ann", Email: "ANN@example.com", PasswordHash: "digest"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.Active)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "ann@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), models.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "digest"})
	assert.True(t, domain.IsConflict(err))
}

func TestUserUpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}
	name := " Bea "

	mock.ExpectExec(`UPDATE users SET name = \? WHERE id = \? AND active = TRUE`).
		WithArgs("Bea", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), "u1", models.UserUpdate{Name: &name})
	assert.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePasswordAndDeactivate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users SET password_hash = \?, password_changed_at = \?`).
		WithArgs("digest", at, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET active = FALSE`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u1", "digest", at))
	require.NoError(t, repo.Deactivate(context.Background(), "u1"))
	assert.True(t, domain.IsNotFound(repo.Delete(context.Background(), "u2")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListProjectsDocuments(t *testing.T) {
	db, mock := newMockDB(t)
	repo := UserRepository{DB: db}
	p := query.MustPipeline(UserSchema, query.Options{Whitelist: UserFilterWhitelist})

	q, err := p.Build(url.Values{"role": {"guide"}, "fields": {"name"}})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM `users` WHERE `active` = \\? AND `role` = \\?").
		WithArgs(true, "guide").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT `id`, `name` FROM `users`").
		WithArgs(true, "guide", query.DefaultLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow([]byte("u1"), []byte("Gil")))

	n, err := repo.Count(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []Document{{"id": "u1", "name": "Gil"}}, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreErr(t *testing.T) {
	assert.NoError(t, storeErr("user", "op", nil))
	assert.True(t, domain.IsStoreUnavailable(storeErr("user", "op", errors.New("boom"))))
	assert.True(t, domain.IsConflict(storeErr("user", "op", &mysql.MySQLError{Number: 1062})))
	assert.True(t, domain.IsStoreUnavailable(storeErr("user", "op", &mysql.MySQLError{Number: 1213})))
}

func TestDecodeValue(t *testing.T) {
	v, err := decodeValue(query.KindInt, []byte("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = decodeValue(query.KindNumber, []byte("4.5"))
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	v, err = decodeValue(query.KindBool, int64(1))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = decodeValue(query.KindTime, []byte("2024-01-02 03:04:05"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), v)

	v, err = decodeValue(query.KindString, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = decodeValue(query.KindInt, true)
	assert.Error(t, err)
}
