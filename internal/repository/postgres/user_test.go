package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rststore/storefront/internal/domain"
	"github.com/rststore/storefront/pkg/database"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

func newUserTestRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "user-001",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRows(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "password_hash", "is_admin", "created_at", "updated_at",
	}).AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := sampleUser()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(u.Email).
		WillReturnRows(userRows(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_Success(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(u.Name, u.Email, u.PasswordHash, u.IsAdmin, pgxmock.AnyArg(), u.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), u)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_Paginated(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	u := sampleUser()

	rows := pgxmock.NewRows([]string{
		"id", "name", "email", "password_hash", "is_admin", "created_at", "updated_at", "total_count",
	}).AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt, 42)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(10, 10).
		WillReturnRows(rows)

	users, total, err := repo.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, users, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}
