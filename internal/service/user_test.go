package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rststore/storefront/internal/auth"
	"github.com/rststore/storefront/internal/domain"
	apperrors "github.com/rststore/storefront/pkg/errors"
)

func newTestUserService(repo *mockUserRepository) *UserService {
	jwt := auth.NewJWTManager("test-secret-key", time.Hour)
	return NewUserService(repo, jwt, newTestProducer(), newTestLogger())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	authed, err := svc.Register(ctx, &RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "  Ada@Example.COM ",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, authed.User.ID)
	assert.Equal(t, "ada@example.com", authed.User.Email)
	assert.False(t, authed.User.IsAdmin)
	assert.NotEmpty(t, authed.Token)

	// The stored hash verifies against the original password.
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(authed.User.PasswordHash), []byte("correct horse battery")))

	repo.AssertExpectations(t)
}

func TestRegister_MissingName(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Ada",
		Email:    "not-an-email",
		Password: "correct horse battery",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "short",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "ada@example.com"))

	_, err := svc.Register(ctx, &RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{
		ID:           "user-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: hashPassword(t, "correct horse battery"),
	}, nil)

	authed, err := svc.Login(ctx, "Ada@Example.com", "correct horse battery")

	require.NoError(t, err)
	assert.Equal(t, "user-1", authed.User.ID)
	assert.NotEmpty(t, authed.Token)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{
		ID:           "user-1",
		Email:        "ada@example.com",
		PasswordHash: hashPassword(t, "correct horse battery"),
	}, nil)

	_, err := svc.Login(ctx, "ada@example.com", "wrong password")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	_, err := svc.Login(ctx, "ghost@example.com", "whatever password")

	require.Error(t, err)
	// Unknown email and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetProfile_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Name: "Ada"}, nil)

	user, err := svc.GetProfile(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	oldHash := hashPassword(t, "correct horse battery")
	repo.On("GetByID", ctx, "user-1").Return(&domain.User{
		ID:           "user-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: oldHash,
	}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.UpdateProfile(ctx, "user-1", &UpdateProfileInput{
		Name: strPtr("Ada L."),
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, oldHash, user.PasswordHash)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_PasswordRehashed(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	oldHash := hashPassword(t, "old password here")
	repo.On("GetByID", ctx, "user-1").Return(&domain.User{
		ID:           "user-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: oldHash,
	}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.UpdateProfile(ctx, "user-1", &UpdateProfileInput{
		Password: strPtr("brand new password"),
	})

	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash), []byte("brand new password")))
}

func TestUpdateProfile_ShortPasswordRejected(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}, nil)

	_, err := svc.UpdateProfile(ctx, "user-1", &UpdateProfileInput{
		Password: strPtr("short"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update")
}

func TestListUsers_ClampsPagination(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("List", ctx, 1, 100).Return([]domain.User{}, 0, nil)

	_, _, err := svc.ListUsers(ctx, 0, 1000)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
