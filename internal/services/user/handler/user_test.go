package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database"
	"dukkan-system/internal/database/models"
	"dukkan-system/internal/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestHandler(t *testing.T) *UserHandler {
	utils.JwtSecret = []byte("test-secret")
	return NewUserHandler(setupTestDB(t), nil, time.Hour)
}

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Username: "kasiyer1",
		Password: "kasiyer123",
		FullName: "Ayşe Yılmaz",
		Role:     models.RoleCashier,
		Active:   true,
	}
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "kasiyer123", user.PasswordHash)

	auth, err := s.Authenticate(ctx, "kasiyer1", "kasiyer123")
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.True(t, auth.ExpiresAt.After(time.Now()))
	assert.Equal(t, user.ID, auth.User.ID)

	claims, err := utils.ParseToken(auth.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "kasiyer1", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody", "kasiyer123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	req := validCreateRequest()
	req.Active = false
	_, err := s.CreateUser(ctx, req)
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "kasiyer1", "kasiyer123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	short := validCreateRequest()
	short.Username = "ab"
	_, err := s.CreateUser(ctx, short)
	assert.True(t, apperr.IsInvalidArgument(err))

	weak := validCreateRequest()
	weak.Password = "12345"
	_, err = s.CreateUser(ctx, weak)
	assert.True(t, apperr.IsInvalidArgument(err))

	badRole := validCreateRequest()
	badRole.Role = "manager"
	_, err = s.CreateUser(ctx, badRole)
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = s.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, validCreateRequest())
	require.Error(t, err)
	assert.True(t, apperr.IsAlreadyExists(err))
	assert.Equal(t, "Username already exists", err.Error())
}

func TestUpdateUser(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	name := "Ayşe Demir"
	role := models.RoleAdmin
	updated, err := s.UpdateUser(ctx, user.ID, UpdateUserRequest{FullName: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Demir", updated.FullName)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, user.Username, updated.Username)

	// Password update rehashes and the new password authenticates.
	newPassword := "yeni-sifre"
	_, err = s.UpdateUser(ctx, user.ID, UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "kasiyer1", "kasiyer123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "kasiyer1", "yeni-sifre")
	assert.NoError(t, err)

	_, err = s.UpdateUser(ctx, "missing", UpdateUserRequest{FullName: &name})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteUser(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, user.ID))
	assert.True(t, apperr.IsNotFound(s.DeleteUser(ctx, user.ID)))

	_, err = s.GetUser(ctx, user.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListUsers(t *testing.T) {
	s := newTestHandler(t)
	ctx := context.Background()

	first := validCreateRequest()
	_, err := s.CreateUser(ctx, first)
	require.NoError(t, err)

	second := validCreateRequest()
	second.Username = "kasiyer2"
	_, err = s.CreateUser(ctx, second)
	require.NoError(t, err)

	users, total, err := s.ListUsers(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}
