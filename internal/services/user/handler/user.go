package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database/models"
	"dukkan-system/internal/utils"
)

// ErrInvalidCredentials is deliberately vague: callers must not learn
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("incorrect username or password")

type UserHandler struct {
	db       *gorm.DB
	rdb      *redis.Client
	tokenTTL time.Duration
}

func NewUserHandler(db *gorm.DB, rdb *redis.Client, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{db: db, rdb: rdb, tokenTTL: tokenTTL}
}

type CreateUserRequest struct {
	Username string
	Password string
	FullName string
	Email    *string
	Role     string
	Active   bool
}

type UpdateUserRequest struct {
	Username *string
	Password *string
	FullName *string
	Email    *string
	Role     *string
	Active   *bool
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *UserHandler) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? AND active = ?", username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Username, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

func (s *UserHandler) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if len(req.Username) < 3 {
		return nil, &apperr.InvalidArgumentError{Reason: "username must be at least 3 characters"}
	}
	if len(req.Password) < 6 {
		return nil, &apperr.InvalidArgumentError{Reason: "password must be at least 6 characters"}
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleCashier {
		return nil, &apperr.InvalidArgumentError{Reason: "role must be 'admin' or 'cashier'"}
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return nil, &apperr.AlreadyExistsError{Field: "Username"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		Active:       req.Active,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserHandler) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "User", ID: id}
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserHandler) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "User", ID: username}
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserHandler) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (s *UserHandler) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "User", ID: id}
		}
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if len(*req.Username) < 3 {
			return nil, &apperr.InvalidArgumentError{Reason: "username must be at least 3 characters"}
		}
		var other models.User
		err := s.db.WithContext(ctx).Where("username = ? AND id <> ?", *req.Username, id).First(&other).Error
		if err == nil {
			return nil, &apperr.AlreadyExistsError{Field: "Username"}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, &apperr.InvalidArgumentError{Reason: "password must be at least 6 characters"}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleCashier {
			return nil, &apperr.InvalidArgumentError{Reason: "role must be 'admin' or 'cashier'"}
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserHandler) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.NotFoundError{Resource: "User", ID: id}
	}
	return nil
}
