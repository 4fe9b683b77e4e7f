package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dukkan-system/internal/gateway/middleware"
	userhandler "dukkan-system/internal/services/user/handler"
)

type UserHTTPHandler struct {
	users *userhandler.UserHandler
}

func NewUserHTTPHandler(users *userhandler.UserHandler) *UserHTTPHandler {
	return &UserHTTPHandler{users: users}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=6,max=100"`
	FullName string  `json:"full_name" binding:"required,min=2,max=100"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Role     string  `json:"role" binding:"required"`
	Active   *bool   `json:"active,omitempty"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type ListUsersQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=100"`
}

// --- Authentication ---

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, userhandler.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse("Incorrect username or password"))
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", map[string]interface{}{
		"access_token": result.Token,
		"token_type":   "bearer",
		"expires_at":   result.ExpiresAt,
		"user":         result.User,
	}))
}

func (h *UserHTTPHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.GetUser(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", user))
}

func (h *UserHTTPHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Logout successful", nil))
}

// --- User Management (admin) ---

func (h *UserHTTPHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	user, err := h.users.CreateUser(ctx, userhandler.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Active:   active,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("User created", user))
}

func (h *UserHTTPHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, total, err := h.users.ListUsers(ctx, q.Page, q.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("OK", users, pageMeta(total, q.Page, q.PageSize)))
}

func (h *UserHTTPHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.UpdateUser(ctx, c.Param("id"), userhandler.UpdateUserRequest{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("User updated", user))
}

func (h *UserHTTPHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.users.DeleteUser(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("User deleted successfully", nil))
}
