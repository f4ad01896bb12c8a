package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"highscore-user-service/internal/usecase/user"
	pkgerrors "highscore-user-service/pkg/errors"
	"highscore-user-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest represents the HTTP request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the HTTP request body for logging in
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateScoreRequest represents the HTTP request body for overwriting a highscore
type UpdateScoreRequest struct {
	Highscore *int64 `json:"highscore" binding:"required"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Highscore int64  `json:"highscore"`
}

// MessageResponse is returned by operations with no resource body
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toUserResponse(u *user.UserResponse) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Highscore: u.Highscore,
	}
}

// Register handles POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid register request", err)
		return
	}

	h.logFor(c).Info("Register request", zap.String("name", req.Name), zap.String("email", req.Email))

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, "Register failed", err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(resp))
}

// Login handles POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid login request", err)
		return
	}

	h.logFor(c).Info("Login request", zap.String("name", req.Name))

	resp, err := h.uc.Login(c.Request.Context(), user.LoginRequest{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// UpdateScore handles PUT /update-score/:user_id
func (h *UserHandler) UpdateScore(c *gin.Context) {
	id := c.Param("user_id")

	var req UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid update score request", err)
		return
	}

	ctx := logger.WithUserID(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)
	h.logFor(c).Info("UpdateScore request", zap.Int64("highscore", *req.Highscore))

	resp, err := h.uc.UpdateScore(ctx, user.UpdateScoreRequest{
		ID:        id,
		Highscore: *req.Highscore,
	})
	if err != nil {
		h.handleError(c, "UpdateScore failed", err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// DeleteUser handles DELETE /delete-user/:user_id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("user_id")

	ctx := logger.WithUserID(c.Request.Context(), id)
	c.Request = c.Request.WithContext(ctx)
	h.logFor(c).Info("DeleteUser request")

	resp, err := h.uc.DeleteUser(ctx, user.DeleteUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "DeleteUser failed", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}

// GetUser handles GET /users/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("user_id")

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "GetUser failed", err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

func (h *UserHandler) logFor(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}

func (h *UserHandler) badRequest(c *gin.Context, msg string, err error) {
	h.logFor(c).Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: "Request body is malformed or missing required fields",
	})
}

// handleError maps usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, msg string, err error) {
	if httpErr, ok := pkgerrors.AsHTTPError(err); ok {
		status := httpErr.HTTPStatus()
		l := h.logFor(c)
		if status >= http.StatusInternalServerError {
			l.Error(msg, zap.Error(err))
			c.JSON(status, ErrorResponse{
				Error:   httpErr.Code(),
				Message: "An internal error occurred",
			})
			return
		}

		l.Warn(msg, zap.Int("status", status), zap.Error(err))
		c.JSON(status, ErrorResponse{
			Error:   httpErr.Code(),
			Message: httpErr.Error(),
		})
		return
	}

	h.logFor(c).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
