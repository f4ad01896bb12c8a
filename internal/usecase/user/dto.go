package user

import domain "highscore-user-service/internal/domain/user"

// RegisterRequest represents the request payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

// LoginRequest represents the credentials checked on every login.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateScoreRequest overwrites the stored highscore.
// Any integer is accepted, including zero and negative values.
type UpdateScoreRequest struct {
	ID        string `json:"user_id" validate:"required"`
	Highscore int64  `json:"highscore"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string `json:"user_id" validate:"required"`
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID      string
	Message string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `json:"user_id" validate:"required"`
}

// UserResponse is the public view of a user. The password is never included.
type UserResponse struct {
	ID        string
	Name      string
	Email     string
	Highscore int64
}

func toResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Highscore: u.Highscore,
	}
}
