package user

import "context"

// UserUsecase defines the interface for user account operations.
type UserUsecase interface {
	Register(ctx context.Context, in RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, in LoginRequest) (*UserResponse, error)
	UpdateScore(ctx context.Context, in UpdateScoreRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*UserResponse, error)
}
