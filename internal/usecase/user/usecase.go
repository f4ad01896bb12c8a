package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "highscore-user-service/internal/domain/user"
	pkgerrors "highscore-user-service/pkg/errors"
	"highscore-user-service/pkg/logger"
)

// DeletedMessage is returned to the caller after a successful delete.
const DeletedMessage = "User deleted"

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error                                 // Insert a new user; AlreadyExistsError on duplicate email
	GetByID(ctx context.Context, id string) (*domain.User, error)                     // NotFoundError when absent; Password may be empty if served from cache
	GetByEmail(ctx context.Context, email string) (*domain.User, error)               // nil, nil when absent
	FindByName(ctx context.Context, name string) ([]domain.User, error)               // All users sharing a display name
	UpdateHighscore(ctx context.Context, id string, score int64) (*domain.User, error) // NotFoundError when absent
	Delete(ctx context.Context, id string) error                                      // NotFoundError when absent
}

// Usecase implements the account operations on top of a Repository.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
	hashCost int
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	v := validator.New()
	// Report JSON field names in validation messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Usecase{repo: r, log: log, validate: v, hashCost: bcrypt.DefaultCost}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// Register creates a new account. The email must not be in use.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("registering user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.StructCtx(ctx, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.NewAlreadyExistsError("user", "email already exists")
	}

	hash, err := hashPassword(in.Password, uc.hashCost)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Highscore: 0,
	}

	// A concurrent registration can still win the race; the repository reports it as AlreadyExists.
	if err := uc.repo.Create(ctx, u); err != nil {
		if pkgerrors.IsAlreadyExists(err) {
			log.Warn("email already exists", zap.String("email", in.Email))
			return nil, err
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	log.Info("user registered", zap.String("id", u.ID))
	return toResponse(u), nil
}

// Login returns the user whose name and password match.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.StructCtx(ctx, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	candidates, err := uc.repo.FindByName(ctx, in.Name)
	if err != nil {
		log.Error("failed to look up user by name", zap.String("name", in.Name), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to look up user", err)
	}

	// Names are not unique, so every account with this name is a candidate.
	for i := range candidates {
		u := &candidates[i]
		if checkPassword(u.Password, in.Password) {
			log.Info("user logged in", zap.String("id", u.ID))
			return toResponse(u), nil
		}
	}

	log.Warn("invalid credentials", zap.String("name", in.Name), zap.Int("candidates", len(candidates)))
	return nil, pkgerrors.NewUnauthorizedError("invalid credentials")
}

// UpdateScore overwrites the highscore of an existing user. No monotonic or range check is applied.
func (uc *Usecase) UpdateScore(ctx context.Context, in UpdateScoreRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating highscore", zap.String("id", in.ID), zap.Int64("highscore", in.Highscore))

	if err := uc.validate.StructCtx(ctx, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.UpdateHighscore(ctx, in.ID, in.Highscore)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Warn("user not found", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to update highscore", zap.String("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update highscore", err)
	}

	return toResponse(u), nil
}

// DeleteUser removes a user by ID.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.String("id", in.ID))

	if err := uc.validate.StructCtx(ctx, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Warn("user not found", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	return &DeleteUserResponse{ID: in.ID, Message: DeletedMessage}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.StructCtx(ctx, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Debug("user not found", zap.String("id", in.ID))
			return nil, err
		}
		log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	return toResponse(u), nil
}

var _ UserUsecase = (*Usecase)(nil)
