package gormdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"highscore-user-service/internal/domain/user"
	pkgerrors "highscore-user-service/pkg/errors"
	"highscore-user-service/pkg/logger"
)

// UserRepo implements the user Repository on top of GORM.
// It works against PostgreSQL, MySQL and SQLite.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Name      string `gorm:"type:varchar(100);not null;index"`
	Email     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Password  string `gorm:"type:varchar(100);not null"`
	Highscore int64  `gorm:"not null;default:0"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func toDomain(m *UserSchema) *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Highscore: m.Highscore,
	}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := UserSchema{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Highscore: u.Highscore,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			logger.WithContext(ctx, r.log).Warn("duplicate email rejected by store", zap.String("email", u.Email))
			return pkgerrors.NewAlreadyExistsError("user", "email already exists")
		}
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.String("id", model.ID))
	return nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", "user not found")
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a user by email, returning nil when none exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toDomain(&model), nil
}

// FindByName returns every user with the given name.
func (r *UserRepo) FindByName(ctx context.Context, name string) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Where("name = ?", name).Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to find users by name", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to find users by name: %w", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toDomain(&models[i])
	}
	return users, nil
}

// UpdateHighscore loads the user and overwrites its highscore in one transaction.
func (r *UserRepo) UpdateHighscore(ctx context.Context, id string, score int64) (*user.User, error) {
	var model UserSchema

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&model).Update("highscore", score).Error; err != nil {
			return err
		}
		model.Highscore = score
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", "user not found")
		}
		logger.WithContext(ctx, r.log).Error("failed to update highscore in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update highscore: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("highscore updated in db", zap.String("id", id), zap.Int64("highscore", score))
	return toDomain(&model), nil
}

// Delete removes a user by primary key.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NewNotFoundError("user", "user not found")
	}

	logger.WithContext(ctx, r.log).Info("user deleted in db", zap.String("id", id))
	return nil
}

// isUniqueViolation detects unique constraint errors. TranslateError covers
// postgres and mysql; the message checks cover drivers without a translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
