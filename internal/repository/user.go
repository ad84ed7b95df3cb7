package repository

import (
	"context"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Taken reports whether another user than exceptID already uses value
	// in column ("username" or "email").
	Taken(ctx context.Context, column, value string, exceptID uint) (bool, error)
	// UpdateProfile saves the editable profile fields. previousUsername is
	// evicted from the cache together with the new one.
	UpdateProfile(ctx context.Context, user *models.User, previousUsername string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

var profileColumns = map[string]bool{"username": true, "email": true}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "User", user.Username)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := findByUniqueCached[models.User](ctx, r.db, cache.KindUser, cache.UserKey(username), cache.UserTTL, "username", username)
	if err != nil {
		return nil, translate(err, "User", username)
	}
	return user, nil
}

func (r *userRepository) Taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	if !profileColumns[column] {
		return false, models.NewValidationError("unsupported uniqueness column " + column)
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ?", value).
		Where("id <> ?", exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User, previousUsername string) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("username", "first_name", "last_name", "email", "updated_at").
		Updates(user)
	if res.Error != nil {
		return translate(res.Error, "User", user.Username)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	cache.Invalidate(ctx, cache.UserKey(previousUsername), cache.UserKey(user.Username))
	return nil
}
