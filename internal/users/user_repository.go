package users

import (
	"context"

	"github.com/rentloop/accounts/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FirstByID(ctx context.Context, userID uint) (*model.User, error)
	FirstByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) FirstByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FirstByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}
