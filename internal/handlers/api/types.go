package api

import (
	"context"

	"github.com/rentloop/accounts/internal/users"
	"github.com/rentloop/accounts/model"
)

type UserService interface {
	Register(ctx context.Context, opts users.RegisterParams) (*users.PendingRegistration, error)
	VerifyOTP(ctx context.Context, email string, code string) (*model.User, error)
	Authenticate(ctx context.Context, email string, password string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}
