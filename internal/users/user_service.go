package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rentloop/accounts/internal/store"
	"github.com/rentloop/accounts/model"
	"github.com/rentloop/accounts/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Birthday    string
	Phone       string
	ValidIDPath string
}

type UserService struct {
	userRepo     UserRepository
	pendingStore store.Store[PendingRegistration]
	attemptStore store.Store[int64]
}

func NewUserService(userRepo UserRepository, storage store.Storage) *UserService {
	return &UserService{
		userRepo:     userRepo,
		pendingStore: store.New[PendingRegistration](storage, params.PendingRegistrationKeyPrefix),
		attemptStore: store.New[int64](storage, params.OTPAttemptsKeyPrefix),
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FirstByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) checkUserExist(ctx context.Context, email string) error {
	_, err := s.userRepo.FirstByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrEmailRegistered
}

// Register stages a pending registration under the applicant's email and
// returns it together with the generated verification code. A previous
// pending entry for the same email is overwritten and its attempt counter
// reset.
func (s *UserService) Register(ctx context.Context, opts RegisterParams) (*PendingRegistration, error) {
	email := strings.ToLower(opts.Email)
	if err := s.checkUserExist(ctx, email); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	pending := PendingRegistration{
		Email:       email,
		Code:        generateOTP(),
		Password:    string(passwordHash),
		FirstName:   opts.FirstName,
		LastName:    opts.LastName,
		Birthday:    opts.Birthday,
		Phone:       opts.Phone,
		ValidIDPath: opts.ValidIDPath,
		CreatedAt:   time.Now(),
	}
	if err := s.pendingStore.Set(ctx, email, pending, params.PendingRegistrationExpiration); err != nil {
		return nil, err
	}
	s.attemptStore.Delete(ctx, email)
	return &pending, nil
}

// VerifyOTP consumes the pending registration when the submitted code
// matches and creates the durable user row. A missing entry, a mismatched
// code and an already consumed entry are indistinguishable to the caller.
func (s *UserService) VerifyOTP(ctx context.Context, email string, code string) (*model.User, error) {
	email = strings.ToLower(email)

	attempts, err := s.attemptStore.Incr(ctx, email, params.PendingRegistrationExpiration)
	if err != nil {
		return nil, err
	}
	if attempts > params.OTPMaxVerifyAttempts {
		return nil, ErrOTPAttemptsExceeded
	}

	pending, err := s.pendingStore.Get(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	if pending.Code != code {
		return nil, ErrInvalidOTP
	}

	user := model.User{
		Email:       pending.Email,
		Password:    pending.Password,
		FirstName:   pending.FirstName,
		LastName:    pending.LastName,
		Birthday:    pending.Birthday,
		Phone:       pending.Phone,
		ValidIDPath: pending.ValidIDPath,
	}
	var mysqlErr *mysql.MySQLError
	if err := s.userRepo.Create(ctx, &user); err != nil {
		// the unique email index is the last guard against two concurrent
		// verifications completing for the same address
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}

	s.pendingStore.Delete(ctx, email)
	s.attemptStore.Delete(ctx, email)
	return &user, nil
}

// Authenticate checks the submitted credentials. Unknown emails and wrong
// passwords both report ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (*model.User, error) {
	user, err := s.userRepo.FirstByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
