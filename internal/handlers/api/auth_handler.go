package api

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rentloop/accounts/internal/auth"
	"github.com/rentloop/accounts/internal/blob"
	"github.com/rentloop/accounts/internal/mail"
	"github.com/rentloop/accounts/internal/middlewares"
	"github.com/rentloop/accounts/internal/users"
	"github.com/rentloop/accounts/model"
)

var (
	MsgOTPSent            = "OTP sent to email"
	MsgUserRegistered     = "User registered successfully"
	MsgLoginSuccessful    = "Login successful"
	MsgNoFormData         = "No form data received"
	MsgInvalidForm        = "Invalid registration data"
	MsgEmailRegistered    = "Email already registered"
	MsgInvalidOTP         = "Invalid or expired OTP"
	MsgInvalidCredentials = "Invalid credentials"
)

var validate = validator.New()

type AuthHandler struct {
	userService UserService
	blobStore   blob.Store
	mailSender  mail.MailSender
	tokenIssuer *auth.TokenIssuer
}

func NewAuthHandler(userService UserService, blobStore blob.Store, mailSender mail.MailSender, tokenIssuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		blobStore:   blobStore,
		mailSender:  mailSender,
		tokenIssuer: tokenIssuer,
	}
}

func userInfo(user *model.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Birthday:    user.Birthday,
		Phone:       user.Phone,
		ValidIDPath: user.ValidIDPath,
	}
}

// PostRegister stages a registration and emails the verification code. The
// optional identity document goes to blob storage first; if the mail cannot
// be dispatched the whole request fails and the staged entry is left to
// expire.
func (h *AuthHandler) PostRegister(ctx *fiber.Ctx) error {
	var form RegisterForm
	if err := ctx.BodyParser(&form); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgNoFormData})
	}
	if form.Email == "" && form.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgNoFormData})
	}
	if err := validate.Struct(form); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgInvalidForm})
	}

	var validIDPath string
	if fileHeader, err := ctx.FormFile("validID"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()
		validIDPath, err = h.blobStore.Save(ctx.Context(), fileHeader.Filename, file)
		if err != nil {
			if errors.Is(err, blob.ErrUnsupportedFileType) {
				return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgInvalidForm})
			}
			return err
		}
	}

	pending, err := h.userService.Register(ctx.Context(), users.RegisterParams{
		Email:       form.Email,
		Password:    form.Password,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Birthday:    form.Birthday,
		Phone:       form.Phone,
		ValidIDPath: validIDPath,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailRegistered) {
			return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgEmailRegistered})
		}
		return err
	}

	if err := mail.SendOTPCode(h.mailSender, pending.Email, pending.Code); err != nil {
		slog.Error("Failed to send OTP mail", "email", pending.Email, "error", err)
		return err
	}
	return ctx.JSON(MessageResponse{Message: MsgOTPSent})
}

// PostVerifyOTP finalizes a pending registration. Every failure to match a
// live pending entry reports the same message.
func (h *AuthHandler) PostVerifyOTP(ctx *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgInvalidOTP})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgInvalidOTP})
	}

	if _, err := h.userService.VerifyOTP(ctx.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, users.ErrInvalidOTP) || errors.Is(err, users.ErrOTPAttemptsExceeded) {
			return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgInvalidOTP})
		}
		return err
	}
	return ctx.JSON(MessageResponse{Message: MsgUserRegistered})
}

// PostLogin checks credentials and issues an access token. Unknown emails
// and wrong passwords produce the identical response.
func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: MsgNoFormData})
	}

	user, err := h.userService.Authenticate(ctx.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(MessageResponse{Message: MsgInvalidCredentials})
		}
		return err
	}

	token, err := h.tokenIssuer.Issue(user.ID, user.Email)
	if err != nil {
		return err
	}
	return ctx.JSON(LoginResponse{
		Message: MsgLoginSuccessful,
		User:    userInfo(user),
		Token:   token,
	})
}

// GetMe returns the authenticated caller's profile.
func (h *AuthHandler) GetMe(ctx *fiber.Ctx) error {
	user, err := h.userService.GetUserByID(ctx.Context(), middlewares.AuthUserID(ctx))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(MessageResponse{Message: "Unauthorized"})
		}
		return err
	}
	return ctx.JSON(ProfileResponse{User: userInfo(user)})
}
