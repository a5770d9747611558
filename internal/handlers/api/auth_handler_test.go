package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/rentloop/accounts/internal/auth"
	"github.com/rentloop/accounts/internal/blob"
	"github.com/rentloop/accounts/internal/mail"
	"github.com/rentloop/accounts/internal/middlewares"
	"github.com/rentloop/accounts/internal/store"
	"github.com/rentloop/accounts/internal/users"
	"github.com/rentloop/accounts/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (r *fakeUserRepo) FirstByID(ctx context.Context, userID uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FirstByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	if user.ID == 0 {
		user.ID = model.GenerateID()
	}
	r.byEmail[user.Email] = user
	return nil
}

type captureMailSender struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (s *captureMailSender) Send(m *mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

func (s *captureMailSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return strings.TrimPrefix(s.sent[len(s.sent)-1].Body, "Your OTP code is: ")
}

func newTestApp(t *testing.T, repo users.UserRepository, sender mail.MailSender) *fiber.App {
	t.Helper()
	blobStore, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	userService := users.NewUserService(repo, store.NewMemoryStorage())
	tokenIssuer := auth.NewTokenIssuer("test-secret", time.Hour)
	handler := NewAuthHandler(userService, blobStore, sender, tokenIssuer)

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Post("/register", handler.PostRegister)
	app.Post("/verify-otp", handler.PostVerifyOTP)
	app.Post("/login", handler.PostLogin)
	app.Get("/me", middlewares.RequireAuth(tokenIssuer), handler.GetMe)
	return app
}

func registerRequest(t *testing.T, fields map[string]string, fileContent string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if fileContent != "" {
		part, err := mw.CreateFormFile("validID", "passport.png")
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return string(data)
}

func validForm() map[string]string {
	return map[string]string{
		"email":     "a@x.com",
		"password":  "p1secret",
		"firstName": "A",
		"lastName":  "Tester",
		"birthday":  "1990-01-01",
		"phone":     "+15550001111",
	}
}

func TestPostRegister(t *testing.T) {
	sender := &captureMailSender{}
	app := newTestApp(t, newFakeUserRepo(), sender)

	resp, err := app.Test(registerRequest(t, validForm(), ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"OTP sent to email"}`, readBody(t, resp))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@x.com"}, sender.sent[0].To)
	assert.Equal(t, "Your OTP Code", sender.sent[0].Subject)
	assert.Len(t, sender.lastCode(), 6)
}

func TestPostRegisterNoFormData(t *testing.T) {
	app := newTestApp(t, newFakeUserRepo(), &captureMailSender{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/register", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"No form data received"}`, readBody(t, resp))
}

func TestPostRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &model.User{Email: "a@x.com"}))
	app := newTestApp(t, repo, &captureMailSender{})

	resp, err := app.Test(registerRequest(t, validForm(), ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Email already registered"}`, readBody(t, resp))
}

func TestPostRegisterMailFailure(t *testing.T) {
	sender := &captureMailSender{err: errors.New("smtp: connection refused")}
	app := newTestApp(t, newFakeUserRepo(), sender)

	resp, err := app.Test(registerRequest(t, validForm(), ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Server error"}`, readBody(t, resp))
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	repo := newFakeUserRepo()
	sender := &captureMailSender{}
	app := newTestApp(t, repo, sender)

	resp, err := app.Test(registerRequest(t, validForm(), "fake image bytes"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	resp, err = app.Test(jsonRequest(t, "/verify-otp", map[string]string{
		"email": "a@x.com",
		"otp":   sender.lastCode(),
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, readBody(t, resp))

	resp, err = app.Test(jsonRequest(t, "/login", map[string]string{
		"email":    "a@x.com",
		"password": "p1secret",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.NotContains(t, body, "password")

	var login LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, "a@x.com", login.User.Email)
	assert.Equal(t, "A", login.User.FirstName)
	assert.True(t, strings.HasPrefix(login.User.ValidIDPath, "uploads/"))
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &profile))
	assert.Equal(t, "a@x.com", profile.User.Email)
}

func TestPostVerifyOTPInvalid(t *testing.T) {
	repo := newFakeUserRepo()
	sender := &captureMailSender{}
	app := newTestApp(t, repo, sender)

	resp, err := app.Test(registerRequest(t, validForm(), ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	wrong := "000000"
	if sender.lastCode() == wrong {
		wrong = "000001"
	}
	resp, err = app.Test(jsonRequest(t, "/verify-otp", map[string]string{"email": "a@x.com", "otp": wrong}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Invalid or expired OTP"}`, readBody(t, resp))

	// no pending entry at all collapses to the same error
	resp, err = app.Test(jsonRequest(t, "/verify-otp", map[string]string{"email": "nobody@x.com", "otp": "123456"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Invalid or expired OTP"}`, readBody(t, resp))

	assert.Empty(t, repo.byEmail)
}

func TestPostVerifyOTPLosesInsertRace(t *testing.T) {
	repo := newFakeUserRepo()
	sender := &captureMailSender{}
	app := newTestApp(t, repo, sender)

	resp, err := app.Test(registerRequest(t, validForm(), ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	// a concurrent verification completed first: the row already exists
	require.NoError(t, repo.Create(context.Background(), &model.User{Email: "a@x.com"}))

	resp, err = app.Test(jsonRequest(t, "/verify-otp", map[string]string{
		"email": "a@x.com",
		"otp":   sender.lastCode(),
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Server error"}`, readBody(t, resp))
	assert.Len(t, repo.byEmail, 1)
}

func TestPostLoginEnumerationSafe(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("p1secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := newFakeUserRepo()
	require.NoError(t, repo.Create(context.Background(), &model.User{Email: "a@x.com", Password: string(hash)}))
	app := newTestApp(t, repo, &captureMailSender{})

	resp, err := app.Test(jsonRequest(t, "/login", map[string]string{"email": "a@x.com", "password": "wrong"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	wrongPassword := readBody(t, resp)

	resp, err = app.Test(jsonRequest(t, "/login", map[string]string{"email": "nobody@x.com", "password": "p1secret"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	unknownEmail := readBody(t, resp)

	assert.Equal(t, wrongPassword, unknownEmail)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, unknownEmail)
}

func TestGetMeUnauthorized(t *testing.T) {
	app := newTestApp(t, newFakeUserRepo(), &captureMailSender{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
