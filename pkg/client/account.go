package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Register submits a registration as multipart form data and triggers the
// OTP mail. The returned message acknowledges dispatch; no code is echoed.
func (c *Client) Register(ctx context.Context, params RegisterParams) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"email":     params.Email,
		"password":  params.Password,
		"firstName": params.FirstName,
		"lastName":  params.LastName,
		"birthday":  params.Birthday,
		"phone":     params.Phone,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if params.ValidID != nil {
		part, err := mw.CreateFormFile("validID", params.ValidID.Filename)
		if err != nil {
			return "", fmt.Errorf("failed to attach document: %w", err)
		}
		if _, err := io.Copy(part, params.ValidID.Content); err != nil {
			return "", fmt.Errorf("failed to attach document: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/register"), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp messageResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyOTP submits the emailed code to finalize a registration.
func (c *Client) VerifyOTP(ctx context.Context, email string, otp string) (string, error) {
	payload := map[string]string{"email": email, "otp": otp}
	var resp messageResponse
	if err := c.postJSON(ctx, "/verify-otp", payload, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login checks credentials and returns the profile and access token.
func (c *Client) Login(ctx context.Context, email string, password string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp LoginResult
	if err := c.postJSON(ctx, "/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/me"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var resp profileResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
