package client

import "fmt"

// APIError is returned for any non-200 response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("accounts: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("accounts: %s (status %d)", e.Message, e.StatusCode)
}
