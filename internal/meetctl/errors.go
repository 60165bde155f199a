package meetctl

import (
	"errors"
	"fmt"
)

var (
	ErrUsage        = errors.New("usage")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("verification failed")
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s: %s", e.Status, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}
