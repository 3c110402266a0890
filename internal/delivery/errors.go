package delivery

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConfiguration = errors.New("email delivery is not configured")
	ErrTransport     = errors.New("email transport failed")
	ErrProvider      = errors.New("email provider rejected the message")
)

type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindTransport     ErrorKind = "transport"
	KindProvider      ErrorKind = "provider"
)

// Error describes a failed send. It matches ErrConfiguration, ErrTransport or
// ErrProvider through errors.Is depending on Kind.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s %s error: %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s error: %s", e.Provider, e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProvider:
		return e.Kind == KindProvider
	}
	return false
}

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindProvider:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func configurationError(provider, message string) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Message: message}
}

func transportError(provider string, err error) *Error {
	return &Error{Kind: KindTransport, Provider: provider, Err: err}
}

func providerError(provider string, statusCode int, message string) *Error {
	return &Error{Kind: KindProvider, Provider: provider, StatusCode: statusCode, Message: message}
}

func isRetryable(err error) bool {
	var deliveryErr *Error
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Retryable()
	}
	return false
}

func isKind(err error, kind ErrorKind) bool {
	var deliveryErr *Error
	return errors.As(err, &deliveryErr) && deliveryErr.Kind == kind
}
