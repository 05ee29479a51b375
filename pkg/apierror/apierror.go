package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories the HTTP boundary knows how to
// translate. Business code picks a kind at the point of detection.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindAccessDenied
	KindNotFound
	KindConflict
	KindProvider
	KindAssetStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "BAD_REQUEST"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindAccessDenied:
		return "ACCESS_DENIED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindProvider:
		return "PROVIDER_ERROR"
	case KindAssetStore:
		return "ASSET_STORE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindAccessDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindProvider, KindAssetStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type APIError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *APIError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func New(kind Kind, message string, details string) *APIError {
	return &APIError{Kind: kind, Code: kind.String(), Message: message, Details: details}
}

// Wrap attaches a cause that is logged server-side but never rendered.
func Wrap(kind Kind, message string, err error) *APIError {
	return &APIError{Kind: kind, Code: kind.String(), Message: message, Err: err}
}

func Validation(message string, details string) *APIError {
	return New(KindValidation, message, details)
}

func InvalidCredentials() *APIError {
	return New(KindInvalidCredentials, "invalid credentials", "")
}

func Unauthenticated(message string) *APIError {
	return New(KindUnauthenticated, message, "")
}

func AccessDenied(message string, cause error) *APIError {
	return Wrap(KindAccessDenied, message, cause)
}

func NotFound(resource string, id string) *APIError {
	return New(KindNotFound, resource+" not found", id)
}

func Conflict(message string, details string) *APIError {
	return New(KindConflict, message, details)
}

func Provider(message string, cause error) *APIError {
	return Wrap(KindProvider, message, cause)
}

func AssetStore(message string, cause error) *APIError {
	return Wrap(KindAssetStore, message, cause)
}

func Internal(message string, cause error) *APIError {
	return Wrap(KindInternal, message, cause)
}

// KindOf reports the kind of the first APIError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
