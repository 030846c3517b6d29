package http

import (
	"errors"
	"net/http"

	"github.com/storynest/gateway/internal/errs"
)

// ErrorCode is a stable machine-readable code carried in error envelopes.
// Codes are grouped: 0xx auth, 1xx validation, 2xx downstream, 3xx rate
// limiting, 4xx accounts, 5xx infrastructure.
type ErrorCode string

const (
	CodeAuthenticationFailed ErrorCode = "GTW-001"
	CodeInvalidToken         ErrorCode = "GTW-002"
	CodeTokenExpired         ErrorCode = "GTW-005"
	CodeInvalidRefreshToken  ErrorCode = "GTW-006"
	CodeUnauthorizedAccess   ErrorCode = "GTW-007"

	CodeInvalidRequest     ErrorCode = "GTW-100"
	CodeInvalidRequestBody ErrorCode = "GTW-102"
	CodeInvalidParameter   ErrorCode = "GTW-103"
	CodeRequestTooLarge    ErrorCode = "GTW-104"

	CodeProviderUnavailable ErrorCode = "GTW-202"

	CodeRateLimitExceeded ErrorCode = "GTW-300"

	CodeAccountDeactivated ErrorCode = "GTW-407"

	CodeInternalError      ErrorCode = "GTW-500"
	CodeStorageUnavailable ErrorCode = "GTW-512"
)

var codeMessages = map[ErrorCode]string{
	CodeAuthenticationFailed: "Authentication failed",
	CodeInvalidToken:         "Invalid or expired token",
	CodeTokenExpired:         "Token has expired",
	CodeInvalidRefreshToken:  "Invalid or expired refresh token",
	CodeUnauthorizedAccess:   "Unauthorized access to resource",
	CodeInvalidRequest:       "Invalid request format",
	CodeInvalidRequestBody:   "Request body is invalid or malformed",
	CodeInvalidParameter:     "Invalid parameter value",
	CodeRequestTooLarge:      "Request payload too large",
	CodeProviderUnavailable:  "Identity provider unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",
	CodeAccountDeactivated:   "User account has been deactivated",
	CodeInternalError:        "Internal server error",
	CodeStorageUnavailable:   "Object storage unavailable",
}

// Message returns the default human-readable text for the code.
func (c ErrorCode) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return codeMessages[CodeInternalError]
}

// mapError reduces a service error to a transport status and code. The
// mapping deliberately collapses distinct authentication failures into one
// answer so callers cannot enumerate accounts or probe signature validity.
func mapError(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrExpiredToken),
		errors.Is(err, errs.ErrUnknownProvider):
		return http.StatusUnauthorized, CodeAuthenticationFailed
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, CodeAccountDeactivated
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimitExceeded
	case errors.Is(err, errs.ErrInvalidAssetPath),
		errors.Is(err, errs.ErrUnknownDomain):
		return http.StatusBadRequest, CodeInvalidParameter
	case errors.Is(err, errs.ErrBatchTooLarge):
		return http.StatusBadRequest, CodeRequestTooLarge
	case errors.Is(err, errs.ErrProviderUnreachable):
		return http.StatusServiceUnavailable, CodeProviderUnavailable
	case errors.Is(err, errs.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, CodeStorageUnavailable
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
