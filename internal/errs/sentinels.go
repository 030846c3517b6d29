// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers. Only the HTTP layer converts
// these into transport status codes and the error envelope.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a guarded update lost to a concurrent writer
	// (e.g., a refresh-token rotation that another request won).
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidToken indicates a token that fails signature, format, or
	// lookup checks. Deliberately indistinguishable from "no such user".
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a structurally valid token past its expiry,
	// or a session that is revoked or expired.
	ErrExpiredToken = errors.New("expired token")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a temporary block due to rate limiting or
	// brute-force lockout.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderUnreachable indicates the identity provider's signing keys
	// could not be obtained within the grace window. Verification fails
	// closed under this condition.
	ErrProviderUnreachable = errors.New("identity provider unreachable")

	// ErrUnknownProvider indicates an authentication request for a provider
	// this gateway is not configured for.
	ErrUnknownProvider = errors.New("unknown identity provider")

	// ErrInvalidAssetPath indicates an asset path outside the allowed
	// space (traversal, absolute path, disallowed prefix).
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrBatchTooLarge indicates a batch or manifest exceeding its bound.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrUnknownDomain indicates a sync request for a content domain that
	// has no catalog.
	ErrUnknownDomain = errors.New("unknown content domain")

	// ErrStorageUnavailable indicates the object store or signing backend
	// failed or timed out; the caller may retry later.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
