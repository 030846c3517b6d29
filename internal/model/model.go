// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Providers recognised by the gateway. Identity is reduced to an opaque
// provider subject; no PII is stored.
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// User is an account keyed by (provider, providerID). Users are never hard
// deleted, only deactivated.
type User struct {
	ID          uuid.UUID
	Provider    string
	ProviderID  string // opaque subject from the provider's ID token
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt time.Time
}

// Session binds a user, a device, and a refresh-token lineage. The refresh
// token itself is never stored; only its one-way hash (and the hash of the
// immediately preceding token, for reuse detection after rotation).
type Session struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RefreshHash    string // hex SHA-256 of the current refresh token, globally unique
	PreviousHash   string // hash of the rotated-out token; empty before first rotation
	DeviceID       string
	DeviceType     string
	Platform       string
	AppVersion     string
	Active         bool
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time
}

// Usable reports whether the session may be used for refresh or continued
// access. Both the active flag and the expiry are authoritative; the
// background sweep is advisory cleanup only.
func (s *Session) Usable(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

// Device carries client metadata captured from request headers at login.
type Device struct {
	ID         string
	Type       string
	Platform   string
	AppVersion string
}

// TokenPair is the credential set returned by authentication and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
	TokenType    string
	Scope        []string
}

// AssetVersion is the canonical checksum manifest of one content domain
// (assets or stories). Read-only to the sync protocol.
type AssetVersion struct {
	Domain      string
	Version     int64
	Checksums   map[string]string // content path -> checksum
	TotalAssets int
	LastUpdated time.Time
}

// SyncDelta is the result of diffing a client manifest against the
// canonical one. Checksums always carries the complete current map so the
// client can self-heal regardless of its local state.
type SyncDelta struct {
	Version     int64
	Updated     []string // new or changed paths the client must fetch
	Removed     []string // client paths absent from the canonical manifest
	Checksums   map[string]string
	TotalAssets int
	LastUpdated time.Time
}

// SignedURL is a time-limited capability URL for one asset path.
type SignedURL struct {
	Path      string
	URL       string
	ExpiresAt time.Time
}
