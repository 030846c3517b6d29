// Package token issues and parses the gateway's own short-lived access
// tokens. Refresh tokens are opaque and live in internal/tokenhash.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/storynest/gateway/internal/errs"
)

const (
	// Issuer identifies tokens minted by this service.
	Issuer = "storynest-gateway"

	// AccessTTL bounds the damage window of a leaked access token.
	AccessTTL = 15 * time.Minute
)

// DefaultScope is granted to every authenticated session.
var DefaultScope = []string{"read", "write"}

// Claims is the payload of a gateway access token.
type Claims struct {
	jwt.RegisteredClaims
	Provider  string `json:"provider"`
	TokenType string `json:"type"`
}

// TokenIssuer signs and parses access tokens with a shared HS256 secret.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewIssuer(secret []byte) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token: secret must be at least 32 bytes")
	}
	return &TokenIssuer{secret: secret, accessTTL: AccessTTL, now: time.Now}, nil
}

// IssueAccess mints an access token for userID authenticated via provider.
// It returns the signed token and its expiry.
func (i *TokenIssuer) IssueAccess(userID uuid.UUID, provider string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.accessTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Provider:  provider,
		TokenType: "access",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, expires, nil
}

// ParseAccess validates raw and returns the user it identifies.
func (i *TokenIssuer) ParseAccess(raw string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, nil, errs.ErrExpiredToken
		}
		return uuid.Nil, nil, fmt.Errorf("%w: %s", errs.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != "access" {
		return uuid.Nil, nil, errs.ErrInvalidToken
	}
	userID, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: malformed subject", errs.ErrInvalidToken)
	}
	return userID, claims, nil
}
