package identity

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storynest/gateway/internal/errs"
)

// idClaims are the claims common to Google and Apple ID tokens that the
// gateway cares about.
type idClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce,omitempty"`
}

// verifyIDToken parses and validates raw against keys, pinning the
// algorithm to RS256 and requiring the given issuers. Audience is checked
// by the caller, who knows which client IDs are acceptable.
func verifyIDToken(ctx context.Context, cache *JWKSCache, raw string, issuers []string) (*idClaims, error) {
	claims := &idClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", errs.ErrInvalidToken)
		}
		return cache.Key(ctx, kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProviderUnreachable):
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: id token expired", errs.ErrExpiredToken)
		default:
			return nil, fmt.Errorf("%w: %s", errs.ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, errs.ErrInvalidToken
	}

	iss, err := claims.GetIssuer()
	if err != nil || !containsString(issuers, iss) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", errs.ErrInvalidToken, iss)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", errs.ErrInvalidToken)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", errs.ErrInvalidToken)
	}
	return claims, nil
}

// checkNonce compares the nonce the client committed to against the one
// embedded in the token. Providers differ on whether they echo the raw
// value or base64url(SHA-256(raw)), so both forms are accepted.
func checkNonce(tokenNonce, expected string) error {
	if expected == "" {
		return nil
	}
	if tokenNonce == expected {
		return nil
	}
	sum := sha256.Sum256([]byte(expected))
	if tokenNonce == base64.RawURLEncoding.EncodeToString(sum[:]) {
		return nil
	}
	return fmt.Errorf("%w: nonce mismatch", errs.ErrInvalidToken)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (c *idClaims) identity() Identity {
	id := Identity{Subject: c.Subject}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}
