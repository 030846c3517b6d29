package identity

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
)

const (
	appleIssuer  = "https://appleid.apple.com"
	appleKeysURL = "https://appleid.apple.com/auth/keys"
)

// Apple verifies Sign in with Apple ID tokens. The client states which of
// the configured service IDs it authenticated against, and that statement
// must match the token's audience.
type Apple struct {
	cache     *JWKSCache
	clientIDs []string
}

type AppleOption func(*Apple)

func WithAppleKeysURL(url string, client *http.Client, logger *zap.Logger) AppleOption {
	return func(a *Apple) { a.cache = NewJWKSCache(url, client, logger) }
}

func NewApple(clientIDs []string, logger *zap.Logger, opts ...AppleOption) *Apple {
	a := &Apple{
		cache:     NewJWKSCache(appleKeysURL, nil, logger),
		clientIDs: clientIDs,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Apple) Name() string { return model.ProviderApple }

// Run keeps the signing keys warm until ctx is done.
func (a *Apple) Run(ctx context.Context) { a.cache.Run(ctx) }

func (a *Apple) Verify(ctx context.Context, idToken, clientID, nonce string) (Identity, error) {
	if clientID == "" || !containsString(a.clientIDs, clientID) {
		return Identity{}, fmt.Errorf("%w: client id not recognised", errs.ErrInvalidToken)
	}

	claims, err := verifyIDToken(ctx, a.cache, idToken, []string{appleIssuer})
	if err != nil {
		return Identity{}, err
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s", errs.ErrInvalidToken, err)
	}
	if !containsString(aud, clientID) {
		return Identity{}, fmt.Errorf("%w: audience does not match client id", errs.ErrInvalidToken)
	}
	if err := checkNonce(claims.Nonce, nonce); err != nil {
		return Identity{}, err
	}
	return claims.identity(), nil
}
