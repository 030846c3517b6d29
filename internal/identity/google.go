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
	googleIssuer    = "https://accounts.google.com"
	googleIssuerAlt = "accounts.google.com"
	googleCertsURL  = "https://www.googleapis.com/oauth2/v3/certs"
)

// Google verifies Google Sign-In ID tokens. A single account may sign in
// from the web, iOS, or Android client, each with its own OAuth client ID,
// so the audience is accepted against the whole configured set.
type Google struct {
	cache     *JWKSCache
	clientIDs []string
}

type GoogleOption func(*Google)

func WithGoogleCertsURL(url string, client *http.Client, logger *zap.Logger) GoogleOption {
	return func(g *Google) { g.cache = NewJWKSCache(url, client, logger) }
}

func NewGoogle(clientIDs []string, logger *zap.Logger, opts ...GoogleOption) *Google {
	g := &Google{
		cache:     NewJWKSCache(googleCertsURL, nil, logger),
		clientIDs: clientIDs,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Name() string { return model.ProviderGoogle }

// Run keeps the signing keys warm until ctx is done.
func (g *Google) Run(ctx context.Context) { g.cache.Run(ctx) }

func (g *Google) Verify(ctx context.Context, idToken, clientID, nonce string) (Identity, error) {
	claims, err := verifyIDToken(ctx, g.cache, idToken, []string{googleIssuer, googleIssuerAlt})
	if err != nil {
		return Identity{}, err
	}

	aud, err := claims.GetAudience()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s", errs.ErrInvalidToken, err)
	}
	if !audienceAllowed(aud, g.clientIDs) {
		return Identity{}, fmt.Errorf("%w: audience not recognised", errs.ErrInvalidToken)
	}
	if err := checkNonce(claims.Nonce, nonce); err != nil {
		return Identity{}, err
	}
	return claims.identity(), nil
}

func audienceAllowed(aud []string, allowed []string) bool {
	for _, a := range aud {
		if containsString(allowed, a) {
			return true
		}
	}
	return false
}
