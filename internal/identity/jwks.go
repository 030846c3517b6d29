package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/storynest/gateway/internal/errs"
)

const (
	jwksTTL         = time.Hour
	jwksGraceWindow = 24 * time.Hour
	jwksFetchLimit  = 3
)

type jwksDoc struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSCache fetches and caches a provider's RSA signing keys. Keys are
// refreshed after jwksTTL; on fetch failure a stale set is served for up
// to jwksGraceWindow before verification fails closed.
type JWKSCache struct {
	url    string
	client *http.Client
	logger *zap.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewJWKSCache(url string, client *http.Client, logger *zap.Logger) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{url: url, client: client, logger: logger}
}

// Key returns the RSA public key for kid, refreshing the set if it is
// stale or the kid is unknown (provider key rotation).
func (c *JWKSCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	fresh := time.Since(c.fetchedAt) < jwksTTL
	c.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		c.mu.RLock()
		key, ok = c.keys[kid]
		withinGrace := time.Since(c.fetchedAt) < jwksGraceWindow
		c.mu.RUnlock()
		if ok && withinGrace {
			c.logger.Warn("jwks refresh failed, serving cached key",
				zap.String("url", c.url), zap.Error(err))
			return key, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrProviderUnreachable, err)
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown kid %q", errs.ErrInvalidToken, kid)
	}
	return key, nil
}

// Run refreshes the key set in the background until ctx is done, keeping
// the hot path from paying fetch latency.
func (c *JWKSCache) Run(ctx context.Context) {
	ticker := time.NewTicker(jwksTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				c.logger.Warn("background jwks refresh failed",
					zap.String("url", c.url), zap.Error(err))
			}
		}
	}
}

func (c *JWKSCache) refresh(ctx context.Context) error {
	backoff := retry.WithMaxRetries(jwksFetchLimit-1, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		keys, err := c.fetch(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		c.mu.Lock()
		c.keys = keys
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return nil
	})
}

func (c *JWKSCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			c.logger.Warn("skipping unparsable jwk", zap.String("kid", k.Kid), zap.Error(err))
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("jwks document contains no usable RSA keys")
	}
	return keys, nil
}

func parseRSAKey(k jwkKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
