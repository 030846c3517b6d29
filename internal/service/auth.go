// Package service contains application services for authentication,
// content sync, and asset URL signing.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/identity"
	"github.com/storynest/gateway/internal/limiter"
	"github.com/storynest/gateway/internal/model"
	"github.com/storynest/gateway/internal/repository"
	"github.com/storynest/gateway/internal/security"
	"github.com/storynest/gateway/internal/token"
	"github.com/storynest/gateway/internal/tokenhash"
)

const (
	// RefreshTTL is the sliding lifetime of a session; every successful
	// refresh extends it.
	RefreshTTL = 7 * 24 * time.Hour

	// MaxSessionsPerUser caps concurrent devices. The oldest session is
	// revoked when a new sign-in would exceed the cap.
	MaxSessionsPerUser = 5
)

// Credentials is what a client presents to sign in.
type Credentials struct {
	Provider string
	IDToken  string
	ClientID string
	Nonce    string
}

// AuthService defines sign-in, refresh, and revocation operations.
type AuthService interface {
	// Authenticate exchanges a provider ID token for a gateway token pair.
	Authenticate(ctx context.Context, creds Credentials, device model.Device, ip string) (model.TokenPair, *model.User, error)
	// Refresh rotates a refresh token and returns a new pair.
	Refresh(ctx context.Context, refreshToken, ip string) (model.TokenPair, error)
	// Revoke deactivates the session holding refreshToken. Revoking an
	// unknown token is a no-op.
	Revoke(ctx context.Context, refreshToken string) error
	// RevokeAll deactivates every session of a user and reports the count.
	RevokeAll(ctx context.Context, userID uuid.UUID) (int, error)
	// Sessions lists the user's active sessions, oldest first.
	Sessions(ctx context.Context, userID uuid.UUID) ([]*model.Session, error)
}

type AuthServiceImpl struct {
	verifier *identity.Verifier
	users    repository.UserRepository
	sessions repository.SessionRepository
	issuer   *token.TokenIssuer
	lim      limiter.Limiter
	monitor  *security.Monitor
	now      func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	verifier *identity.Verifier,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	issuer *token.TokenIssuer,
	lim limiter.Limiter,
	monitor *security.Monitor,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		lim:      lim,
		monitor:  monitor,
		now:      time.Now,
	}
}

// Authenticate verifies the provider token, upserts the account, and opens
// a session. Lockouts are keyed by (provider, ip) since the subject is not
// known until verification succeeds.
func (s *AuthServiceImpl) Authenticate(
	ctx context.Context, creds Credentials, device model.Device, ip string,
) (model.TokenPair, *model.User, error) {
	ipHash := limiter.HashIP(ip)
	ipHashStr := hex.EncodeToString(ipHash)

	allowed, _, err := s.lim.Allow(ctx, creds.Provider, ipHash)
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	if !allowed {
		return model.TokenPair{}, nil, errs.ErrRateLimited
	}

	ident, err := s.verifier.Verify(ctx, creds.Provider, creds.IDToken, creds.ClientID, creds.Nonce)
	if err != nil {
		if errors.Is(err, errs.ErrProviderUnreachable) || errors.Is(err, errs.ErrUnknownProvider) {
			// Not the caller's fault; no lockout pressure.
			return model.TokenPair{}, nil, err
		}
		s.monitor.AuthFailure(creds.Provider, err.Error(), ipHashStr)
		if blocked, _, ferr := s.lim.Failure(ctx, creds.Provider, ipHash); ferr == nil && blocked {
			s.monitor.Lockout(creds.Provider, ipHashStr)
			return model.TokenPair{}, nil, errs.ErrRateLimited
		}
		return model.TokenPair{}, nil, err
	}
	_ = s.lim.Success(ctx, creds.Provider, ipHash)

	user, err := s.users.GetOrCreate(ctx, creds.Provider, ident.Subject)
	if err != nil {
		return model.TokenPair{}, nil, err
	}

	if err := s.enforceSessionCap(ctx, user.ID); err != nil {
		return model.TokenPair{}, nil, err
	}

	pair, err := s.openSession(ctx, user, device)
	if err != nil {
		return model.TokenPair{}, nil, err
	}
	s.monitor.AuthSuccess(user.ID, creds.Provider, ipHashStr)
	return pair, user, nil
}

// enforceSessionCap revokes oldest sessions until one slot is free.
func (s *AuthServiceImpl) enforceSessionCap(ctx context.Context, userID uuid.UUID) error {
	active, err := s.sessions.FindActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	for len(active) >= MaxSessionsPerUser {
		oldest := active[0]
		if err := s.sessions.MarkInactive(ctx, oldest.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		s.monitor.SessionRevoked(oldest.ID, userID, "session cap")
		active = active[1:]
	}
	return nil
}

func (s *AuthServiceImpl) openSession(
	ctx context.Context, user *model.User, device model.Device,
) (model.TokenPair, error) {
	refresh, err := tokenhash.New()
	if err != nil {
		return model.TokenPair{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.TokenPair{}, err
	}

	now := s.now()
	sess := &model.Session{
		ID:             id,
		UserID:         user.ID,
		RefreshHash:    tokenhash.Hash(refresh),
		DeviceID:       device.ID,
		DeviceType:     device.Type,
		Platform:       device.Platform,
		AppVersion:     device.AppVersion,
		Active:         true,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(RefreshTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return model.TokenPair{}, err
	}

	access, exp, err := s.issuer.IssueAccess(user.ID, user.Provider)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		TokenType:    "Bearer",
		Scope:        token.DefaultScope,
	}, nil
}

// Refresh rotates the refresh token. A token matching a session's previous
// hash is proof of reuse after rotation; the whole session is killed. Two
// racing refreshes with the same current token resolve in the database:
// one wins, the other gets an invalid-token error without collateral.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken, ip string) (model.TokenPair, error) {
	hash := tokenhash.Hash(refreshToken)
	ipHashStr := hex.EncodeToString(limiter.HashIP(ip))

	sess, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, errs.ErrInvalidToken
		}
		return model.TokenPair{}, err
	}

	if hash == sess.PreviousHash {
		if err := s.sessions.MarkInactive(ctx, sess.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, err
		}
		s.monitor.TokenReuse(sess.ID, sess.UserID, ipHashStr)
		return model.TokenPair{}, errs.ErrInvalidToken
	}

	now := s.now()
	if !sess.Active {
		return model.TokenPair{}, errs.ErrInvalidToken
	}
	if !now.Before(sess.ExpiresAt) {
		return model.TokenPair{}, errs.ErrExpiredToken
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.TokenPair{}, errs.ErrInvalidToken
		}
		return model.TokenPair{}, err
	}
	if !user.Active {
		return model.TokenPair{}, errs.ErrUnauthorized
	}

	next, err := tokenhash.New()
	if err != nil {
		return model.TokenPair{}, err
	}
	err = s.sessions.Rotate(ctx, sess.ID, hash, tokenhash.Hash(next), now, now.Add(RefreshTTL))
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return model.TokenPair{}, errs.ErrInvalidToken
		}
		return model.TokenPair{}, err
	}

	access, exp, err := s.issuer.IssueAccess(user.ID, user.Provider)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: next,
		ExpiresAt:    exp,
		TokenType:    "Bearer",
		Scope:        token.DefaultScope,
	}, nil
}

// Revoke deactivates the session holding refreshToken.
func (s *AuthServiceImpl) Revoke(ctx context.Context, refreshToken string) error {
	sess, err := s.sessions.FindByTokenHash(ctx, tokenhash.Hash(refreshToken))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.sessions.MarkInactive(ctx, sess.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.monitor.SessionRevoked(sess.ID, sess.UserID, "logout")
	return nil
}

// RevokeAll deactivates every session of a user.
func (s *AuthServiceImpl) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.sessions.MarkInactiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.monitor.SessionRevoked(uuid.Nil, userID, "logout all")
	}
	return n, nil
}

// Sessions lists the user's active sessions.
func (s *AuthServiceImpl) Sessions(ctx context.Context, userID uuid.UUID) ([]*model.Session, error) {
	return s.sessions.FindActiveByUser(ctx, userID)
}
