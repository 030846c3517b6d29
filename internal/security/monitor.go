// Package security records authentication events for audit and exposes
// aggregate counters for the status endpoint. Events carry hashed client
// addresses and provider subjects only; raw identifiers stay out of logs.
package security

import (
	"sync/atomic"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// Monitor is safe for concurrent use.
type Monitor struct {
	logger *zap.Logger

	authSuccess atomic.Int64
	authFailure atomic.Int64
	tokenReuse  atomic.Int64
	lockouts    atomic.Int64
	rateLimited atomic.Int64
	revocations atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	AuthSuccess int64 `json:"authSuccess"`
	AuthFailure int64 `json:"authFailure"`
	TokenReuse  int64 `json:"tokenReuse"`
	Lockouts    int64 `json:"lockouts"`
	RateLimited int64 `json:"rateLimited"`
	Revocations int64 `json:"revocations"`
}

func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{logger: logger.Named("security")}
}

func (m *Monitor) AuthSuccess(userID uuid.UUID, provider, ipHash string) {
	m.authSuccess.Add(1)
	m.logger.Info("authentication succeeded",
		zap.String("user_id", userID.String()),
		zap.String("provider", provider),
		zap.String("ip_hash", ipHash))
}

func (m *Monitor) AuthFailure(provider, reason, ipHash string) {
	m.authFailure.Add(1)
	m.logger.Warn("authentication failed",
		zap.String("provider", provider),
		zap.String("reason", reason),
		zap.String("ip_hash", ipHash))
}

// TokenReuse is the high-signal event: a rotated-out refresh token came
// back, which means it leaked or the client is badly broken. The session
// is killed by the caller; this records why.
func (m *Monitor) TokenReuse(sessionID, userID uuid.UUID, ipHash string) {
	m.tokenReuse.Add(1)
	m.logger.Warn("refresh token reuse detected",
		zap.String("session_id", sessionID.String()),
		zap.String("user_id", userID.String()),
		zap.String("ip_hash", ipHash))
}

func (m *Monitor) Lockout(key, ipHash string) {
	m.lockouts.Add(1)
	m.logger.Warn("authentication lockout placed",
		zap.String("key", key),
		zap.String("ip_hash", ipHash))
}

func (m *Monitor) RateLimited(key string) {
	m.rateLimited.Add(1)
	m.logger.Info("request rate limited", zap.String("key", key))
}

func (m *Monitor) SessionRevoked(sessionID, userID uuid.UUID, reason string) {
	m.revocations.Add(1)
	m.logger.Info("session revoked",
		zap.String("session_id", sessionID.String()),
		zap.String("user_id", userID.String()),
		zap.String("reason", reason))
}

// Counters returns a snapshot of the aggregate counters.
func (m *Monitor) Counters() Snapshot {
	return Snapshot{
		AuthSuccess: m.authSuccess.Load(),
		AuthFailure: m.authFailure.Load(),
		TokenReuse:  m.tokenReuse.Load(),
		Lockouts:    m.lockouts.Load(),
		RateLimited: m.rateLimited.Load(),
		Revocations: m.revocations.Load(),
	}
}
