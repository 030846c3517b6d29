package security

import (
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMonitorCounters(t *testing.T) {
	m := NewMonitor(zap.NewNop())
	userID := uuid.Must(uuid.NewV4())
	sessionID := uuid.Must(uuid.NewV4())

	m.AuthSuccess(userID, "google", "iphash")
	m.AuthSuccess(userID, "google", "iphash")
	m.AuthFailure("apple", "invalid token", "iphash")
	m.TokenReuse(sessionID, userID, "iphash")
	m.Lockout("google:sub", "iphash")
	m.RateLimited("ip:iphash")
	m.SessionRevoked(sessionID, userID, "logout")

	s := m.Counters()
	require.Equal(t, int64(2), s.AuthSuccess)
	require.Equal(t, int64(1), s.AuthFailure)
	require.Equal(t, int64(1), s.TokenReuse)
	require.Equal(t, int64(1), s.Lockouts)
	require.Equal(t, int64(1), s.RateLimited)
	require.Equal(t, int64(1), s.Revocations)
}

func TestMonitorConcurrent(t *testing.T) {
	m := NewMonitor(zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AuthFailure("google", "invalid token", "h")
		}()
	}
	wg.Wait()
	require.Equal(t, int64(50), m.Counters().AuthFailure)
}
