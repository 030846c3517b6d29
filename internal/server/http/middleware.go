package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/limiter"
	"github.com/storynest/gateway/internal/token"
)

type ctxKeyUser struct{}

// authContext is what the bearer middleware leaves for handlers.
type authContext struct {
	UserID uuid.UUID
	Claims *token.Claims
}

func userFromContext(ctx context.Context) (authContext, bool) {
	ac, ok := ctx.Value(ctxKeyUser{}).(authContext)
	return ac, ok
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", RequestIDFromContext(r.Context())))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// recoverPanics converts a handler panic into the standard 500 envelope.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.writeErrorCode(w, r, http.StatusInternalServerError, CodeInternalError,
					fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit keys the request budget by client IP. Deny responses carry the
// standard limit headers and a Retry-After hint.
func (s *Server) rateLimit(lim limiter.RequestLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r)
			ok, remaining, reset, err := lim.Take(r.Context(), key)
			if err != nil {
				// A broken limiter backend must not take the API down.
				s.logger.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(lim.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(reset.Seconds())+1))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				s.monitor.RateLimited(key)
				s.writeError(w, r, errs.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth validates the bearer access token and stashes the caller's
// identity in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			s.writeErrorCode(w, r, http.StatusUnauthorized, CodeInvalidToken,
				errs.ErrUnauthorized)
			return
		}
		userID, claims, err := s.issuer.ParseAccess(raw)
		if err != nil {
			s.writeErrorCode(w, r, http.StatusUnauthorized, CodeInvalidToken, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser{}, authContext{UserID: userID, Claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

// clientIP trusts the address chi's RealIP middleware left on the request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
