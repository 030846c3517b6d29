package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storynest/gateway/internal/errs"
	"github.com/storynest/gateway/internal/model"
	"github.com/storynest/gateway/internal/security"
	"github.com/storynest/gateway/internal/service"
)

// Device metadata headers captured into the session at sign-in.
const (
	headerDeviceID   = "X-Device-ID"
	headerDeviceType = "X-Device-Type"
	headerPlatform   = "X-Client-Platform"
	headerAppVersion = "X-App-Version"
)

const maxBodyBytes = 1 << 20

type authRequest struct {
	IDToken  string `json:"idToken"`
	ClientID string `json:"clientId"`
	Nonce    string `json:"nonce,omitempty"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"providerId"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Scope        []string  `json:"scope"`
}

type authResponse struct {
	tokenResponse
	User userResponse `json:"user"`
}

func deviceFromHeaders(r *http.Request) model.Device {
	return model.Device{
		ID:         r.Header.Get(headerDeviceID),
		Type:       r.Header.Get(headerDeviceType),
		Platform:   r.Header.Get(headerPlatform),
		AppVersion: r.Header.Get(headerAppVersion),
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeErrorCode(w, r, http.StatusBadRequest, CodeInvalidRequestBody, err)
		return false
	}
	return true
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		s.writeErrorCode(w, r, http.StatusBadRequest, CodeInvalidRequest, errs.ErrInvalidToken)
		return
	}

	creds := service.Credentials{
		Provider: chi.URLParam(r, "provider"),
		IDToken:  req.IDToken,
		ClientID: req.ClientID,
		Nonce:    req.Nonce,
	}
	pair, user, err := s.auth.Authenticate(r.Context(), creds, deviceFromHeaders(r), clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{
		tokenResponse: toTokenResponse(pair),
		User: userResponse{
			ID:          user.ID.String(),
			Provider:    user.Provider,
			ProviderID:  user.ProviderID,
			Active:      user.Active,
			CreatedAt:   user.CreatedAt,
			LastLoginAt: user.LastLoginAt,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		s.writeErrorCode(w, r, http.StatusBadRequest, CodeInvalidRequest, errs.ErrInvalidToken)
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		s.writeErrorCode(w, r, http.StatusBadRequest, CodeInvalidRequest, errs.ErrInvalidToken)
		return
	}
	if err := s.auth.Revoke(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Authenticated bool              `json:"authenticated"`
	UserID        string            `json:"userId"`
	Provider      string            `json:"provider"`
	ExpiresAt     time.Time         `json:"expiresAt"`
	Security      security.Snapshot `json:"security"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	ac, ok := userFromContext(r.Context())
	if !ok {
		s.writeErrorCode(w, r, http.StatusUnauthorized, CodeInvalidToken, errs.ErrUnauthorized)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Authenticated: true,
		UserID:        ac.UserID.String(),
		Provider:      ac.Claims.Provider,
		ExpiresAt:     ac.Claims.ExpiresAt.Time,
		Security:      s.monitor.Counters(),
	})
}

func toTokenResponse(pair model.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
		Scope:        pair.Scope,
	}
}
