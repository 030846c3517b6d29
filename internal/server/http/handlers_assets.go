package http

import (
	"net/http"
	"time"

	"github.com/storynest/gateway/internal/model"
)

type signedURLResponse struct {
	Path      string    `json:"path"`
	SignedURL string    `json:"signedUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleSignOne(w http.ResponseWriter, r *http.Request) {
	signed, err := s.assets.Sign(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSignedResponse(signed))
}

type signBatchRequest struct {
	Paths []string `json:"paths"`
}

type signBatchResponse struct {
	URLs  []signedURLResponse `json:"urls"`
	Count int                 `json:"count"`
}

func (s *Server) handleSignBatch(w http.ResponseWriter, r *http.Request) {
	var req signBatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	signed, err := s.assets.SignBatch(r.Context(), req.Paths)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]signedURLResponse, len(signed))
	for i, u := range signed {
		out[i] = toSignedResponse(u)
	}
	s.writeJSON(w, http.StatusOK, signBatchResponse{URLs: out, Count: len(out)})
}

func toSignedResponse(u *model.SignedURL) signedURLResponse {
	return signedURLResponse{Path: u.Path, SignedURL: u.URL, ExpiresAt: u.ExpiresAt}
}
