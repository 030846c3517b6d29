package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type versionResponse struct {
	Version     int64             `json:"version"`
	Checksums   map[string]string `json:"checksums"`
	TotalCount  int               `json:"totalCount"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.sync.Version(r.Context(), chi.URLParam(r, "domain"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, versionResponse{
		Version:     v.Version,
		Checksums:   v.Checksums,
		TotalCount:  v.TotalAssets,
		LastUpdated: v.LastUpdated,
	})
}

type syncRequest struct {
	ClientVersion  int64             `json:"clientVersion"`
	AssetChecksums map[string]string `json:"assetChecksums"`
}

type syncResponse struct {
	ServerVersion  int64             `json:"serverVersion"`
	Updated        []string          `json:"updated"`
	Removed        []string          `json:"removed"`
	AssetChecksums map[string]string `json:"assetChecksums"`
	TotalAssets    int               `json:"totalAssets"`
	LastUpdated    time.Time         `json:"lastUpdated"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !s.decode(w, r, &req) {
		return
	}

	delta, err := s.sync.Diff(r.Context(), chi.URLParam(r, "domain"), req.AssetChecksums)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, syncResponse{
		ServerVersion:  delta.Version,
		Updated:        delta.Updated,
		Removed:        delta.Removed,
		AssetChecksums: delta.Checksums,
		TotalAssets:    delta.TotalAssets,
		LastUpdated:    delta.LastUpdated,
	})
}
