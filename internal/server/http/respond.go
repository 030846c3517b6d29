package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// errorEnvelope is the uniform error response body. No internal error text
// ever leaves the service; Message comes from the code's canned text.
type errorEnvelope struct {
	Success   bool      `json:"success"`
	ErrorCode ErrorCode `json:"errorCode"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp string    `json:"timestamp"`
	RequestID string    `json:"requestId"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps err to a status/code pair and writes the envelope. The
// raw error goes to the log, keyed by request id, never to the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapError(err)
	s.writeErrorCode(w, r, status, code, err)
}

func (s *Server) writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, err error) {
	reqID := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		s.logger.Debug("request rejected",
			zap.String("request_id", reqID),
			zap.String("path", r.URL.Path),
			zap.String("code", string(code)),
			zap.Error(err))
	}

	s.writeJSON(w, status, errorEnvelope{
		Success:   false,
		ErrorCode: code,
		Error:     http.StatusText(status),
		Message:   code.Message(),
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: reqID,
	})
}
