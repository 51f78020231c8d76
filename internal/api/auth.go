package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ValidateAPIKey checks if the provided API key matches the configured key
// using a constant-time comparison.
func (s *Server) ValidateAPIKey(provided string) bool {
	if s.config.APIKey == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.config.APIKey)) == 1
}

// ExtractAPIKey extracts the API key from the Authorization header.
// Expected format: "Bearer <key>".
func ExtractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authMiddleware enforces API key authentication on protected routes.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ExtractAPIKey(r)
		if !s.ValidateAPIKey(key) {
			s.logger.Warn("Unauthorized API request",
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
			)
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
