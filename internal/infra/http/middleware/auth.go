package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

const (
	WebhookTokenHeader = "asaas-access-token"
	AdminKeyHeader     = "X-Admin-Key"
)

// RequireHeaderToken rejeita com 401 quando o header não bate com o segredo.
// Segredo vazio desliga a checagem.
func RequireHeaderToken(header, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
