package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
)

// BotAuthMiddleware authenticates the Discord gateway process. This API is
// server-to-server only; the gateway holds a shared secret, there are no
// end-user tokens.
func BotAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("BOT_API_SECRET")
		if secret == "" || !secureCompare(r.Header.Get("X-Bot-Secret"), secret) {
			respondUnauthorized(w, "Invalid or missing bot secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminAuthMiddleware protects the maintenance routes the external scheduler
// calls.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("ADMIN_API_SECRET")
		if secret == "" || !secureCompare(r.Header.Get("X-Admin-Secret"), secret) {
			respondUnauthorized(w, "Invalid or missing admin secret")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + message + `"}`))
}
