package auth

import (
	"net/http"
	"strings"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"
)

// Middleware оборачивает http.HandlerFunc
type Middleware func(http.HandlerFunc) http.HandlerFunc

// JWTMiddleware валидирует Bearer токен и кладет Viewer в контекст.
// Если requireAdmin — пропускает только роль ADMIN.
func JWTMiddleware(jwtService *JWTService, log *logger.Logger, requireAdmin bool) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || token == "" {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				log.Warn(logger.Entry{
					Action:  "jwt_validation_failed",
					Message: err.Error(),
				})
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			viewer := claims.Viewer()
			if requireAdmin && !viewer.IsAdmin() {
				log.Warn(logger.Entry{
					Action:  "admin_auth_forbidden",
					Message: "insufficient permissions",
					Additional: map[string]any{
						"user_id": viewer.UserID,
						"role":    viewer.Role,
					},
				})
				respondError(w, http.StatusForbidden, "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
