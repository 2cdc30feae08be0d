package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
)

// HeaderAdminToken заголовок с токеном административного доступа
const HeaderAdminToken = "X-Admin-Token"

const msgAdminForbidden = "доступ запрещён"

// AdminMiddleware проверяет токен административного доступа
// Если токен в конфигурации пуст, административные ручки закрыты полностью
func AdminMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAdminToken)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				handlers.RespondError(w, http.StatusForbidden, msgAdminForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
