package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
)

// HeaderSessionID заголовок с идентификатором сессии покупателя
// Витрина генерирует его один раз и передаёт во всех запросах
const HeaderSessionID = "X-Session-ID"

const msgSessionRequired = "требуется заголовок X-Session-ID"

type sessionKey struct{}

// SessionID извлекает идентификатор сессии из контекста запроса
// Возвращает пустую строку, если запрос прошёл мимо SessionMiddleware
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}

// SessionMiddleware требует заголовок X-Session-ID и кладет его в контекст
// Запрос без сессии не может ни создать холд, ни посмотреть чужие
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sessionID == "" {
			handlers.RespondError(w, http.StatusUnauthorized, msgSessionRequired)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
