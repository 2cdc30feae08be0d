package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/m04kA/MTB-ReservationService/internal/api/handlers"
	"github.com/m04kA/MTB-ReservationService/internal/infra/ratelimit"
)

const msgTooManyRequests = "слишком много запросов, попробуйте позже"

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RateLimitMiddleware ограничивает частоту запросов по сессии
// Вешается на создание холдов, чтобы один клиент не выбирал ёмкость
// слотов перебором, и на просмотр брони по коду, чтобы код нельзя было
// подобрать перебором. При недоступности хранилища лимитов запрос
// пропускается - лимитер не должен ронять продажу билетов
func RateLimitMiddleware(store ratelimit.Store, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := "session:" + SessionID(r.Context())

			decision, err := store.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("RateLimit: store error for key=%s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				secs := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				handlers.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
