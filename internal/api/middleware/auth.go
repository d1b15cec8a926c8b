package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-StudyRoomService/internal/api/handlers"
)

// UserIDHeader заголовок с ID уже аутентифицированного студента
const UserIDHeader = "X-User-ID"

const msgUnauthorized = "отсутствует или некорректен ID пользователя"

type userIDKey struct{}

// Auth извлекает ID студента из X-User-ID и кладет его в контекст.
// Аутентификация выполняется выше по цепочке; значение заголовка принимается как есть.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(UserIDHeader), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID кладет ID студента в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID достает ID студента из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}
