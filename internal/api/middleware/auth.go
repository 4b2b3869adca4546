package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/yovko123/uslugiBG-backend/internal/api/handlers"
)

// Заголовки аутентификации. Идентификацию выполняет API-гейтвей,
// сервис доверяет проставленным им заголовкам.
const (
	HeaderUserID     = "X-User-ID"
	HeaderAdminToken = "X-Admin-Token"
)

const (
	msgMissingUserID = "отсутствует заголовок X-User-ID"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgForbidden     = "требуются права администратора"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	isAdminKey
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth проверяет наличие X-User-ID и кладет идентификатор актора в контекст.
// Совпадающий X-Admin-Token дополнительно помечает запрос как административный.
type Auth struct {
	adminToken string
	logger     Logger
}

// NewAuth создает middleware аутентификации
func NewAuth(adminToken string, logger Logger) *Auth {
	return &Auth{adminToken: adminToken, logger: logger}
}

// Middleware для обычных эндпоинтов: требуется любой аутентифицированный актор
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.resolveUser(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		if a.isAdmin(r) {
			ctx = context.WithValue(ctx, isAdminKey, true)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware для административных эндпоинтов
func (a *Auth) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.resolveUser(w, r)
		if !ok {
			return
		}
		if !a.isAdmin(r) {
			a.logger.Warn("Auth: admin access denied for user=%d to %s %s", userID, r.Method, r.URL.Path)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, isAdminKey, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) resolveUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		a.logger.Warn("Auth: missing %s header for %s %s", HeaderUserID, r.Method, r.URL.Path)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, false
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		a.logger.Warn("Auth: invalid %s header %q for %s %s", HeaderUserID, raw, r.Method, r.URL.Path)
		handlers.RespondUnauthorized(w, msgInvalidUserID)
		return 0, false
	}

	return userID, true
}

func (a *Auth) isAdmin(r *http.Request) bool {
	token := r.Header.Get(HeaderAdminToken)
	return token != "" && token == a.adminToken
}

// UserIDFromContext возвращает идентификатор актора, проставленный Auth
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// IsAdminFromContext возвращает признак административного запроса
func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(isAdminKey).(bool)
	return isAdmin
}
