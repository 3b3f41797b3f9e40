// Package middleware contains HTTP middleware.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/handler"
	"github.com/replytomic/replytomic/internal/service"
)

// AuthMiddleware authenticates API requests via bearer tokens.
//
// The token is verified against the identity provider's JWKS; the verified
// subject then resolves (creating on first sight) the application user,
// which is attached to the request context.
type AuthMiddleware struct {
	verifier    auth.TokenVerifier
	userService service.UserService
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier auth.TokenVerifier, userService service.UserService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:    verifier,
		userService: userService,
		logger:      logger,
	}
}

// RequireUser rejects requests without a valid bearer token and attaches
// the resolved user to the context for downstream handlers.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			handler.ErrorResponse(w, r, m.logger,
				domain.Unauthorized("middleware.RequireUser", "Authentication required"))
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Info("token verification failed", "error", err, "path", r.URL.Path)
			handler.ErrorResponse(w, r, m.logger,
				domain.Unauthorized("middleware.RequireUser", "Invalid or expired token"))
			return
		}

		user, err := m.userService.GetOrCreate(r.Context(), claims.Subject, claims.Email, claims.Name)
		if err != nil {
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

// Stack composes middleware so the first listed wraps outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
