package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tradepost/tradepost/internal/platform/httpx"
	"github.com/tradepost/tradepost/internal/shared"
)

// Middleware resolves bearer access tokens into request identities.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// Authenticate parses an optional Authorization header. Requests
// without a token proceed anonymously; an invalid token is rejected
// outright rather than downgraded.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		claims, err := m.Tokens.VerifyAccess(token)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		identity := &shared.Identity{UserID: userID, Email: claims.Email}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireUser rejects anonymous requests with 401.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.IdentityFromContext(r.Context()) == nil {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
