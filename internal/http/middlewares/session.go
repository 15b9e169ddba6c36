package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speakwise/speakwise/internal/auth"
	"github.com/speakwise/speakwise/internal/domain/user"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SessionMiddleware struct {
	tokens TokenVerifier
	users  UserResolver
}

func NewSessionMiddleware(tokens TokenVerifier, users UserResolver) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, users: users}
}

// RequireSession gates a route on a valid session cookie.
//
// A verified token whose user id no longer resolves to a record does NOT
// fail the request: the id from the claims is attached and the resolved
// user is simply absent. Handlers behind this middleware must tolerate a
// missing resolved user.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "login required",
			})
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired session",
			})
			return
		}

		c.Set(CtxSessionUserID, claims.UserID)

		if m.users != nil {
			resolved, err := m.users.GetByID(c.Request.Context(), claims.UserID)
			if err == nil {
				resolved.PasswordHash = ""
				c.Set(CtxSessionUser, resolved)
			} else {
				slog.Default().Warn("session user did not resolve",
					"user_id", claims.UserID, "err", err)
			}
		}

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func SessionUserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func SessionUserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxSessionUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
