package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/userdesk/internal/actorctx"
	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := m.verifier.VerifyToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		attach(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// the request through either way. The GraphQL endpoint uses it, since login
// and signup run there without a token and each resolver decides for itself.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := m.verifier.VerifyToken(raw); err == nil {
				attach(c, claims)
			}
		}
		c.Next()
	}
}

// ClaimsFromContext returns the caller attached by RequireAuth/OptionalAuth,
// or nil.
func ClaimsFromContext(c *gin.Context) *auth.Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		return "", false
	}
	return claims.UserID(), true
}

func RoleFromContext(c *gin.Context) (string, bool) {
	claims := ClaimsFromContext(c)
	if claims == nil {
		return "", false
	}
	return claims.Role, true
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	return raw, raw != ""
}

// attach stores the caller on the gin context and on the request context, so
// code that only sees a context.Context (GraphQL resolvers) can read it.
func attach(c *gin.Context, claims *auth.Claims) {
	c.Set(CtxClaims, claims)
	c.Request = c.Request.WithContext(actorctx.WithClaims(c.Request.Context(), claims))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "UNAUTHENTICATED",
			"message":   message,
			"requestId": c.GetString(CtxRequestID),
		},
	})
}
