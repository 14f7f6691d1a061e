// README: Auth middleware verifying bearer JWTs and storing the caller identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mboga/internal/infra"
)

const (
	ctxKeyEmail = "caller_email"
	ctxKeyRole  = "caller_role"
)

// Auth verifies the Authorization bearer token and stores the caller's
// identity on the gin context. Requests without a valid token are rejected
// before any handler runs.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxKeyEmail, identity.Email)
		c.Set(ctxKeyRole, identity.Role)
		c.Next()
	}
}

// CallerEmail returns the authenticated caller's email, empty when the auth
// middleware did not run.
func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}

// CallerRole returns the authenticated caller's role claim, empty for plain
// customers.
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}
