// file: internal/server/middleware/auth.go
// version: 1.0.0
// guid: d384c5d6-e7f8-0910-2132-435465768798

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextSubjectTokenKey = "subject_token"

// SubjectTokenFromRequest extracts the upstream identity token from the
// Authorization header. Only Bearer auth is accepted; the upstream token is
// a credential, never a cookie.
func SubjectTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

// SubjectToken fetches the upstream token stored by RequireSubjectToken.
func SubjectToken(c *gin.Context) (string, bool) {
	if c == nil {
		return "", false
	}
	value, ok := c.Get(contextSubjectTokenKey)
	if !ok || value == nil {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}

// RequireSubjectToken rejects requests that carry no upstream bearer token
// and stashes the token in the Gin context for handlers.
func RequireSubjectToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SubjectTokenFromRequest(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			c.Abort()
			return
		}
		c.Set(contextSubjectTokenKey, token)
		c.Next()
	}
}
