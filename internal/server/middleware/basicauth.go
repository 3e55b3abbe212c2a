// file: internal/server/middleware/basicauth.go
// version: 1.0.0
// guid: f5a6e7f8-0910-2132-4354-65768798a9ba

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdfalk/tokenbridge/internal/config"
)

// BasicAuth returns a Gin middleware that enforces HTTP Basic Authentication
// for admin routes when config.AppConfig.BasicAuthEnabled is true. When a
// bcrypt hash is configured it takes precedence over the plain password.
func BasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.AppConfig.BasicAuthEnabled {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="tokenbridge"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		expectedUser := config.AppConfig.BasicAuthUsername
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser)) == 1

		passMatch := false
		if hash := config.AppConfig.BasicAuthPasswordHash; hash != "" {
			passMatch = bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
		} else {
			expectedPass := config.AppConfig.BasicAuthPassword
			passMatch = subtle.ConstantTimeCompare([]byte(pass), []byte(expectedPass)) == 1
		}

		if !userMatch || !passMatch {
			c.Header("WWW-Authenticate", `Basic realm="tokenbridge"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
