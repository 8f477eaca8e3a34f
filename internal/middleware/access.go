package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"carscout/internal/util"
)

const AccessKeyHeader = "X-Access-Key"

// AccessKeyMiddleware protects endpoints with a shared key checked against a
// bcrypt hash. An empty hash leaves the endpoints open.
func AccessKeyMiddleware(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hash == "" {
			c.Next()
			return
		}

		key := c.GetHeader(AccessKeyHeader)
		if key == "" {
			key = c.Query("access_key")
		}

		if key == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
			util.ErrorResponse(c, http.StatusUnauthorized, util.KindUnauthorized, "Access key required", nil)
			return
		}

		c.Next()
	}
}
