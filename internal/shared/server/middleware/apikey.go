package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/server/respond"
)

// APIKeyHeader carries the shared secret for internal endpoints.
const APIKeyHeader = "x-api-key"

// APIKey rejects requests whose x-api-key header does not match secret.
// An empty secret rejects every request.
func APIKey(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := []byte(strings.TrimSpace(c.GetHeader(APIKeyHeader)))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			respond.Error(c, http.StatusUnauthorized, "", "Unauthorized", "")
			return
		}
		c.Next()
	}
}
