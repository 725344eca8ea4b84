package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"secret-nick/internal/core/auth"
	httpez "secret-nick/internal/transport/http/ez"
	resp "secret-nick/internal/transport/http/response"
)

// AuthJWT 校验 Bearer token，写入 userId / role
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(httpez.KeyUserID, claims.UID)
		c.Set(httpez.KeyRole, claims.Role)
		c.Next()
	}
}
