package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	KeyRequestID    = "requestId"
)

// 外部传入的 ID 只接受短的安全字符，否则重新生成
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID 沿用或生成请求 ID，回写到响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRequestID.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}

func RequestIDOf(c *gin.Context) string { return c.GetString(KeyRequestID) }
