package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"secret-nick/internal/domain"
	resp "secret-nick/internal/transport/http/response"
)

// 由处理器写入，访问日志据此关联房间与成员
const (
	KeyRoomID   = "roomId"
	KeyMemberID = "memberId"
)

// Annotate 记录本次请求涉及的房间与调用者
func Annotate(c *gin.Context, room domain.RoomID, member domain.UserID) {
	c.Set(KeyRoomID, uint64(room))
	c.Set(KeyMemberID, uint64(member))
}

// query 中按 key（不区分大小写）打码
var maskedParams = map[string]struct{}{
	"usercode": {},
	"token":    {},
	"password": {},
}

func maskQuery(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		if _, ok := maskedParams[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// AccessLog 每请求一行；业务码 >= 500 记为 error
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("rid", RequestIDOf(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Any("query", map[string][]string(maskQuery(c.Request.URL.Query()))),
			zap.Int("size", c.Writer.Size()),
		}
		level := zapcore.InfoLevel
		if code, ok := resp.CodeOf(c); ok {
			fields = append(fields, zap.Int("code", code))
			if code >= resp.CodeServerError {
				level = zapcore.ErrorLevel
			}
		}
		if v, ok := c.Get(KeyRoomID); ok {
			fields = append(fields, zap.Any("room_id", v))
		}
		if v, ok := c.Get(KeyMemberID); ok {
			fields = append(fields, zap.Any("member_id", v))
		}
		if ce := l.Check(level, "http"); ce != nil {
			ce.Write(fields...)
		}
	}
}
