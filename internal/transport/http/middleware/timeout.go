package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "secret-nick/internal/transport/http/response"
)

// Timeout 为请求上下文设置截止时间；处理器超时且尚未写出时补一个 504 信封
func Timeout(d time.Duration, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		l.Warn("request deadline exceeded",
			zap.String("rid", RequestIDOf(c)),
			zap.String("route", c.FullPath()),
			zap.Duration("limit", d),
			zap.Bool("written", c.Writer.Written()),
		)
		if !c.Writer.Written() {
			resp.Abort(c, resp.Error(resp.CodeTimeout, ""))
		}
	}
}
