package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"secret-nick/internal/domain"
	resp "secret-nick/internal/transport/http/response"
)

const (
	ParamUserCode = "userCode"
	KeyUserCode   = "userCode"
)

// UserCode 房间成员凭证取自 ?userCode=，缺失直接拒绝
func UserCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.TrimSpace(c.Query(ParamUserCode))
		if code == "" {
			resp.Abort(c, resp.Validation(
				domain.BadRequest(ParamUserCode, "userCode is required."),
			))
			return
		}
		c.Set(KeyUserCode, code)
		c.Next()
	}
}

// UserCodeOf 读取 UserCode 中间件写入的凭证
func UserCodeOf(c *gin.Context) domain.AuthCode {
	return domain.AuthCode(c.GetString(KeyUserCode))
}
