package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// KeyCode 已写出的业务码（供访问日志 / 指标读取）
const KeyCode = "resp.code"

// Write 信封统一以 HTTP 200 写出
func Write(c *gin.Context, r Resp) {
	c.Set(KeyCode, r.Code)
	c.JSON(http.StatusOK, r)
}

// Abort 写出并中断后续处理
func Abort(c *gin.Context, r Resp) {
	c.Set(KeyCode, r.Code)
	c.AbortWithStatusJSON(http.StatusOK, r)
}

// CodeOf 返回已写出的业务码；非信封响应返回 false
func CodeOf(c *gin.Context) (int, bool) {
	v, ok := c.Get(KeyCode)
	if !ok {
		return 0, false
	}
	code, ok := v.(int)
	return code, ok
}
