package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAPIEngine 成员侧入口，reg 中的 APIModule 挂到 /api/v1
func NewAPIEngine(l *zap.Logger, lim Limits, reg *Registry) *gin.Engine {
	r := newEngine(l, lim, EntryAPI)
	reg.mountAPI(r.Group("/api/v1"))
	return r
}
