package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secret-nick/internal/core/auth"
	mdw "secret-nick/internal/transport/http/middleware"
)

// LoginMounter 登录接口挂在 JWT 校验之前
type LoginMounter interface{ MountLogin(*gin.RouterGroup) }

// NewAdminEngine 运营侧入口：登录公开，其余要求 admin 角色
func NewAdminEngine(l *zap.Logger, lim Limits, jwter *auth.JWTer, login LoginMounter, reg *Registry) *gin.Engine {
	r := newEngine(l, lim, EntryAdmin)

	base := r.Group("/admin/v1")
	if login != nil {
		login.MountLogin(base)
	}

	admin := base.Group("")
	admin.Use(mdw.AuthJWT(jwter, "admin"))
	reg.mountAdmin(admin)

	return r
}
