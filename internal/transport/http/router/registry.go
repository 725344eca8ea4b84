package router

import (
	"cmp"
	"slices"

	"github.com/gin-gonic/gin"
)

// APIModule 挂到成员侧 /api/v1
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// AdminModule 挂到运营侧 /admin/v1（已过 JWT 校验）
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 数值越小越先挂载，未实现按 defaultPriority
type prioritizer interface{ Priority() int }

const defaultPriority = 100

// Registry 每个进程入口各自组装的模块清单
type Registry struct {
	api   []APIModule
	admin []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Add(m)
	}
	return r
}

// Add 按实现的接口分别登记；两个都实现则两边都挂
func (r *Registry) Add(mod any) {
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

func (r *Registry) mountAPI(g *gin.RouterGroup) {
	if r == nil {
		return
	}
	for _, m := range byPriority(r.api) {
		m.MountAPI(g)
	}
}

func (r *Registry) mountAdmin(g *gin.RouterGroup) {
	if r == nil {
		return
	}
	for _, m := range byPriority(r.admin) {
		m.MountAdmin(g)
	}
}

func byPriority[M any](mods []M) []M {
	out := slices.Clone(mods)
	slices.SortStableFunc(out, func(a, b M) int { return cmp.Compare(priorityOf(a), priorityOf(b)) })
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return defaultPriority
}
