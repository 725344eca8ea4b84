package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"secret-nick/internal/core/server"
	mdw "secret-nick/internal/transport/http/middleware"
)

// Limits 入口保护参数
type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	BodyBytes   int64
	Timeout     time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.BodyBytes <= 0 {
		l.BodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

// 入口名，用作指标标签
const (
	EntryAPI   = "api"
	EntryAdmin = "admin"
)

// newEngine 两个入口共用的中间件链 + /health + /metrics
func newEngine(l *zap.Logger, lim Limits, entry string) *gin.Engine {
	lim = lim.withDefaults()
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.BodyBytes),
		mdw.Timeout(lim.Timeout, l),
		mdw.Metrics(entry),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
