package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	resp "secret-nick/internal/transport/http/response"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by entry, route and envelope code",
		},
		[]string{"entry", "route", "method", "code"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP latency by entry and route",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"entry", "route", "method"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency) }

// 未匹配路由统一归一，避免原始路径撑爆标签
const unmatchedRoute = "unmatched"

// Metrics entry 区分成员侧 api 与运营侧 admin；code 取信封业务码，
// 非信封响应（/health 等）退回 HTTP 状态码
func Metrics(entry string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		code, ok := resp.CodeOf(c)
		if !ok {
			code = c.Writer.Status()
		}
		httpReqTotal.WithLabelValues(entry, route, c.Request.Method, strconv.Itoa(code)).Inc()
		httpLatency.WithLabelValues(entry, route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
