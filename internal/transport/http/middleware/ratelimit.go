package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "secret-nick/internal/transport/http/response"
)

// 空闲超过该时长的 IP 桶被回收
const limiterIdle = 10 * time.Minute

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiters 按 IP 的令牌桶；每隔 idle 顺带清扫一次空闲桶
type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	buckets   map[string]*ipBucket
	lastSweep time.Time
}

func newIPLimiters(rps rate.Limit, burst int, idle time.Duration, now func() time.Time) *ipLimiters {
	return &ipLimiters{
		rps:       rps,
		burst:     burst,
		idle:      idle,
		now:       now,
		buckets:   make(map[string]*ipBucket),
		lastSweep: now(),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) >= l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.lim.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimitPerIP 每 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	return rateLimitPerIP(newIPLimiters(rps, burst, limiterIdle, time.Now))
}

func rateLimitPerIP(l *ipLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.allow(c.ClientIP()) {
			c.Next()
			return
		}
		resp.Abort(c, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}
