package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache redis 读穿缓存，回源经 singleflight 合并
type Cache struct {
	RDB    *redis.Client
	prefix string
	sf     singleflight.Group
}

func New(addr, pass string, db int, prefix string) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), prefix)
}

func NewWithClient(rdb *redis.Client, prefix string) *Cache {
	return &Cache{RDB: rdb, prefix: prefix}
}

// Key 拼接带前缀的缓存键，如 "secret-nick:room:42"
func (c *Cache) Key(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// Entry 一条带版本的缓存：Fence 记录最近一次提交的版本号
type Entry struct {
	Key   string
	Fence string
}

// 快照版本低于 fence 时拒绝写入，避免回源期间发生的写入被旧数据覆盖
var setUnlessStale = redis.NewScript(`
local f = redis.call('GET', KEYS[2])
if f and tonumber(f) > tonumber(ARGV[2]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// fence 只增不减，同时删除数据键
var raiseFence = redis.NewScript(`
local f = redis.call('GET', KEYS[2])
if (not f) or tonumber(f) < tonumber(ARGV[1]) then
  redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
end
redis.call('DEL', KEYS[1])
return 1
`)

// fence 比数据键活得久，覆盖一次回源的最长耗时
func fenceTTL(ttl time.Duration) time.Duration {
	return max(2*ttl, time.Minute)
}

// Invalidate 写入提交后调用：抬高 fence 到 version 并删除数据键
func (c *Cache) Invalidate(ctx context.Context, e Entry, version uint64, ttl time.Duration) error {
	return raiseFence.Run(ctx, c.RDB, []string{e.Key, e.Fence}, version, fenceTTL(ttl).Milliseconds()).Err()
}

// GetOrLoad 命中直接返回；未命中回源，按 load 返回的版本有条件写回
func (c *Cache) GetOrLoad(ctx context.Context, e Entry, ttl time.Duration, load func(context.Context) ([]byte, uint64, error)) ([]byte, error) {
	// redis 不可用时视为未命中
	if b, err := c.RDB.Get(ctx, e.Key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(e.Key, func() (any, error) {
		b, version, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = setUnlessStale.Run(ctx, c.RDB, []string{e.Key, e.Fence}, b, version, ttl.Milliseconds()).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
