package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 以 JSON 缓存带版本的值；load 出错时不写缓存
func GetOrLoadJSON[T any](
	ctx context.Context,
	c *Cache,
	e Entry,
	ttl time.Duration,
	load func(ctx context.Context) (*T, uint64, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, e, ttl, func(ctx context.Context) ([]byte, uint64, error) {
		v, version, err := load(ctx)
		if err != nil {
			return nil, 0, err
		}
		raw, err := json.Marshal(v)
		return raw, version, err
	})
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}
