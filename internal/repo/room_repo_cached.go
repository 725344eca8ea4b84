package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"secret-nick/internal/core/cache"
	"secret-nick/internal/domain"
)

// CachedRoomRepo 在 RoomRepo 之上缓存房间快照（按房间 ID），只服务读视图。
// 凭证 / 邀请码到房间 ID 的解析仍走数据库；写入提交后抬高版本 fence 并删键，
// 版本低于 fence 的快照不会被写回。
type CachedRoomRepo struct {
	inner *RoomRepo
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedRoomRepo(inner *RoomRepo, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedRoomRepo {
	return &CachedRoomRepo{inner: inner, cache: c, ttl: ttl, log: l}
}

var _ domain.RoomRepository = (*CachedRoomRepo)(nil)

func (r *CachedRoomRepo) entry(id domain.RoomID) cache.Entry {
	return cache.Entry{
		Key:   r.cache.Key("room", id.String()),
		Fence: r.cache.Key("room", id.String(), "fence"),
	}
}

func (r *CachedRoomRepo) Create(ctx context.Context, rm *domain.Room) (domain.RoomID, error) {
	return r.inner.Create(ctx, rm)
}

func (r *CachedRoomRepo) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	cfg, err := cache.GetOrLoadJSON(ctx, r.cache, r.entry(id), r.ttl, func(ctx context.Context) (*domain.RoomConfig, uint64, error) {
		rm, err := r.inner.FindByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		s := rm.Snapshot()
		return &s, uint64(s.Version), nil
	})
	if err != nil {
		return nil, err
	}
	return domain.NewRoom(*cfg)
}

func (r *CachedRoomRepo) FindByUserCode(ctx context.Context, code domain.AuthCode) (*domain.Room, error) {
	id, err := r.inner.RoomIDByUserCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *CachedRoomRepo) FindByUserID(ctx context.Context, uid domain.UserID) (*domain.Room, error) {
	id, err := r.inner.RoomIDByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *CachedRoomRepo) FindByInvitationCode(ctx context.Context, code string) (*domain.Room, error) {
	id, err := r.inner.RoomIDByInvitationCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *CachedRoomRepo) Update(ctx context.Context, rm *domain.Room) error {
	err := r.inner.Update(ctx, rm)
	// 成功时库中版本为 Version()+1；冲突时库中版本至少如此，同样失效
	committed := uint64(rm.Version()) + 1
	if derr := r.cache.Invalidate(ctx, r.entry(rm.ID()), committed, r.ttl); derr != nil {
		r.log.Warn("room cache invalidate failed", zap.Uint64("room_id", uint64(rm.ID())), zap.Error(derr))
	}
	return err
}
