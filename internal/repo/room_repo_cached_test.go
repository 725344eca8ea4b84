package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"secret-nick/internal/core/cache"
	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
	"secret-nick/internal/repo"
)

type cachedFixture struct {
	db     *gorm.DB
	mr     *miniredis.Miniredis
	inner  *repo.RoomRepo
	cached *repo.CachedRoomRepo
}

func newCachedFixture(t *testing.T) cachedFixture {
	t.Helper()
	db := newDB(t)
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "t")
	t.Cleanup(func() { _ = c.Close() })
	inner := repo.NewRoomRepo(db)
	return cachedFixture{db: db, mr: mr, inner: inner, cached: repo.NewCachedRoomRepo(inner, c, time.Minute, zap.NewNop())}
}

func roomKey(id domain.RoomID) string { return fmt.Sprintf("t:room:%d", id) }

// 绕过仓储直接改库，用来区分命中与回源
func renameBehindCache(t *testing.T, db *gorm.DB, id domain.RoomID, name string) {
	t.Helper()
	require.NoError(t, db.Model(&room.RoomModel{}).Where("id = ?", uint64(id)).Update("name", name).Error)
}

func TestCachedRoomRepo_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	f := newCachedFixture(t)
	id, err := f.cached.Create(ctx, newRoom(t, "INV1", member("code-a", "Ann", true, "book")))
	require.NoError(t, err)

	first, err := f.cached.FindByUserCode(ctx, "code-a")
	require.NoError(t, err)
	assert.True(t, f.mr.Exists(roomKey(id)))
	renameBehindCache(t, f.db, id, "Renamed")

	second, err := f.cached.FindByInvitationCode(ctx, "INV1")
	require.NoError(t, err)
	assert.Equal(t, first.Name(), second.Name())
	assert.Equal(t, "Room INV1", second.Name())
	ann, _ := second.UserByCode("code-a")
	assert.Equal(t, []string{"book"}, ann.Profile.Wishes)
}

func TestCachedRoomRepo_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newCachedFixture(t)
	id, err := f.cached.Create(ctx, newRoom(t, "INV1", member("code-a", "Ann", true)))
	require.NoError(t, err)
	_, err = f.cached.FindByID(ctx, id)
	require.NoError(t, err)

	rm, err := f.inner.FindByID(ctx, id)
	require.NoError(t, err)
	_, err = rm.AddUser(member("code-b", "Bob", false))
	require.NoError(t, err)
	require.NoError(t, f.cached.Update(ctx, rm))

	assert.False(t, f.mr.Exists(roomKey(id)))
	fence, err := f.mr.Get(roomKey(id) + ":fence")
	require.NoError(t, err)
	assert.Equal(t, "1", fence)

	got, err := f.cached.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UserCount())
	assert.Equal(t, uint(1), got.Version())
	// 与 fence 同版本的快照重新入缓存
	assert.True(t, f.mr.Exists(roomKey(id)))
}

func TestCachedRoomRepo_ConflictStillInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newCachedFixture(t)
	id, err := f.cached.Create(ctx, newRoom(t, "INV1", member("code-a", "Ann", true)))
	require.NoError(t, err)

	stale, err := f.inner.FindByID(ctx, id)
	require.NoError(t, err)
	fresh, err := f.inner.FindByID(ctx, id)
	require.NoError(t, err)
	_, err = fresh.AddUser(member("code-b", "Bob", false))
	require.NoError(t, err)
	require.NoError(t, f.inner.Update(ctx, fresh))

	// 缓存里仍是更新前的快照
	require.NoError(t, f.mr.Set(roomKey(id), `{"id":1}`))
	_, err = stale.AddUser(member("code-c", "Cat", false))
	require.NoError(t, err)

	assert.ErrorIs(t, f.cached.Update(ctx, stale), domain.ErrVersionConflict)
	assert.False(t, f.mr.Exists(roomKey(id)))
	got, err := f.cached.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UserCount())
}

// 写入已抬高 fence 时，读到旧版本的回源结果不落缓存
func TestCachedRoomRepo_StaleLoadNotCached(t *testing.T) {
	ctx := context.Background()
	f := newCachedFixture(t)
	id, err := f.cached.Create(ctx, newRoom(t, "INV1", member("code-a", "Ann", true)))
	require.NoError(t, err)
	// 模拟一个已提交到版本 5 的并发写入
	require.NoError(t, f.mr.Set(roomKey(id)+":fence", "5"))

	got, err := f.cached.FindByID(ctx, id)
	require.NoError(t, err)

	assert.Zero(t, got.Version())
	assert.False(t, f.mr.Exists(roomKey(id)))
}

func TestCachedRoomRepo_MissingRoomNotCached(t *testing.T) {
	ctx := context.Background()
	f := newCachedFixture(t)

	_, err := f.cached.FindByID(ctx, 42)

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.False(t, f.mr.Exists(roomKey(42)))
}
