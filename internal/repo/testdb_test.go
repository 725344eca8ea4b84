package repo_test

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
)

var giftDate = time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC)

// newDB 每个测试独立的 sqlite 文件库
func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "rooms.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(room.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type stmtCounter struct {
	creates atomic.Int32
	updates atomic.Int32
}

// countStatements 统计经 gorm 回调执行的 INSERT / UPDATE 语句数
func countStatements(t *testing.T, db *gorm.DB) *stmtCounter {
	t.Helper()
	c := &stmtCounter{}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:count_create", func(*gorm.DB) { c.creates.Add(1) }))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:count_update", func(*gorm.DB) { c.updates.Add(1) }))
	return c
}

func (c *stmtCounter) reset() {
	c.creates.Store(0)
	c.updates.Store(0)
}

func member(code, name string, admin bool, wishes ...string) domain.UserConfig {
	return domain.UserConfig{
		AuthCode: domain.AuthCode(code),
		IsAdmin:  admin,
		UserProfile: domain.UserProfile{
			FirstName:    name,
			LastName:     "Test",
			Phone:        "+380000000000",
			DeliveryInfo: "Kyiv, 1",
			Wishes:       wishes,
		},
	}
}

func newRoom(t *testing.T, invitation string, users ...domain.UserConfig) *domain.Room {
	t.Helper()
	r, err := domain.NewRoom(domain.RoomConfig{
		InvitationCode:   invitation,
		Name:             "Room " + invitation,
		Description:      "winter party",
		MinUsersLimit:    3,
		GiftExchangeDate: giftDate,
		Users:            users,
	})
	require.NoError(t, err)
	return r
}
