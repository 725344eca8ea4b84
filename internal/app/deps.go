package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"secret-nick/internal/core/cache"
	"secret-nick/internal/core/config"
	"secret-nick/internal/core/database"
	"secret-nick/internal/core/logger"
	"secret-nick/internal/domain"
	"secret-nick/internal/feature/room"
	"secret-nick/internal/repo"
	"secret-nick/internal/transport/http/router"
)

// NewLogger 按 log 配置构建，启用文件时走 lumberjack 切割
func NewLogger(c config.Log) (*zap.Logger, func()) {
	opt := logger.Options{Level: c.Level, JSON: c.JSON}
	if f := c.File; f.Enable {
		opt.File = &logger.File{
			Path:       f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}
	}
	l, closer := logger.Build(opt)
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() { undo(); closer() }
}

// Deps 两个入口共用的存储依赖
type Deps struct {
	DB    *gorm.DB
	Rooms *repo.RoomRepo
	// Repo 对外使用的仓储：配置了 redis 时为带缓存的装饰器
	Repo  domain.RoomRepository
	Cache *cache.Cache
}

// 测试中替换
var migrate = database.AutoMigrate

// Open 连接数据库、可选 redis，并按配置自动迁移；失败时已打开的连接会被关闭
func Open(cfg *config.Config, l *zap.Logger) (*Deps, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		return nil, nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := migrate(db, room.Models()...); err != nil {
			if cerr := database.Close(db); cerr != nil {
				l.Warn("database close after failed migrate", zap.Error(cerr))
			}
			return nil, nil, err
		}
		l.Info("automigrate done")
	}

	d := &Deps{DB: db, Rooms: repo.NewRoomRepo(db)}
	d.Repo = d.Rooms
	cleanup := func() { _ = database.Close(db) }

	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			// 缓存不可用不影响服务，直接走数据库
			l.Warn("redis unavailable, room cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			d.Cache = c
			d.Repo = repo.NewCachedRoomRepo(d.Rooms, c, cfg.RoomCacheTTL(), l)
			dbClose := cleanup
			cleanup = func() { _ = c.Close(); dbClose() }
			l.Info("room cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.RoomCacheTTL()))
		}
	}
	return d, cleanup, nil
}

// Limits 配置 → 路由入口保护参数
func Limits(cfg *config.Config) router.Limits {
	return router.Limits{
		RPS:         cfg.Limits.RPS,
		Burst:       cfg.Limits.Burst,
		Concurrency: cfg.Limits.Concurrency,
		BodyBytes:   cfg.Limits.BodyBytes,
		Timeout:     cfg.RequestTimeout(),
	}
}

// Timeouts http.Server 读写/空闲超时
func Timeouts(h config.HTTP) (rt, wt, it time.Duration) {
	return time.Duration(h.ReadTimeoutSec) * time.Second,
		time.Duration(h.WriteTimeoutSec) * time.Second,
		time.Duration(h.IdleTimeoutSec) * time.Second
}

