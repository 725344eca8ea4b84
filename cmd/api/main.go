package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"secret-nick/internal/app"
	"secret-nick/internal/core/config"
	"secret-nick/internal/core/logger"
	"secret-nick/internal/core/server"
	"secret-nick/internal/service"
	"secret-nick/internal/transport/http/handler"
	"secret-nick/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := app.NewLogger(cfg.Log)
	defer cleanup()
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)

	// 数据库 + 可选 redis 缓存
	deps, closeDeps, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal("storage init failed", zap.Error(err))
	}
	defer closeDeps()

	// 读改写直连数据库，只读视图走缓存
	svc := service.NewRoomService(deps.Rooms, log.Named("room"), service.RoomDefaults{
		MinUsers: cfg.Room.DefaultMinUsers,
		MaxUsers: cfg.Room.DefaultMaxUsers,
	}, service.WithViews(deps.Repo))
	reg := router.NewRegistry(handler.NewRoomHandler(svc, log))

	// 路由（用户端）
	r := router.NewAPIEngine(log, app.Limits(cfg), reg)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	rt, wt, it := app.Timeouts(cfg.App.HTTP)
	srv := server.BuildServer(addr, r, rt, wt, it, log)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Shutdown(srv, log, 10*time.Second)
}
