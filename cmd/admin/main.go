package main

import (
	"flag"
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
	"secret-nick/internal/core/auth"
	"secret-nick/internal/core/config"
	"secret-nick/internal/core/logger"
	"secret-nick/internal/core/server"
	"secret-nick/internal/transport/http/handler"
	"secret-nick/internal/transport/http/router"
	"secret-nick/pkg/utils"
)

func main() {
	hashPw := flag.String("hash-password", "", "打印 bcrypt 哈希（用于 operator.passwordHash）后退出")
	flag.Parse()
	if *hashPw != "" {
		h, err := utils.HashPassword(*hashPw)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

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

	deps, closeDeps, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal("storage init failed", zap.Error(err))
	}
	defer closeDeps()

	jwter, err := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTokenTTL())
	if err != nil {
		log.Fatal("jwt init failed", zap.Error(err))
	}
	if cfg.Operator.Username == "" || cfg.Operator.PasswordHash == "" {
		log.Warn("operator account not configured, admin login disabled")
	}

	adminH := handler.NewAdminHandler(deps.Repo, deps.Rooms, jwter, handler.Operator{
		Username:     cfg.Operator.Username,
		PasswordHash: cfg.Operator.PasswordHash,
	}, log.Named("admin"))
	r := router.NewAdminEngine(log, app.Limits(cfg), jwter, adminH, router.NewRegistry(adminH))

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	rt, wt, it := app.Timeouts(cfg.App.HTTP)
	srv := server.BuildServer(addr, r, rt, wt, it, log)
	log.Info("admin api starting", zap.String("addr", addr), zap.String("admin_v1", "http://"+addr+"/admin/v1"))

	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Shutdown(srv, log, 10*time.Second)
}
