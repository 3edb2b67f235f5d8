package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/api/handler"
	"rapor-paud/backend/internal/api/router"
	"rapor-paud/backend/internal/model"
	"rapor-paud/backend/internal/repository"
	"rapor-paud/backend/internal/service"
	"rapor-paud/backend/pkg/jwt"
	applogger "rapor-paud/backend/pkg/logger"
	"rapor-paud/backend/pkg/redis"
)

func main() {
	// 0. 读取 .env（可选）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("RAPOR_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("local_driver", cfg.Local.Driver),
		zap.String("write_policy", cfg.Sync.WritePolicy),
	)

	// 3. 本地持久化槽位
	var (
		rdb   *redis.Client
		local repository.LocalStore
	)
	switch cfg.Local.Driver {
	case "redis":
		rdb, err = redis.NewClient(&cfg.Local.Redis, logger)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		local = repository.NewRedisLocalStore(rdb)
	default:
		local, err = repository.OpenSQLiteLocalStore(cfg.Local.SQLitePath)
		if err != nil {
			logger.Fatal("打开本地存储失败", zap.Error(err), zap.String("path", cfg.Local.SQLitePath))
		}
	}

	// 4. 依赖注入: Repository → Service → Handler
	dial := repository.NewGormDialer(&cfg.Store, cfg.Log.Level, logger)
	repo := repository.NewRepository(local, cfg.Local.SnapshotKey, dial)
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// rdb 为 nil 时不能直接作为接口传入
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	svc, err := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}

	// 5. 加载数据（远端失败时回退到本地快照）
	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.Store.Timeout+5*time.Second)
	if err := svc.Sync.Start(startCtx); err != nil {
		cancelStart()
		logger.Fatal("加载数据失败", zap.Error(err))
	}
	cancelStart()

	svc.Sync.SetNotifier(func(f model.SyncFailure) {
		logger.Warn("远端写入失败",
			zap.String("collection", string(f.Collection)),
			zap.String("entity_id", f.EntityID.String()),
			zap.String("message", f.Message),
		)
	})

	status := svc.Sync.Status()
	logger.Info("数据加载完成", zap.Bool("online", status.IsOnline))

	// 6. 初始化路由
	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, svc.Auth, rdb, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Narrative.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待未完成的远端写入，然后断开远端连接
	if err := svc.Sync.Close(ctx); err != nil {
		logger.Error("同步核心关闭异常", zap.Error(err))
	}

	if err := local.Close(); err != nil {
		logger.Error("关闭本地存储失败", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
