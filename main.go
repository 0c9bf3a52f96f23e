// @title FileSafe API
// @version 1.0
// @description 带认证的文件存储服务
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	"filesafe/config"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/middleware"
	"filesafe/internal/router"
	checkerservice "filesafe/internal/service/checker"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化中间件
	loggerMiddleware := middleware.NewLoggerMiddleware()

	// 初始化路由
	r, err := router.NewRouter(loggerMiddleware, db, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize router: %v", err)
	}

	// 启动一致性检查服务
	checkerCtx, cancelChecker := context.WithCancel(context.Background())
	defer cancelChecker()
	var checker checkerservice.ConsistencyChecker
	if cfg.File.CheckInterval > 0 {
		checker = checkerservice.NewConsistencyChecker(
			db, cfg.File.StoragePath, time.Duration(cfg.File.CheckInterval)*time.Second)
		if err := checker.Start(checkerCtx); err != nil {
			logger.Errorf("Failed to start consistency checker: %v", err)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      r.GetEngine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	if cfg.Server.EnableHTTPS {
		srv.TLSConfig = &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		}
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				logger.Fatalf("配置HTTP/2失败: %v", err)
			}
		}
	}

	// 启动服务器
	go func() {
		var err error
		if cfg.Server.EnableHTTPS {
			logger.Infof("HTTPS服务器启动在端口 %d (HTTP/2: %v)", cfg.Server.Port, cfg.Server.EnableHTTP2)
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			logger.Infof("HTTP服务器启动在端口 %d", cfg.Server.Port)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	// 停止一致性检查服务
	cancelChecker()
	if checker != nil {
		if err := checker.Stop(); err != nil {
			logger.Errorf("Error stopping consistency checker: %v", err)
		}
	}

	// 优雅关闭服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("服务器强制关闭: %v", err)
	}

	logger.Info("服务器已退出")
}
