// Package router 负责路由注册和依赖装配
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"filesafe/config"
	"filesafe/internal/handler"
	"filesafe/internal/middleware"
	"filesafe/internal/repository"
	"filesafe/internal/security"
	fileservice "filesafe/internal/service/file"
	userservice "filesafe/internal/service/user"
	"filesafe/internal/storage"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
}

// NewRouter 创建路由实例并装配全部依赖
func NewRouter(loggerMiddleware *middleware.LoggerMiddleware, db *gorm.DB, cfg *config.Config) (*Router, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 初始化安全组件
	hasher := security.NewPasswordHasher()
	tokens, err := security.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.Algorithm)
	if err != nil {
		return nil, err
	}

	// 初始化存储网关
	gateway, err := storage.NewGateway(cfg.File.StoragePath)
	if err != nil {
		return nil, err
	}

	// 初始化仓库
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// 初始化服务
	tokenTTL := time.Duration(cfg.Auth.TokenExpireMinutes) * time.Minute
	userService := userservice.NewUserService(userRepo, hasher, tokens, tokenTTL)
	fileService := fileservice.NewFileService(fileRepo, gateway, cfg.File)

	// 初始化处理器和认证中间件
	userHandler := handler.NewUserHandler(userService)
	fileHandler := handler.NewFileHandler(fileService)
	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware.RequestLogger())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	// API路由组
	api := engine.Group("/api/v1")
	{
		// 基础信息接口
		api.GET("/info", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"service": "FileSafe",
				"version": "1.0.0",
				"status":  "running",
			})
		})

		// 数据库状态检查
		api.GET("/db/status", func(c *gin.Context) {
			sqlDB, err := db.DB()
			if err != nil {
				c.JSON(500, gin.H{
					"error": "Database connection error",
				})
				return
			}

			if err := sqlDB.Ping(); err != nil {
				c.JSON(500, gin.H{
					"error": "Database ping failed",
				})
				return
			}

			c.JSON(200, gin.H{
				"status": "Database connection OK",
			})
		})

		// 用户接口
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		// 文件接口
		files := api.Group("/files")
		{
			// 需要认证的操作
			files.POST("/upload", authMiddleware.RequireAuth(), fileHandler.UploadFile)
			files.GET("", authMiddleware.RequireAuth(), fileHandler.ListMyFiles)
			files.DELETE("/:id", authMiddleware.RequireAuth(), fileHandler.DeleteFile)

			// 公开操作：唯一标识本身即访问凭证
			files.GET("/:id", fileHandler.ViewFile)
			files.GET("/:id/download", fileHandler.DownloadFile)
		}
	}

	return &Router{
		engine: engine,
		db:     db,
	}, nil
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetDB 获取数据库连接
func (r *Router) GetDB() *gorm.DB {
	return r.db
}
