package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitolite-sync/internal/api/handler"
	"gitolite-sync/internal/api/middleware"
	"gitolite-sync/internal/core"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/service"
)

// Setup 设置路由
func Setup(cfg *config.Config, db *gorm.DB, coreEngine *core.CoreEngine, logger *zap.Logger) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(logger.Named("http")))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化Service
	userService := service.NewUserService(db, coreEngine, logger.Named("user"))
	keyService := service.NewKeyService(db, coreEngine)
	settingService := service.NewSettingService(db, coreEngine.Validator, coreEngine, logger.Named("setting"))
	postReceiveURLService := service.NewPostReceiveURLService(db)

	// 初始化Handler
	userHandler := handler.NewUserHandler(userService)
	keyHandler := handler.NewKeyHandler(keyService)
	settingHandler := handler.NewSettingHandler(settingService)
	postReceiveURLHandler := handler.NewPostReceiveURLHandler(postReceiveURLService)
	adminHandler := handler.NewAdminHandler(coreEngine)

	// API v1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Auth.JWT))
	{
		// 用户
		groupUsers := v1.Group("/users")
		{
			groupUsers.POST("", userHandler.Create)
			groupUsers.GET("/:id", userHandler.Get)
			groupUsers.PUT("/:id", userHandler.Update)
			groupUsers.DELETE("/:id", userHandler.Delete)

			// 公钥
			groupUsers.GET("/:id/keys", keyHandler.List)
			groupUsers.POST("/:id/keys", keyHandler.Create)
			groupUsers.DELETE("/:id/keys/:key_id", keyHandler.Delete)
		}

		// 全局设置
		v1.GET("/settings", settingHandler.Get)
		v1.PUT("/settings", settingHandler.Save)

		// 推送回调
		groupURLs := v1.Group("/projects/:project_id/repository/post_receive_urls")
		{
			groupURLs.GET("", postReceiveURLHandler.List)
			groupURLs.POST("", postReceiveURLHandler.Create)
			groupURLs.GET("/:id", postReceiveURLHandler.Show)
			groupURLs.PUT("/:id", postReceiveURLHandler.Update)
			groupURLs.PUT("/:id/toggle", postReceiveURLHandler.Toggle)
			groupURLs.DELETE("/:id", postReceiveURLHandler.Delete)
		}

		// 批量操作
		v1.POST("/admin/dispatch", adminHandler.Dispatch)
	}

	return r
}
