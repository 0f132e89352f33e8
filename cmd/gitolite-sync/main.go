package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"gitolite-sync/internal/api/router"
	"gitolite-sync/internal/core"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/database"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/pkg/jwt"
	"gitolite-sync/internal/pkg/logger"
	"gitolite-sync/internal/pkg/storage"
	"gitolite-sync/internal/scheduler"
)

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
	token      = flag.String("token", "", "为指定调用方签发管理接口Token后退出")
)

const (
	appVersion = "1.0.0"
	appName    = "gitolite-sync"
)

// @title Gitolite Sync API
// @version 1.0
// @description gitolite 管理仓库同步服务 API 文档
// @description 提供用户、SSH 公钥、全局设置、推送回调和批量同步操作

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// 解析命令行参数
	flag.Parse()

	// 显示版本信息
	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定:")
			fmt.Println("     ./gitolite-sync -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./gitolite-sync")
			fmt.Println("  3. 使用默认配置:")
			fmt.Println("     ./gitolite-sync  (将使用 configs/config.yaml)")
			os.Exit(1)
		}
		cfg = c

		if *token != "" {
			signed, err := jwt.GenerateAccessToken(cfg.Auth.JWT, *token)
			if err != nil {
				fmt.Printf("签发Token失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(signed)
			os.Exit(0)
		}

		// 初始化日志
		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()
	logger.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver), zap.String("database", cfg.Database.Database))

	// 打开 gitolite 管理仓库
	store, err := gitolite.OpenGitStore(gitolite.GitStoreOptions{
		Dir:         cfg.Gitolite.AdminDir,
		Remote:      cfg.Gitolite.AdminRemote,
		SSHKeyFile:  cfg.Gitolite.SSHKeyFile,
		SSHUser:     cfg.Gitolite.SSHUser,
		AuthorName:  cfg.Gitolite.AuthorName,
		AuthorEmail: cfg.Gitolite.AuthorEmail,
	}, logger.Named("gitolite"))
	if err != nil {
		logger.Fatal("打开管理仓库失败", zap.Error(err))
	}

	// 初始化Core引擎
	mover := storage.NewFSMover(afero.NewOsFs(), logger.Named("storage"))
	coreEngine := core.NewCoreEngine(database.GetDB(), store, mover, cfg.Gitolite, logger.Log)
	logger.Info("Core引擎初始化成功", zap.Strings("operations", coreEngine.Dispatcher.Operations()))

	// 初始化并启动定时任务调度器
	taskScheduler := scheduler.NewScheduler(coreEngine, logger.Named("scheduler"))
	if err := taskScheduler.Start(cfg.Scheduler); err != nil {
		logger.Warn("定时任务调度器启动失败", zap.Error(err))
	}

	// 设置路由
	r := router.Setup(cfg, database.GetDB(), coreEngine, logger.Log)

	// 创建HTTP服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	taskScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	if *configFile != "" {
		return *configFile
	}
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
