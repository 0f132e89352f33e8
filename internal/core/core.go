package core

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitolite-sync/internal/core/dispatch"
	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/core/keysync"
	"gitolite-sync/internal/core/lifecycle"
	"gitolite-sync/internal/core/projectconf"
	"gitolite-sync/internal/core/reconcile"
	"gitolite-sync/internal/core/settings"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/pkg/storage"
	"gitolite-sync/internal/repository"
)

// CoreEngine gitolite 同步核心, 组装各组件并注册批量操作和事件订阅
type CoreEngine struct {
	Bus         *events.Bus
	Dispatcher  *dispatch.Dispatcher
	Keys        *keysync.Synchronizer
	Writer      *projectconf.Writer
	Reconciler  *reconcile.PathReconciler
	Fixer       *reconcile.AutoFixer
	Coordinator *settings.Coordinator
	Validator   settings.Validator

	logger *zap.Logger
}

// NewCoreEngine 创建核心引擎
func NewCoreEngine(db *gorm.DB, store gitolite.Store, mover storage.Mover, cfg config.GitoliteConfig, logger *zap.Logger) *CoreEngine {
	userRepo := repository.NewUserRepository(db)
	keyRepo := repository.NewPublicKeyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	repoRepo := repository.NewRepositoryRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	e := &CoreEngine{
		Bus:        events.NewBus(),
		Dispatcher: dispatch.NewDispatcher(logger.Named("dispatch")),
		Keys:       keysync.NewSynchronizer(store, userRepo, logger.Named("keysync")),
		Writer:     projectconf.NewWriter(store, projectRepo, settingRepo, cfg, logger.Named("projectconf")),
		Reconciler: reconcile.NewPathReconciler(projectRepo, repoRepo, settingRepo, cfg, mover, logger.Named("reconcile")),
		Fixer:      reconcile.NewAutoFixer(projectRepo, repoRepo, settingRepo, logger.Named("autofix")),
		Validator:  settings.Validator{MailFrom: cfg.MailFrom},
		logger:     logger,
	}
	e.Coordinator = settings.NewCoordinator(
		e.Reconciler,
		e.Fixer,
		e.Dispatcher,
		settings.RepoCounter{Projects: projectRepo, Keys: keyRepo},
		logger.Named("settings"),
	)

	e.registerOperations()

	lifecycle.NewUserHook(e.Dispatcher, e.Keys, projectRepo, keyRepo, logger.Named("lifecycle")).Register(e.Bus)
	lifecycle.NewKeyHook(e.Dispatcher, logger.Named("lifecycle")).Register(e.Bus)
	e.Bus.Subscribe(events.SettingsCommitted{}.Name(), events.HandlerFunc(func(ctx context.Context, ev events.Event) error {
		committed := ev.(events.SettingsCommitted)
		return e.Coordinator.AfterCommit(ctx, committed.SettingName, committed.Triggers)
	}))

	return e
}

// Dispatch 执行批量操作
func (e *CoreEngine) Dispatch(ctx context.Context, op string, arg any) error {
	return e.Dispatcher.Dispatch(ctx, op, arg)
}

// Publish 发布领域事件
func (e *CoreEngine) Publish(ctx context.Context, ev events.Event) error {
	return e.Bus.Publish(ctx, ev)
}
