package settings

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitolite-sync/internal/core/reconcile"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
)

// PathReconciler 仓库路径修正
type PathReconciler interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

// ProjectFixer 补全缺失的派生配置
type ProjectFixer interface {
	Run(ctx context.Context) (int, error)
}

// Dispatcher 批量操作入口
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, arg any) error
}

// Counter 统计激活项目与公钥数量, 作为批量操作参数
type Counter interface {
	CountActiveProjects() (int64, error)
	CountKeys() (int64, error)
}

// RepoCounter 基于数据库的 Counter
type RepoCounter struct {
	Projects repository.ProjectRepository
	Keys     repository.PublicKeyRepository
}

func (c RepoCounter) CountActiveProjects() (int64, error) {
	return c.Projects.CountActive()
}

func (c RepoCounter) CountKeys() (int64, error) {
	return c.Keys.Count()
}

// Coordinator 设置提交后按顺序执行被触发的操作
type Coordinator struct {
	reconciler PathReconciler
	fixer      ProjectFixer
	dispatcher Dispatcher
	counter    Counter
	logger     *zap.Logger
}

func NewCoordinator(reconciler PathReconciler, fixer ProjectFixer, dispatcher Dispatcher, counter Counter, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		reconciler: reconciler,
		fixer:      fixer,
		dispatcher: dispatcher,
		counter:    counter,
		logger:     logger,
	}
}

// AfterCommit 只处理 plugin_gitolite; 每个操作最多执行一次, 失败只记录, 不影响后续操作
func (c *Coordinator) AfterCommit(ctx context.Context, name string, t Triggers) error {
	if name != model.PluginSettingName || !t.Any() {
		return nil
	}

	hooks := []struct {
		name string
		on   bool
		run  func(context.Context) error
	}{
		{"resync_projects", t.ResyncProjects, c.resyncProjects},
		{"configure_projects", t.ConfigureProjects, c.configureProjects},
		{"resync_ssh_keys", t.ResyncSSHKeys, c.resyncSSHKeys},
	}

	var errs []error
	for _, h := range hooks {
		if !h.on {
			continue
		}
		if err := h.run(ctx); err != nil {
			c.logger.Error("Settings hook failed", zap.String("hook", h.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) resyncProjects(ctx context.Context) error {
	log := c.logger.Sugar()

	report, err := c.reconciler.Run(ctx)
	if err != nil {
		return err
	}
	log.Infof("[Settings] repository paths checked=%d moved=%d failed=%d", report.Checked, report.Moved, report.Failed)

	n, err := c.counter.CountActiveProjects()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	log.Infof("[Settings] forced resync of all projects (%d)", n)
	return c.dispatcher.Dispatch(ctx, constants.OpUpdateAllProjects, int(n))
}

func (c *Coordinator) configureProjects(ctx context.Context) error {
	fixed, err := c.fixer.Run(ctx)
	c.logger.Sugar().Infof("[Settings] configured %d project(s) without settings", fixed)
	return err
}

func (c *Coordinator) resyncSSHKeys(ctx context.Context) error {
	n, err := c.counter.CountKeys()
	if err != nil {
		return err
	}
	return c.dispatcher.Dispatch(ctx, constants.OpUpdateAllSSHKeysForced, int(n))
}
