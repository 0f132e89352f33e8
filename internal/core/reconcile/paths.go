// Package reconcile 修正托管代码库的存储位置和派生配置
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"gitolite-sync/internal/core/placement"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/storage"
	"gitolite-sync/internal/repository"
)

// Report 一次路径修正的统计
type Report struct {
	Checked int `json:"checked"`
	Moved   int `json:"moved"`
	Failed  int `json:"failed"`
}

// PathReconciler 把托管代码库移动到当前规则计算出的路径
type PathReconciler struct {
	projects repository.ProjectRepository
	repos    repository.RepositoryRepository
	settings repository.SettingRepository
	cfg      config.GitoliteConfig
	mover    storage.Mover
	logger   *zap.Logger
}

func NewPathReconciler(
	projects repository.ProjectRepository,
	repos repository.RepositoryRepository,
	settings repository.SettingRepository,
	cfg config.GitoliteConfig,
	mover storage.Mover,
	logger *zap.Logger,
) *PathReconciler {
	return &PathReconciler{
		projects: projects,
		repos:    repos,
		settings: settings,
		cfg:      cfg,
		mover:    mover,
		logger:   logger,
	}
}

// Run 逐个处理全部托管代码库; 单个失败只记录并继续
func (r *PathReconciler) Run(ctx context.Context) (Report, error) {
	var report Report
	log := r.logger.Sugar()

	values, err := r.settings.Get(model.PluginSettingName)
	if err != nil {
		return report, err
	}
	policy := placement.NewPolicy(values, r.cfg)

	projects, err := r.projects.ListWithManagedRepository(false)
	if err != nil {
		return report, err
	}
	log.Infof("[Reconcile] making sure %d repositories are in proper place", len(projects))

	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		chain, err := r.projects.IdentifierChain(p)
		if err != nil {
			log.Errorf("[Reconcile] project %s: %v", p.Identifier, err)
			report.Failed++
			continue
		}

		oldPath := placement.URLPath(p.Repository.URL)
		newPath := policy.ManagedPath(chain)
		if oldPath == newPath {
			continue
		}

		oldName := placement.RelativeName(policy.StorageRoot, oldPath)
		newName := placement.RelativeName(policy.StorageRoot, newPath)
		log.Warnf("[Reconcile] repository '%s' in wrong location, moving to '%s'", oldName, newName)
		log.Debugf("[Reconcile] on filesystem '%s' -> '%s'", oldPath, newPath)

		if err := r.mover.Move(oldPath, newPath); err != nil {
			log.Errorf("[Reconcile] move '%s' failed, record left unchanged: %v", oldName, err)
			report.Failed++
			continue
		}
		if err := r.repos.UpdatePaths(p.Repository.ID, newPath); err != nil {
			log.Errorf("[Reconcile] repository '%s' moved to '%s' but the record was not updated: %v", oldName, newPath, err)
			report.Failed++
			continue
		}
		report.Moved++
	}

	log.Infof("[Reconcile] done, checked=%d moved=%d failed=%d", report.Checked, report.Moved, report.Failed)
	return report, nil
}
