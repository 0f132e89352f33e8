package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitolite-sync/internal/model"
	"gitolite-sync/internal/repository"
)

// AutoFixer 为缺少派生配置的托管代码库生成默认配置
type AutoFixer struct {
	projects repository.ProjectRepository
	repos    repository.RepositoryRepository
	settings repository.SettingRepository
	logger   *zap.Logger
}

func NewAutoFixer(projects repository.ProjectRepository, repos repository.RepositoryRepository, settings repository.SettingRepository, logger *zap.Logger) *AutoFixer {
	return &AutoFixer{projects: projects, repos: repos, settings: settings, logger: logger}
}

// Run 返回修复的数量; 已有配置的代码库不会被修改
func (f *AutoFixer) Run(ctx context.Context) (int, error) {
	log := f.logger.Sugar()

	values, err := f.settings.Get(model.PluginSettingName)
	if err != nil {
		return 0, err
	}
	defaults := values.ExtraDefaults()

	projects, err := f.projects.ListWithManagedRepository(true)
	if err != nil {
		return 0, err
	}
	log.Infof("[AutoFix] analyzing %d project(s) with git repositories", len(projects))

	fixed := 0
	var errs []error
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}
		if p.Repository.IsConfigured() {
			continue
		}

		log.Infof("[AutoFix] project %s not configured properly, generating configuration", p.Name)
		extra := model.NewExtraForExistingRepo(p.Repository.ID, defaults)
		if err := f.repos.CreateExtra(extra); err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", p.Identifier, err))
			continue
		}
		p.Repository.Extra = extra
		fixed++
	}

	log.Infof("[AutoFix] finished, %d project(s) fixed", fixed)
	return fixed, errors.Join(errs...)
}
