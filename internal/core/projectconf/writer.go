// Package projectconf 生成每个托管项目的 gitolite 访问规则
package projectconf

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"gitolite-sync/internal/core/placement"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/config"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	pkgErrors "gitolite-sync/pkg/errors"
)

// Writer 把项目成员权限写入管理仓库
type Writer struct {
	store    gitolite.Store
	projects repository.ProjectRepository
	settings repository.SettingRepository
	cfg      config.GitoliteConfig
	logger   *zap.Logger
}

func NewWriter(store gitolite.Store, projects repository.ProjectRepository, settings repository.SettingRepository, cfg config.GitoliteConfig, logger *zap.Logger) *Writer {
	return &Writer{store: store, projects: projects, settings: settings, cfg: cfg, logger: logger}
}

// Build 项目的访问规则; 只有激活用户出现在规则中
func Build(name string, members []model.Member) gitolite.RepoConf {
	active := lo.Filter(members, func(m model.Member, _ int) bool {
		return m.User != nil && m.User.IsActive()
	})
	writers := lo.FilterMap(active, func(m model.Member, _ int) (string, bool) {
		return m.User.GitoliteIdentifier(), m.CanCommit()
	})
	readers := lo.FilterMap(active, func(m model.Member, _ int) (string, bool) {
		return m.User.GitoliteIdentifier(), !m.CanCommit() && m.CanClone()
	})
	return gitolite.RepoConf{
		Name: name,
		Rules: []gitolite.Rule{
			{Perm: gitolite.PermReadWritePlus, Users: writers},
			{Perm: gitolite.PermRead, Users: readers},
		},
	}
}

// UpdateProjects 重写指定项目的配置, 一次提交; 已归档或非托管项目的配置被删除
func (w *Writer) UpdateProjects(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	policy, err := w.policy()
	if err != nil {
		return err
	}
	projects, err := w.projects.FindWithMembers(ids)
	if err != nil {
		return err
	}

	err = w.store.Transaction(ctx, func(tx gitolite.Tx) error {
		for _, p := range projects {
			if err := w.writeProject(tx, policy, p); err != nil {
				return err
			}
		}
		names := lo.Map(projects, func(p *model.Project, _ int) string { return p.Identifier })
		return tx.Commit("Updated projects: " + strings.Join(names, ", "))
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "更新项目配置失败", err)
	}
	w.logger.Sugar().Infof("[ProjectConf] updated %d project(s)", len(projects))
	return nil
}

// UpdateAllProjects 清空后重新生成全部激活托管项目的配置, 一次提交; 返回写入的项目数
func (w *Writer) UpdateAllProjects(ctx context.Context) (int, error) {
	policy, err := w.policy()
	if err != nil {
		return 0, err
	}
	managed, err := w.projects.ListWithManagedRepository(true)
	if err != nil {
		return 0, err
	}
	projects, err := w.projects.FindWithMembers(lo.Map(managed, func(p *model.Project, _ int) int64 { return p.ID }))
	if err != nil {
		return 0, err
	}

	err = w.store.Transaction(ctx, func(tx gitolite.Tx) error {
		if err := clearConfs(tx); err != nil {
			return err
		}
		for _, p := range projects {
			if err := w.writeProject(tx, policy, p); err != nil {
				return err
			}
		}
		return tx.Commit(fmt.Sprintf("Updated all projects (%d)", len(projects)))
	})
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "更新全部项目配置失败", err)
	}
	w.logger.Sugar().Infof("[ProjectConf] regenerated config of %d project(s)", len(projects))
	return len(projects), nil
}

// Clear 删除全部项目配置; 没有配置时不提交
func (w *Writer) Clear(ctx context.Context) error {
	err := w.store.Transaction(ctx, func(tx gitolite.Tx) error {
		names, err := tx.RepoConfs()
		if err != nil || len(names) == 0 {
			return err
		}
		if err := clearConfs(tx); err != nil {
			return err
		}
		return tx.Commit("Cleared gitolite config")
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "清空项目配置失败", err)
	}
	return nil
}

func (w *Writer) policy() (placement.Policy, error) {
	values, err := w.settings.Get(model.PluginSettingName)
	if err != nil {
		return placement.Policy{}, err
	}
	return placement.NewPolicy(values, w.cfg), nil
}

func (w *Writer) writeProject(tx gitolite.Tx, policy placement.Policy, p *model.Project) error {
	chain, err := w.projects.IdentifierChain(p)
	if err != nil {
		return err
	}
	name := policy.RepoName(chain)
	if !p.IsActive() || !p.HasManagedRepository() {
		return tx.RemoveRepoConf(name)
	}
	return tx.WriteRepoConf(Build(name, p.Members))
}

func clearConfs(tx gitolite.Tx) error {
	names, err := tx.RepoConfs()
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := tx.RemoveRepoConf(n); err != nil {
			return err
		}
	}
	return nil
}
