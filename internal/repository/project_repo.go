package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
)

// 项目树的最大深度, 防止 parent_id 成环时死循环
const maxProjectDepth = 32

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id int64) (*model.Project, error)
	AddMember(member *model.Member) error
	RemoveMembersByUser(userID int64) error
	ListWithManagedRepository(activeOnly bool) ([]*model.Project, error)
	FindWithMembers(ids []int64) ([]*model.Project, error)
	ListIDsByMember(userID int64) ([]int64, error)
	IdentifierChain(project *model.Project) ([]string, error)
	CountActive() (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建项目失败", err)
	}
	return nil
}

func (r *projectRepository) FindByID(id int64) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目失败", err)
	}
	return &project, nil
}

func (r *projectRepository) AddMember(member *model.Member) error {
	if err := r.db.Create(member).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "添加项目成员失败", err)
	}
	return nil
}

func (r *projectRepository) RemoveMembersByUser(userID int64) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Member{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除项目成员失败", err)
	}
	return nil
}

// ListWithManagedRepository 代码库由本系统托管的项目, 预加载代码库及派生配置
func (r *projectRepository) ListWithManagedRepository(activeOnly bool) ([]*model.Project, error) {
	q := r.db.
		Joins("JOIN repositories ON repositories.project_id = projects.id AND repositories.type = ?", constants.RepositoryTypeGitolite).
		Preload("Repository.Extra")
	if activeOnly {
		q = q.Where("projects.status = ?", constants.ProjectStatusActive)
	}

	var projects []*model.Project
	if err := q.Order("projects.id").Find(&projects).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询托管项目失败", err)
	}
	return projects, nil
}

// FindWithMembers 预加载代码库和成员(含用户)
func (r *projectRepository) FindWithMembers(ids []int64) ([]*model.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []*model.Project
	err := r.db.
		Where("id IN ?", ids).
		Preload("Repository").
		Preload("Members.User").
		Order("id").
		Find(&projects).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询项目成员失败", err)
	}
	return projects, nil
}

func (r *projectRepository) ListIDsByMember(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Member{}).
		Where("user_id = ?", userID).
		Order("project_id").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户项目失败", err)
	}
	return ids, nil
}

// IdentifierChain 从根项目到 project 的 identifier 列表
func (r *projectRepository) IdentifierChain(project *model.Project) ([]string, error) {
	chain := []string{project.Identifier}
	parentID := project.ParentID
	for depth := 0; parentID != nil; depth++ {
		if depth >= maxProjectDepth {
			return nil, pkgErrors.New(pkgErrors.CodeValidationError, "项目层级过深")
		}
		parent, err := r.FindByID(*parentID)
		if err != nil {
			return nil, err
		}
		chain = append([]string{parent.Identifier}, chain...)
		parentID = parent.ParentID
	}
	return chain, nil
}

func (r *projectRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Project{}).Where("status = ?", constants.ProjectStatusActive).Count(&count).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计项目失败", err)
	}
	return count, nil
}
