package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	pkgErrors "gitolite-sync/pkg/errors"
)

type RepositoryRepository interface {
	Create(repo *model.Repository) error
	FindByID(id int64) (*model.Repository, error)
	FindByProjectID(projectID int64) (*model.Repository, error)
	UpdatePaths(id int64, path string) error
	CreateExtra(extra *model.RepositoryExtra) error
}

type repositoryRepository struct {
	db *gorm.DB
}

func NewRepositoryRepository(db *gorm.DB) RepositoryRepository {
	return &repositoryRepository{db: db}
}

func (r *repositoryRepository) Create(repo *model.Repository) error {
	if err := r.db.Create(repo).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建代码库失败", err)
	}
	return nil
}

func (r *repositoryRepository) FindByID(id int64) (*model.Repository, error) {
	var repo model.Repository
	if err := r.db.Preload("Extra").First(&repo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询代码库失败", err)
	}
	return &repo, nil
}

func (r *repositoryRepository) FindByProjectID(projectID int64) (*model.Repository, error) {
	var repo model.Repository
	if err := r.db.Where("project_id = ?", projectID).First(&repo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRepositoryNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询代码库失败", err)
	}
	return &repo, nil
}

// UpdatePaths url 与 root_url 同时更新为 path
func (r *repositoryRepository) UpdatePaths(id int64, path string) error {
	err := r.db.Model(&model.Repository{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"url": path, "root_url": path}).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新代码库路径失败", err)
	}
	return nil
}

func (r *repositoryRepository) CreateExtra(extra *model.RepositoryExtra) error {
	if err := r.db.Create(extra).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建代码库派生配置失败", err)
	}
	return nil
}
