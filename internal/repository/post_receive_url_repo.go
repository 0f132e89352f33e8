package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	pkgErrors "gitolite-sync/pkg/errors"
)

type PostReceiveURLRepository interface {
	ListByRepository(repositoryID int64) ([]*model.PostReceiveURL, error)
	FindByRepositoryAndID(repositoryID, id int64) (*model.PostReceiveURL, error)
	Create(u *model.PostReceiveURL) error
	Update(u *model.PostReceiveURL) error
	Delete(id int64) error
}

type postReceiveURLRepository struct {
	db *gorm.DB
}

func NewPostReceiveURLRepository(db *gorm.DB) PostReceiveURLRepository {
	return &postReceiveURLRepository{db: db}
}

func (r *postReceiveURLRepository) ListByRepository(repositoryID int64) ([]*model.PostReceiveURL, error) {
	var urls []*model.PostReceiveURL
	if err := r.db.Where("repository_id = ?", repositoryID).Order("id").Find(&urls).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询回调地址失败", err)
	}
	return urls, nil
}

func (r *postReceiveURLRepository) FindByRepositoryAndID(repositoryID, id int64) (*model.PostReceiveURL, error) {
	var u model.PostReceiveURL
	if err := r.db.Where("repository_id = ? AND id = ?", repositoryID, id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询回调地址失败", err)
	}
	return &u, nil
}

func (r *postReceiveURLRepository) Create(u *model.PostReceiveURL) error {
	if err := r.db.Create(u).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建回调地址失败", err)
	}
	return nil
}

func (r *postReceiveURLRepository) Update(u *model.PostReceiveURL) error {
	err := r.db.Model(u).Select("active", "url", "mode", "updated_at").Updates(u).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新回调地址失败", err)
	}
	return nil
}

func (r *postReceiveURLRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.PostReceiveURL{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除回调地址失败", err)
	}
	return nil
}
