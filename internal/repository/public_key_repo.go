package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	pkgErrors "gitolite-sync/pkg/errors"
)

type PublicKeyRepository interface {
	Create(key *model.GitolitePublicKey) error
	FindByID(id int64) (*model.GitolitePublicKey, error)
	ListByUser(userID int64) ([]*model.GitolitePublicKey, error)
	ExistsByUserAndTitle(userID int64, title string) (bool, error)
	Update(key *model.GitolitePublicKey) error
	Delete(id int64) error
	DeleteByUser(userID int64) error
	Count() (int64, error)
}

type publicKeyRepository struct {
	db *gorm.DB
}

func NewPublicKeyRepository(db *gorm.DB) PublicKeyRepository {
	return &publicKeyRepository{db: db}
}

func (r *publicKeyRepository) Create(key *model.GitolitePublicKey) error {
	if err := r.db.Create(key).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建公钥失败", err)
	}
	return nil
}

func (r *publicKeyRepository) FindByID(id int64) (*model.GitolitePublicKey, error) {
	var key model.GitolitePublicKey
	if err := r.db.First(&key, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询公钥失败", err)
	}
	return &key, nil
}

func (r *publicKeyRepository) ListByUser(userID int64) ([]*model.GitolitePublicKey, error) {
	var keys []*model.GitolitePublicKey
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&keys).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询公钥列表失败", err)
	}
	return keys, nil
}

func (r *publicKeyRepository) ExistsByUserAndTitle(userID int64, title string) (bool, error) {
	var count int64
	err := r.db.Model(&model.GitolitePublicKey{}).
		Where("user_id = ? AND title = ?", userID, title).
		Count(&count).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询公钥失败", err)
	}
	return count > 0, nil
}

func (r *publicKeyRepository) Update(key *model.GitolitePublicKey) error {
	err := r.db.Model(key).Select("title", "identifier", "updated_at").Updates(key).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新公钥失败", err)
	}
	return nil
}

func (r *publicKeyRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.GitolitePublicKey{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除公钥失败", err)
	}
	return nil
}

func (r *publicKeyRepository) DeleteByUser(userID int64) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.GitolitePublicKey{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除公钥失败", err)
	}
	return nil
}

func (r *publicKeyRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.GitolitePublicKey{}).Count(&count).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计公钥失败", err)
	}
	return count, nil
}
