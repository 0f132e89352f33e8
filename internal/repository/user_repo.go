package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	pkgErrors "gitolite-sync/pkg/errors"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int64, opts ...QueryOption) (*model.User, error)
	FindByLogin(login string) (*model.User, error)
	Update(user *model.User) error
	Delete(id int64) error
	ListWithKeys() ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建用户失败", err)
	}
	return nil
}

func (r *userRepository) FindByID(id int64, opts ...QueryOption) (*model.User, error) {
	q := r.db
	for _, opt := range opts {
		q = opt(q)
	}
	var user model.User
	if err := q.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) FindByLogin(login string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgErrors.ErrRecordNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户失败", err)
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	err := r.db.Model(user).Select("login", "mail", "status", "updated_at").Updates(user).Error
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新用户失败", err)
	}
	return nil
}

func (r *userRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除用户失败", err)
	}
	return nil
}

// ListWithKeys 拥有至少一个公钥的用户, 预加载公钥
func (r *userRepository) ListWithKeys() ([]*model.User, error) {
	var users []*model.User
	query := r.db.Where("id IN (?)", r.db.Model(&model.GitolitePublicKey{}).Select("user_id"))
	err := WithOrderedPreload("PublicKeys", "id")(query).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询用户公钥失败", err)
	}
	return users, nil
}
