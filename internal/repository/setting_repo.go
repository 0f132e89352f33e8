package repository

import (
	"errors"

	"gorm.io/gorm"

	"gitolite-sync/internal/model"
	pkgErrors "gitolite-sync/pkg/errors"
)

type SettingRepository interface {
	// Get 不存在时返回空设置
	Get(name string) (model.GlobalSettings, error)
	Save(name string, value model.GlobalSettings) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) find(name string) (*model.Setting, error) {
	var s model.Setting
	if err := r.db.Where("name = ?", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) Get(name string) (model.GlobalSettings, error) {
	s, err := r.find(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GlobalSettings{}, nil
	}
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询设置失败", err)
	}
	v, err := s.Decode()
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "解析设置失败", err)
	}
	return v, nil
}

func (r *settingRepository) Save(name string, value model.GlobalSettings) error {
	s, err := r.find(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = &model.Setting{Name: name}
	} else if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询设置失败", err)
	}
	if err := s.Encode(value); err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "序列化设置失败", err)
	}
	if err := r.db.Save(s).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "保存设置失败", err)
	}
	return nil
}
