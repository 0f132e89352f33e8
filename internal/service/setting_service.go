package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/core/settings"
	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/repository"
)

// SettingsValidator 持久化前修正设置
type SettingsValidator interface {
	Validate(attempted, previous model.GlobalSettings) (model.GlobalSettings, settings.Triggers)
}

type SettingService interface {
	Get(name string) (*dto.SettingsResponse, error)
	Save(ctx context.Context, name string, values map[string]string) (*dto.SettingsResponse, error)
}

type settingService struct {
	db        *gorm.DB
	validator SettingsValidator
	publisher EventPublisher
	logger    *zap.Logger
}

func NewSettingService(db *gorm.DB, validator SettingsValidator, publisher EventPublisher, logger *zap.Logger) SettingService {
	return &settingService{db: db, validator: validator, publisher: publisher, logger: logger}
}

func (s *settingService) Get(name string) (*dto.SettingsResponse, error) {
	values, err := repository.NewSettingRepository(s.db).Get(name)
	if err != nil {
		return nil, err
	}
	return &dto.SettingsResponse{Name: name, Values: values}, nil
}

// Save 校验后保存; 一次性操作在事务提交后执行, 失败只记录日志, 写入本身总是成功
func (s *settingService) Save(ctx context.Context, name string, values map[string]string) (*dto.SettingsResponse, error) {
	corrected := model.GlobalSettings(values)
	var triggers settings.Triggers

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewSettingRepository(tx)
		if name == model.PluginSettingName {
			previous, err := repo.Get(name)
			if err != nil {
				return err
			}
			corrected, triggers = s.validator.Validate(corrected, previous)
		}
		return repo.Save(name, corrected)
	})
	if err != nil {
		return nil, err
	}

	err = s.publisher.Publish(ctx, events.SettingsCommitted{SettingName: name, Value: corrected, Triggers: triggers})
	if err != nil {
		s.logger.Error("Settings saved, but post-commit operations failed", zap.String("name", name), zap.Error(err))
	}
	return &dto.SettingsResponse{Name: name, Values: corrected}, nil
}
