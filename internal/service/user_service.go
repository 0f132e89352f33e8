package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/dto"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
)

type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(id int64) (*dto.UserResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	db        *gorm.DB
	publisher EventPublisher
	logger    *zap.Logger
}

func NewUserService(db *gorm.DB, publisher EventPublisher, logger *zap.Logger) UserService {
	return &userService{db: db, publisher: publisher, logger: logger}
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                 u.ID,
		Login:              u.Login,
		Mail:               u.Mail,
		Status:             u.Status,
		StatusName:         constants.UserStatusToString(u.Status),
		GitoliteIdentifier: u.GitoliteIdentifier(),
	}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	users := repository.NewUserRepository(s.db.WithContext(ctx))
	if _, err := users.FindByLogin(req.Login); err == nil {
		return nil, pkgErrors.ErrRecordExists
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{Login: req.Login, Mail: req.Mail, Status: req.Status}
	if user.Status == 0 {
		user.Status = constants.UserStatusActive
	}
	if err := users.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Get(id int64) (*dto.UserResponse, error) {
	user, err := repository.NewUserRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Update 在一个事务中保存用户; 状态或 login 变化时, 提交后发布事件
func (s *userService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var (
		user       *model.User
		oldStatus  int8
		oldLogin   string
		staleKeys  []gitolite.KeyRef
		loginMoved bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		keys := repository.NewPublicKeyRepository(tx)

		var err error
		user, err = users.FindByID(id)
		if err != nil {
			return err
		}
		oldStatus, oldLogin = user.Status, user.Login

		if req.Login != nil && *req.Login != user.Login {
			other, err := users.FindByLogin(*req.Login)
			if err == nil && other.ID != user.ID {
				return pkgErrors.ErrRecordExists
			}
			if err != nil && !errors.Is(err, pkgErrors.ErrRecordNotFound) {
				return err
			}
			user.Login = *req.Login
			loginMoved = true
		}
		if req.Mail != nil {
			user.Mail = *req.Mail
		}
		if req.Status != nil {
			user.Status = *req.Status
		}

		if err := users.Update(user); err != nil {
			return err
		}
		if loginMoved {
			staleKeys, err = fixPublicKeys(keys, user)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var errs []error
	if user.Status != oldStatus {
		s.logger.Sugar().Infof("User '%s' status has changed, update projects", user.Login)
		errs = append(errs, s.publisher.Publish(ctx, events.UserStatusChanged{
			UserID: user.ID,
			Login:  user.Login,
			From:   oldStatus,
			To:     user.Status,
		}))
	}
	if loginMoved {
		errs = append(errs, s.publisher.Publish(ctx, events.UserRenamed{
			UserID:    user.ID,
			OldLogin:  oldLogin,
			NewLogin:  user.Login,
			StaleKeys: staleKeys,
		}))
	}
	if err := errors.Join(errs...); err != nil {
		return toUserResponse(user), err
	}
	return toUserResponse(user), nil
}

// fixPublicKeys 规范化公钥标题并改用当前的 gitolite 标识, 返回修改前的查找键
func fixPublicKeys(keys repository.PublicKeyRepository, user *model.User) ([]gitolite.KeyRef, error) {
	list, err := keys.ListByUser(user.ID)
	if err != nil {
		return nil, err
	}
	stale := lo.Map(list, func(k *model.GitolitePublicKey, _ int) gitolite.KeyRef { return k.Ref() })

	identifier := user.GitoliteIdentifier()
	for _, k := range list {
		k.Title = model.ValidTitle(k.Title)
		k.Identifier = identifier
		if err := keys.Update(k); err != nil {
			return nil, err
		}
	}
	return stale, nil
}

// Delete 删除用户、公钥和成员关系, 提交后发布 UserDeleted
func (s *userService) Delete(ctx context.Context, id int64) error {
	var deleted events.UserDeleted

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		keys := repository.NewPublicKeyRepository(tx)
		projects := repository.NewProjectRepository(tx)

		user, err := users.FindByID(id)
		if err != nil {
			return err
		}
		list, err := keys.ListByUser(user.ID)
		if err != nil {
			return err
		}
		projectIDs, err := projects.ListIDsByMember(user.ID)
		if err != nil {
			return err
		}

		if err := keys.DeleteByUser(user.ID); err != nil {
			return err
		}
		if err := projects.RemoveMembersByUser(user.ID); err != nil {
			return err
		}
		if err := users.Delete(user.ID); err != nil {
			return err
		}

		deleted = events.UserDeleted{
			UserID:     user.ID,
			Login:      user.Login,
			Keys:       lo.Map(list, func(k *model.GitolitePublicKey, _ int) gitolite.KeyRef { return k.Ref() }),
			ProjectIDs: projectIDs,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Sugar().Infof("User '%s' has been deleted, delete membership and SSH keys", deleted.Login)
	return s.publisher.Publish(ctx, deleted)
}
