// Package lifecycle 订阅用户和公钥事件, 把变化同步到管理仓库
package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/core/keysync"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
)

// Dispatcher 批量操作入口
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, arg any) error
}

// KeyMover 用户删除与改名时直接调用的公钥同步
type KeyMover interface {
	RemoveKeys(ctx context.Context, owner string, refs []gitolite.KeyRef) (int, error)
	MoveKeys(ctx context.Context, login string, stale []gitolite.KeyRef, keys []*model.GitolitePublicKey) error
}

// UserHook 用户状态变化、删除、改名
type UserHook struct {
	dispatcher Dispatcher
	keys       KeyMover
	projects   repository.ProjectRepository
	publicKeys repository.PublicKeyRepository
	logger     *zap.Logger
}

func NewUserHook(dispatcher Dispatcher, keys KeyMover, projects repository.ProjectRepository, publicKeys repository.PublicKeyRepository, logger *zap.Logger) *UserHook {
	return &UserHook{
		dispatcher: dispatcher,
		keys:       keys,
		projects:   projects,
		publicKeys: publicKeys,
		logger:     logger,
	}
}

// Register 订阅用户事件
func (h *UserHook) Register(bus *events.Bus) {
	bus.Subscribe(events.UserStatusChanged{}.Name(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return h.OnStatusChanged(ctx, e.(events.UserStatusChanged))
	}))
	bus.Subscribe(events.UserDeleted{}.Name(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return h.OnDeleted(ctx, e.(events.UserDeleted))
	}))
	bus.Subscribe(events.UserRenamed{}.Name(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		return h.OnRenamed(ctx, e.(events.UserRenamed))
	}))
}

// OnStatusChanged 更新用户所在全部项目的访问规则
func (h *UserHook) OnStatusChanged(ctx context.Context, e events.UserStatusChanged) error {
	if e.From == e.To {
		return nil
	}
	ids, err := h.projects.ListIDsByMember(e.UserID)
	if err != nil {
		return err
	}
	h.logger.Sugar().Infof("[Lifecycle] user '%s' status changed %s -> %s, update %d project(s)",
		e.Login, constants.UserStatusToString(e.From), constants.UserStatusToString(e.To), len(ids))
	if len(ids) == 0 {
		return nil
	}
	return h.dispatcher.Dispatch(ctx, constants.OpUpdateProjects, ids)
}

// OnDeleted 一次提交删除用户的全部公钥, 然后更新其原先所在的项目
func (h *UserHook) OnDeleted(ctx context.Context, e events.UserDeleted) error {
	h.logger.Sugar().Infof("[Lifecycle] user '%s' deleted, removing %d SSH key(s)", e.Login, len(e.Keys))
	if _, err := h.keys.RemoveKeys(ctx, e.Login, e.Keys); err != nil {
		return err
	}
	if len(e.ProjectIDs) == 0 {
		return nil
	}
	return h.dispatcher.Dispatch(ctx, constants.OpUpdateProjects, e.ProjectIDs)
}

// OnRenamed 把公钥移动到新标识下, 并更新用户所在项目
func (h *UserHook) OnRenamed(ctx context.Context, e events.UserRenamed) error {
	keys, err := h.publicKeys.ListByUser(e.UserID)
	if err != nil {
		return err
	}
	h.logger.Sugar().Infof("[Lifecycle] user '%s' renamed to '%s', moving %d SSH key(s)", e.OldLogin, e.NewLogin, len(keys))
	if err := h.keys.MoveKeys(ctx, e.NewLogin, e.StaleKeys, keys); err != nil {
		return err
	}
	ids, err := h.projects.ListIDsByMember(e.UserID)
	if err != nil || len(ids) == 0 {
		return err
	}
	return h.dispatcher.Dispatch(ctx, constants.OpUpdateProjects, ids)
}

// KeyHook 公钥增删
type KeyHook struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewKeyHook(dispatcher Dispatcher, logger *zap.Logger) *KeyHook {
	return &KeyHook{dispatcher: dispatcher, logger: logger}
}

// Register 订阅公钥事件
func (h *KeyHook) Register(bus *events.Bus) {
	bus.Subscribe(events.KeyAdded{}.Name(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		added := e.(events.KeyAdded)
		h.logger.Sugar().Infof("[Lifecycle] adding SSH key for user '%s'", added.Login)
		key := added.Key
		return h.dispatcher.Dispatch(ctx, constants.OpAddSSHKey, keysync.AddKeyArg{Key: &key, Login: added.Login})
	}))
	bus.Subscribe(events.KeyRemoved{}.Name(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		removed := e.(events.KeyRemoved)
		h.logger.Sugar().Infof("[Lifecycle] deleting SSH key %s", removed.Ref)
		if err := h.dispatcher.Dispatch(ctx, constants.OpDeleteSSHKey, removed.Ref); err != nil {
			return fmt.Errorf("delete %s: %w", removed.Ref, err)
		}
		return nil
	}))
}
