// Package events 持久化成功后发布的领域事件
package events

import (
	"context"
	"errors"
	"sync"

	"gitolite-sync/internal/core/settings"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/gitolite"
)

// Event 领域事件
type Event interface {
	Name() string
}

// UserStatusChanged 用户状态变化, 事务提交后发布
type UserStatusChanged struct {
	UserID int64
	Login  string
	From   int8
	To     int8
}

// UserDeleted 用户及其公钥、成员关系已从数据库删除
type UserDeleted struct {
	UserID     int64
	Login      string
	Keys       []gitolite.KeyRef
	ProjectIDs []int64
}

// UserRenamed login 变化, 公钥标识已在数据库中修正
type UserRenamed struct {
	UserID    int64
	OldLogin  string
	NewLogin  string
	StaleKeys []gitolite.KeyRef
}

// KeyAdded 公钥已保存
type KeyAdded struct {
	Key   model.GitolitePublicKey
	Login string
}

// KeyRemoved 公钥已删除
type KeyRemoved struct {
	Ref gitolite.KeyRef
}

// SettingsCommitted 设置已持久化
type SettingsCommitted struct {
	SettingName string
	Value       model.GlobalSettings
	Triggers    settings.Triggers
}

func (UserStatusChanged) Name() string { return "user.status_changed" }
func (UserDeleted) Name() string       { return "user.deleted" }
func (UserRenamed) Name() string       { return "user.renamed" }
func (KeyAdded) Name() string          { return "key.added" }
func (KeyRemoved) Name() string        { return "key.removed" }
func (SettingsCommitted) Name() string { return "settings.committed" }

// Handler 事件处理
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc 函数适配 Handler
type HandlerFunc func(ctx context.Context, e Event) error

func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Bus 进程内同步事件总线
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe 按事件名注册, 同一事件的处理按注册顺序执行
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish 依次调用全部处理, 某个处理失败不影响后续处理, 返回合并后的错误
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[e.Name()]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h.Handle(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
