// Package dispatch 按名称执行批量 gitolite 操作
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgErrors "gitolite-sync/pkg/errors"
)

// Handler 一个命名操作的实现, arg 的类型由操作决定
type Handler interface {
	Handle(ctx context.Context, arg any) error
}

// HandlerFunc 函数适配 Handler
type HandlerFunc func(ctx context.Context, arg any) error

func (f HandlerFunc) Handle(ctx context.Context, arg any) error {
	return f(ctx, arg)
}

// Dispatcher 同步执行, 同一时间只运行一个操作; handler 内不能再调用 Dispatch
type Dispatcher struct {
	mu       sync.RWMutex
	run      sync.Mutex
	handlers map[string]Handler
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register 注册操作, 重复注册覆盖
func (d *Dispatcher) Register(op string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[op] = h
}

// Operations 已注册的操作名
func (d *Dispatcher) Operations() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dispatch 执行 op; 未注册的操作返回 ErrUnknownOperation
func (d *Dispatcher) Dispatch(ctx context.Context, op string, arg any) error {
	d.mu.RLock()
	h, ok := d.handlers[op]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", pkgErrors.ErrUnknownOperation, op)
	}

	d.run.Lock()
	defer d.run.Unlock()

	log := d.logger.Sugar().With(zap.String("op", op))
	log.Infof("[Dispatch] %s start, arg=%v", op, arg)
	start := time.Now()

	if err := h.Handle(ctx, arg); err != nil {
		log.Errorf("[Dispatch] %s failed after %s: %v", op, time.Since(start), err)
		return err
	}
	log.Infof("[Dispatch] %s done in %s", op, time.Since(start))
	return nil
}
