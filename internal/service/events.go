package service

import (
	"context"

	"gitolite-sync/internal/core/events"
)

// EventPublisher 事务提交后发布领域事件
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}
