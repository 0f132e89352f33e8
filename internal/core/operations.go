package core

import (
	"context"
	"fmt"

	"gitolite-sync/internal/core/dispatch"
	"gitolite-sync/internal/core/keysync"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/pkg/constants"
)

func (e *CoreEngine) registerOperations() {
	e.Dispatcher.Register(constants.OpAddSSHKey, dispatch.HandlerFunc(e.addSSHKey))
	e.Dispatcher.Register(constants.OpDeleteSSHKey, dispatch.HandlerFunc(e.deleteSSHKey))
	e.Dispatcher.Register(constants.OpUpdateAllSSHKeysForced, dispatch.HandlerFunc(e.updateAllSSHKeysForced))
	e.Dispatcher.Register(constants.OpUpdateProjects, dispatch.HandlerFunc(e.updateProjects))
	e.Dispatcher.Register(constants.OpUpdateAllProjects, dispatch.HandlerFunc(e.updateAllProjects))
	e.Dispatcher.Register(constants.OpClearGitoliteConfig, dispatch.HandlerFunc(e.clearGitoliteConfig))
	e.Dispatcher.Register(constants.OpResyncRepositoryPaths, dispatch.HandlerFunc(e.resyncRepositoryPaths))
	e.Dispatcher.Register(constants.OpConfigureProjects, dispatch.HandlerFunc(e.configureProjects))
}

func invalidArg(op string, arg any) error {
	return fmt.Errorf("%s: unexpected argument %T", op, arg)
}

func (e *CoreEngine) addSSHKey(ctx context.Context, arg any) error {
	a, ok := arg.(keysync.AddKeyArg)
	if !ok || a.Key == nil {
		return invalidArg(constants.OpAddSSHKey, arg)
	}
	return e.Keys.AddKey(ctx, a.Key, a.Login)
}

func (e *CoreEngine) deleteSSHKey(ctx context.Context, arg any) error {
	ref, ok := arg.(gitolite.KeyRef)
	if !ok {
		return invalidArg(constants.OpDeleteSSHKey, arg)
	}
	_, err := e.Keys.RemoveKey(ctx, ref)
	return err
}

// updateAllSSHKeysForced arg 为公钥数量, 只用于日志
func (e *CoreEngine) updateAllSSHKeysForced(ctx context.Context, arg any) error {
	_, err := e.Keys.ForceResyncAll(ctx)
	return err
}

func (e *CoreEngine) updateProjects(ctx context.Context, arg any) error {
	ids, ok := arg.([]int64)
	if !ok {
		return invalidArg(constants.OpUpdateProjects, arg)
	}
	return e.Writer.UpdateProjects(ctx, ids)
}

func (e *CoreEngine) updateAllProjects(ctx context.Context, arg any) error {
	_, err := e.Writer.UpdateAllProjects(ctx)
	return err
}

func (e *CoreEngine) clearGitoliteConfig(ctx context.Context, arg any) error {
	return e.Writer.Clear(ctx)
}

func (e *CoreEngine) resyncRepositoryPaths(ctx context.Context, arg any) error {
	_, err := e.Reconciler.Run(ctx)
	return err
}

func (e *CoreEngine) configureProjects(ctx context.Context, arg any) error {
	_, err := e.Fixer.Run(ctx)
	return err
}
