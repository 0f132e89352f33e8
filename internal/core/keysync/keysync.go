// Package keysync 把数据库中的 SSH 公钥同步到 gitolite 管理仓库
package keysync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	pkgErrors "gitolite-sync/pkg/errors"
)

// RemoveResult RemoveKey 的结果
type RemoveResult int

const (
	Removed RemoveResult = iota + 1
	NotFound
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Synchronizer 每个逻辑操作一个事务, 一次提交
type Synchronizer struct {
	store  gitolite.Store
	users  repository.UserRepository
	logger *zap.Logger
}

func NewSynchronizer(store gitolite.Store, users repository.UserRepository, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{store: store, users: users, logger: logger}
}

// AddKey 写入公钥, 同一 (owner, location) 的旧条目先删除
func (s *Synchronizer) AddKey(ctx context.Context, key *model.GitolitePublicKey, login string) error {
	err := s.store.Transaction(ctx, func(tx gitolite.Tx) error {
		if err := addWithReplace(tx, key); err != nil {
			return err
		}
		return tx.Commit(fmt.Sprintf("%s for %s", key.Title, login))
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "添加 SSH 公钥失败", err)
	}
	s.logger.Sugar().Infof("[KeySync] added %s for %s", key.Ref(), login)
	return nil
}

// RemoveKey 删除公钥; 管理仓库中不存在时返回 NotFound, 不提交
func (s *Synchronizer) RemoveKey(ctx context.Context, ref gitolite.KeyRef) (RemoveResult, error) {
	result := NotFound
	err := s.store.Transaction(ctx, func(tx gitolite.Tx) error {
		found, err := removeEntry(tx, ref)
		if err != nil || !found {
			return err
		}
		result = Removed
		return tx.Commit(ref.Location)
	})
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "删除 SSH 公钥失败", err)
	}
	if result == NotFound {
		s.logger.Sugar().Warnf("[KeySync] %s not found in admin repo, nothing to remove", ref)
	} else {
		s.logger.Sugar().Infof("[KeySync] removed %s", ref)
	}
	return result, nil
}

// RemoveKeys 在一次提交中删除多个公钥, 返回实际删除的数量
func (s *Synchronizer) RemoveKeys(ctx context.Context, owner string, refs []gitolite.KeyRef) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	removed := 0
	err := s.store.Transaction(ctx, func(tx gitolite.Tx) error {
		for _, ref := range refs {
			found, err := removeEntry(tx, ref)
			if err != nil {
				return err
			}
			if found {
				removed++
			} else {
				s.logger.Sugar().Warnf("[KeySync] %s not found in admin repo", ref)
			}
		}
		if removed == 0 {
			return nil
		}
		return tx.Commit(fmt.Sprintf("Removed %d SSH keys of %s", removed, owner))
	})
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "删除 SSH 公钥失败", err)
	}
	return removed, nil
}

// MoveKeys 删除旧标识下的条目并以当前标识写入全部公钥, 一次提交
func (s *Synchronizer) MoveKeys(ctx context.Context, login string, stale []gitolite.KeyRef, keys []*model.GitolitePublicKey) error {
	if len(stale) == 0 && len(keys) == 0 {
		return nil
	}
	err := s.store.Transaction(ctx, func(tx gitolite.Tx) error {
		for _, ref := range stale {
			if _, err := removeEntry(tx, ref); err != nil {
				return err
			}
		}
		for _, key := range keys {
			if err := addWithReplace(tx, key); err != nil {
				return err
			}
		}
		return tx.Commit(fmt.Sprintf("Updated SSH keys for %s", login))
	})
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "迁移 SSH 公钥失败", err)
	}
	s.logger.Sugar().Infof("[KeySync] moved %d stale entries, wrote %d keys for %s", len(stale), len(keys), login)
	return nil
}

// ForceResyncAll 重写全部用户的全部公钥, 一次提交; 返回用户数
func (s *Synchronizer) ForceResyncAll(ctx context.Context) (int, error) {
	log := s.logger.Sugar()
	log.Info("[KeySync] forced resync of all SSH keys start")

	users, err := s.users.ListWithKeys()
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		log.Info("[KeySync] forced resync done, no user owns a key")
		return 0, nil
	}

	total := 0
	err = s.store.Transaction(ctx, func(tx gitolite.Tx) error {
		for _, u := range users {
			for i := range u.PublicKeys {
				if err := addWithReplace(tx, &u.PublicKeys[i]); err != nil {
					return fmt.Errorf("%s: %w", u.Login, err)
				}
				total++
			}
		}
		return tx.Commit(fmt.Sprintf("Updated SSH keys for %d users", len(users)))
	})
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeAdminRepoError, "强制同步 SSH 公钥失败", err)
	}

	log.Infof("[KeySync] forced resync done, %d keys of %d users", total, len(users))
	return len(users), nil
}

func addWithReplace(tx gitolite.Tx, key *model.GitolitePublicKey) error {
	entry, err := key.AdminKey()
	if err != nil {
		return err
	}
	if _, err := removeEntry(tx, entry.Ref()); err != nil {
		return err
	}
	return tx.Add(entry)
}

func removeEntry(tx gitolite.Tx, ref gitolite.KeyRef) (bool, error) {
	existing, err := tx.Lookup(ref.Owner)
	if err != nil {
		return false, err
	}
	found := false
	for _, e := range existing {
		if e.Location == ref.Location && e.Owner == ref.Owner {
			if err := tx.Remove(e); err != nil {
				return false, err
			}
			found = true
		}
	}
	return found, nil
}

// AddKeyArg add_ssh_key 操作的参数
type AddKeyArg struct {
	Key   *model.GitolitePublicKey
	Login string
}
