package gitolite

import (
	"context"
	"errors"
)

// ErrAlreadyCommitted 一个事务只能提交一次
var ErrAlreadyCommitted = errors.New("admin repo transaction already committed")

// Store gitolite 管理仓库.
//
// 每个逻辑操作在一个事务中暂存所有增删, 最后由 Tx.Commit 产生唯一一次提交.
// fn 返回错误或 Commit 失败时, 暂存内容全部丢弃, 管理仓库保持事务前状态.
// 同一 Store 上的事务串行执行.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx 管理仓库事务
type Tx interface {
	// Lookup 返回 owner 名下的全部公钥(含本事务暂存的变更)
	Lookup(owner string) ([]SSHKey, error)
	Add(key SSHKey) error
	Remove(key SSHKey) error

	// RepoConfs 返回已存在的项目配置名
	RepoConfs() ([]string, error)
	WriteRepoConf(conf RepoConf) error
	RemoveRepoConf(name string) error

	// Commit 以 message 提交全部暂存变更, 每个事务最多一次
	Commit(message string) error
}
