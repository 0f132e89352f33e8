// Package gitolitetest 提供内存版管理仓库, 供其他包的测试使用
package gitolitetest

import (
	"context"
	"sort"
	"sync"

	"gitolite-sync/internal/pkg/gitolite"
)

// Commit 一次提交的快照
type Commit struct {
	Message string
	Keys    map[gitolite.KeyRef]string
	Confs   map[string]string
}

// MemoryStore 内存版 gitolite.Store, 记录每次提交
type MemoryStore struct {
	mu      sync.Mutex
	keys    map[gitolite.KeyRef]string
	confs   map[string]string
	commits []Commit

	// FailAdd / FailRemove / FailCommit 非空时对应操作返回该错误
	FailAdd    error
	FailRemove error
	FailCommit error
}

// NewMemoryStore 空仓库
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:  map[gitolite.KeyRef]string{},
		confs: map[string]string{},
	}
}

// Seed 直接写入一条公钥, 不产生提交
func (s *MemoryStore) Seed(key gitolite.SSHKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.Ref()] = key.Material()
}

// SeedConf 直接写入一个项目配置, 不产生提交
func (s *MemoryStore) SeedConf(conf gitolite.RepoConf) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confs[conf.RelativePath()] = conf.Render()
}

// Commits 全部提交
func (s *MemoryStore) Commits() []Commit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Commit(nil), s.commits...)
}

// Keys 当前公钥 ref -> material
func (s *MemoryStore) Keys() map[gitolite.KeyRef]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMap(s.keys)
}

// Confs 当前项目配置 name -> 内容
func (s *MemoryStore) Confs() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return confsByName(s.confs)
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx gitolite.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{store: s, keys: copyMap(s.keys), confs: copyMap(s.confs)}
	return fn(tx)
}

type memoryTx struct {
	store     *MemoryStore
	keys      map[gitolite.KeyRef]string
	confs     map[string]string
	committed bool
}

func (tx *memoryTx) Lookup(owner string) ([]gitolite.SSHKey, error) {
	var out []gitolite.SSHKey
	for ref, material := range tx.keys {
		if ref.Owner != owner {
			continue
		}
		k, err := gitolite.ParseSSHKey(material, ref.Owner, ref.Location)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

func (tx *memoryTx) Add(key gitolite.SSHKey) error {
	if tx.committed {
		return gitolite.ErrAlreadyCommitted
	}
	if tx.store.FailAdd != nil {
		return tx.store.FailAdd
	}
	tx.keys[key.Ref()] = key.Material()
	return nil
}

func (tx *memoryTx) Remove(key gitolite.SSHKey) error {
	if tx.committed {
		return gitolite.ErrAlreadyCommitted
	}
	if tx.store.FailRemove != nil {
		return tx.store.FailRemove
	}
	delete(tx.keys, key.Ref())
	return nil
}

func (tx *memoryTx) RepoConfs() ([]string, error) {
	names := make([]string, 0, len(tx.confs))
	for p := range tx.confs {
		names = append(names, gitolite.ConfName(p))
	}
	sort.Strings(names)
	return names, nil
}

func (tx *memoryTx) WriteRepoConf(conf gitolite.RepoConf) error {
	if tx.committed {
		return gitolite.ErrAlreadyCommitted
	}
	tx.confs[conf.RelativePath()] = conf.Render()
	return nil
}

func (tx *memoryTx) RemoveRepoConf(name string) error {
	if tx.committed {
		return gitolite.ErrAlreadyCommitted
	}
	delete(tx.confs, gitolite.ConfPath(name))
	return nil
}

func (tx *memoryTx) Commit(message string) error {
	if tx.committed {
		return gitolite.ErrAlreadyCommitted
	}
	tx.committed = true
	if tx.store.FailCommit != nil {
		return tx.store.FailCommit
	}
	tx.store.keys = tx.keys
	tx.store.confs = tx.confs
	tx.store.commits = append(tx.store.commits, Commit{
		Message: message,
		Keys:    copyMap(tx.keys),
		Confs:   confsByName(tx.confs),
	})
	return nil
}

// confsByName 文件路径 -> 项目名
func confsByName(byPath map[string]string) map[string]string {
	out := make(map[string]string, len(byPath))
	for p, content := range byPath {
		out[gitolite.ConfName(p)] = content
	}
	return out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
