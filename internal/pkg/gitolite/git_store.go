package gitolite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"
)

const remoteName = "origin"

const bootstrapConf = `repo gitolite-admin
    RW+ = admin

repo testing
    RW+ = @all
`

// GitStoreOptions go-git 管理仓库参数
type GitStoreOptions struct {
	Dir         string // 工作目录
	Remote      string // 为空时只在本地提交
	SSHKeyFile  string
	SSHUser     string
	AuthorName  string
	AuthorEmail string
}

// GitStore 基于 go-git 工作区的 Store 实现
type GitStore struct {
	mu     sync.Mutex
	repo   *git.Repository
	opts   GitStoreOptions
	auth   transport.AuthMethod
	logger *zap.Logger
}

// OpenGitStore 打开管理仓库; 目录不存在时从 Remote 克隆, 未配置 Remote 则初始化本地仓库
func OpenGitStore(opts GitStoreOptions, logger *zap.Logger) (*GitStore, error) {
	if opts.Dir == "" {
		return nil, errors.New("gitolite admin dir is required")
	}

	s := &GitStore{opts: opts, logger: logger}

	if opts.SSHKeyFile != "" {
		user := opts.SSHUser
		if user == "" {
			user = "git"
		}
		auth, err := gitssh.NewPublicKeysFromFile(user, opts.SSHKeyFile, "")
		if err != nil {
			return nil, fmt.Errorf("load admin ssh key: %w", err)
		}
		s.auth = auth
	}

	repo, err := git.PlainOpen(opts.Dir)
	switch {
	case err == nil:
	case errors.Is(err, git.ErrRepositoryNotExists) && opts.Remote != "":
		logger.Info("Cloning gitolite admin repository", zap.String("remote", opts.Remote), zap.String("dir", opts.Dir))
		repo, err = git.PlainClone(opts.Dir, false, &git.CloneOptions{
			URL:        opts.Remote,
			RemoteName: remoteName,
			Auth:       s.auth,
		})
		if err != nil {
			return nil, fmt.Errorf("clone gitolite admin repo: %w", err)
		}
	case errors.Is(err, git.ErrRepositoryNotExists):
		logger.Info("Initializing local gitolite admin repository", zap.String("dir", opts.Dir))
		repo, err = initAdminRepo(opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("open gitolite admin repo: %w", err)
	}

	s.repo = repo
	return s, nil
}

func initAdminRepo(opts GitStoreOptions) (*git.Repository, error) {
	repo, err := git.PlainInit(opts.Dir, false)
	if err != nil {
		return nil, fmt.Errorf("init gitolite admin repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if err := wt.Filesystem.MkdirAll(path.Dir(ConfFile), 0o755); err != nil {
		return nil, err
	}
	if err := util.WriteFile(wt.Filesystem, ConfFile, []byte(bootstrapConf), 0o644); err != nil {
		return nil, err
	}
	if _, err := wt.Add(ConfFile); err != nil {
		return nil, err
	}
	if _, err := wt.Commit("Initial gitolite-admin", &git.CommitOptions{Author: signature(opts)}); err != nil {
		return nil, err
	}
	return repo, nil
}

func signature(opts GitStoreOptions) *object.Signature {
	return &object.Signature{Name: opts.AuthorName, Email: opts.AuthorEmail, When: time.Now()}
}

// Transaction 见 Store
func (s *GitStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open admin worktree: %w", err)
	}

	tx := &gitTx{ctx: ctx, store: s, wt: wt, pending: map[string]*string{}}
	if err := fn(tx); err != nil {
		tx.discard()
		return err
	}
	if !tx.committed && len(tx.pending) > 0 {
		s.logger.Warn("Admin repo transaction finished without commit, discarding staged changes",
			zap.Int("staged", len(tx.pending)))
		tx.discard()
	}
	return nil
}

// HeadMessage 最近一次提交的说明
func (s *GitStore) HeadMessage() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.repo.Head()
	if err != nil {
		return "", err
	}
	c, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", err
	}
	return c.Message, nil
}

type gitTx struct {
	ctx   context.Context
	store *GitStore
	wt    *git.Worktree

	// path -> 新内容; nil 表示删除
	pending   map[string]*string
	committed bool
	applied   bool
	done      bool
	prevHead  plumbing.Hash
}

func (tx *gitTx) fs() billy.Filesystem {
	return tx.wt.Filesystem
}

func (tx *gitTx) Lookup(owner string) ([]SSHKey, error) {
	ownerDir := path.Join(KeyDir, owner)
	paths := map[string]bool{}

	entries, err := tx.fs().ReadDir(ownerDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", ownerDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := keyPath(owner, e.Name())
		if _, err := tx.fs().Stat(p); err == nil {
			paths[p] = true
		}
	}
	for p, content := range tx.pending {
		if strings.HasPrefix(p, ownerDir+"/") && strings.HasSuffix(p, "/"+owner+".pub") {
			paths[p] = content != nil
		}
	}

	var keys []SSHKey
	for _, p := range sortedKeys(paths) {
		if !paths[p] {
			continue
		}
		material, err := tx.read(p)
		if err != nil {
			return nil, err
		}
		location := path.Base(path.Dir(p))
		k, err := ParseSSHKey(material, owner, location)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (tx *gitTx) Add(key SSHKey) error {
	if tx.committed {
		return ErrAlreadyCommitted
	}
	if key.Owner == "" || key.Location == "" {
		return fmt.Errorf("ssh key owner and location are required")
	}
	material := key.Material()
	tx.pending[key.RelativePath()] = &material
	return nil
}

func (tx *gitTx) Remove(key SSHKey) error {
	if tx.committed {
		return ErrAlreadyCommitted
	}
	tx.pending[key.RelativePath()] = nil
	return nil
}

func (tx *gitTx) RepoConfs() ([]string, error) {
	names := map[string]bool{}
	entries, err := tx.fs().ReadDir(ProjectConfDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", ProjectConfDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".conf") {
			names[ConfName(e.Name())] = true
		}
	}
	for p, content := range tx.pending {
		if path.Dir(p) == ProjectConfDir {
			names[ConfName(p)] = content != nil
		}
	}

	var out []string
	for _, n := range sortedKeys(names) {
		if names[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (tx *gitTx) WriteRepoConf(conf RepoConf) error {
	if tx.committed {
		return ErrAlreadyCommitted
	}
	content := conf.Render()
	tx.pending[conf.RelativePath()] = &content
	return nil
}

func (tx *gitTx) RemoveRepoConf(name string) error {
	if tx.committed {
		return ErrAlreadyCommitted
	}
	tx.pending[ConfPath(name)] = nil
	return nil
}

// Commit 总是产生一次提交, 即使文件没有变化; 推送会触发 gitolite 重新编译 authorized_keys
func (tx *gitTx) Commit(message string) error {
	if tx.committed {
		return ErrAlreadyCommitted
	}
	tx.committed = true

	if head, err := tx.store.repo.Head(); err == nil {
		tx.prevHead = head.Hash()
	}

	tx.applied = true
	if err := tx.apply(); err != nil {
		return fmt.Errorf("stage admin repo changes: %w", err)
	}

	hash, err := tx.wt.Commit(message, &git.CommitOptions{
		Author:            signature(tx.store.opts),
		AllowEmptyCommits: true,
	})
	if err != nil {
		return fmt.Errorf("commit admin repo: %w", err)
	}

	if tx.store.opts.Remote != "" {
		err := tx.store.repo.PushContext(tx.ctx, &git.PushOptions{
			RemoteName: remoteName,
			Auth:       tx.store.auth,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("push admin repo: %w", err)
		}
	}

	tx.store.logger.Debug("Admin repo committed",
		zap.String("commit", hash.String()),
		zap.String("message", message),
		zap.Int("changes", len(tx.pending)))
	tx.pending = map[string]*string{}
	tx.done = true
	return nil
}

func (tx *gitTx) apply() error {
	wroteConf := false
	for _, p := range sortedKeys(tx.pending) {
		content := tx.pending[p]
		if content == nil {
			if _, err := tx.fs().Stat(p); err != nil {
				continue
			}
			if _, err := tx.wt.Remove(p); err != nil {
				return err
			}
			continue
		}
		if err := tx.fs().MkdirAll(path.Dir(p), 0o755); err != nil {
			return err
		}
		data := *content
		if !strings.HasSuffix(data, "\n") {
			data += "\n"
		}
		if err := util.WriteFile(tx.fs(), p, []byte(data), 0o644); err != nil {
			return err
		}
		if _, err := tx.wt.Add(p); err != nil {
			return err
		}
		if path.Dir(p) == ProjectConfDir {
			wroteConf = true
		}
	}

	if wroteConf {
		current, err := tx.read(ConfFile)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		if updated, changed := ensureInclude(current); changed {
			if err := util.WriteFile(tx.fs(), ConfFile, []byte(updated), 0o644); err != nil {
				return err
			}
			if _, err := tx.wt.Add(ConfFile); err != nil {
				return err
			}
		}
	}
	return nil
}

// discard 丢弃暂存内容; 已写入工作区时回退到事务前的提交
func (tx *gitTx) discard() {
	tx.pending = map[string]*string{}
	if !tx.applied || tx.done {
		return
	}

	log := tx.store.logger
	if !tx.prevHead.IsZero() {
		if err := tx.wt.Reset(&git.ResetOptions{Commit: tx.prevHead, Mode: git.HardReset}); err != nil {
			log.Error("Reset admin repo failed", zap.Error(err))
		}
	}
	if err := tx.wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		log.Error("Clean admin repo failed", zap.Error(err))
	}
}

// read 读取文件, 优先使用暂存内容
func (tx *gitTx) read(p string) (string, error) {
	if content, ok := tx.pending[p]; ok {
		if content == nil {
			return "", os.ErrNotExist
		}
		return *content, nil
	}
	f, err := tx.fs().Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
