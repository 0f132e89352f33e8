package gitolite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testKeyA = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGlHkFv0xsRfK3Wg8jr5dF0bJZ3b5b7nQJ0R5Yk6hYQd alice@laptop"
	testKeyB = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIB9bYkQ1a2QFm8dE3GfQm3rW5u0Wlq1vX6o0M9m7S2jV alice@desktop"
)

func openTestStore(t *testing.T) (*GitStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "gitolite-admin")
	s, err := OpenGitStore(GitStoreOptions{
		Dir:         dir,
		AuthorName:  "test",
		AuthorEmail: "test@example.com",
	}, zap.NewNop())
	require.NoError(t, err)
	return s, dir
}

func commitCount(t *testing.T, s *GitStore) int {
	t.Helper()
	iter, err := s.repo.Log(&git.LogOptions{})
	require.NoError(t, err)
	n := 0
	for {
		if _, err := iter.Next(); err != nil {
			break
		}
		n++
	}
	return n
}

func mustKey(t *testing.T, material, owner, location string) SSHKey {
	t.Helper()
	k, err := ParseSSHKey(material, owner, location)
	require.NoError(t, err)
	return k
}

func TestOpenGitStoreInitializesRepo(t *testing.T) {
	s, dir := openTestStore(t)

	b, err := os.ReadFile(filepath.Join(dir, ConfFile))
	require.NoError(t, err)
	assert.Contains(t, string(b), "repo gitolite-admin")
	assert.Equal(t, 1, commitCount(t, s))

	// 再次打开使用已有仓库
	again, err := OpenGitStore(GitStoreOptions{Dir: dir}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, commitCount(t, again))
}

func TestTransactionAddAndReplace(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.Add(mustKey(t, testKeyA, "alice_1", "laptop")))
		return tx.Commit("laptop for alice")
	})
	require.NoError(t, err)

	err = s.Transaction(ctx, func(tx Tx) error {
		existing, err := tx.Lookup("alice_1")
		require.NoError(t, err)
		require.Len(t, existing, 1)
		require.NoError(t, tx.Remove(existing[0]))
		require.NoError(t, tx.Add(mustKey(t, testKeyB, "alice_1", "laptop")))
		return tx.Commit("laptop for alice")
	})
	require.NoError(t, err)

	assert.Equal(t, 3, commitCount(t, s))
	b, err := os.ReadFile(filepath.Join(dir, "keydir", "alice_1", "laptop", "alice_1.pub"))
	require.NoError(t, err)
	assert.Equal(t, testKeyB, strings.TrimSpace(string(b)))

	err = s.Transaction(ctx, func(tx Tx) error {
		keys, err := tx.Lookup("alice_1")
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, testKeyB, keys[0].Material())
		return nil
	})
	require.NoError(t, err)

	msg, err := s.HeadMessage()
	require.NoError(t, err)
	assert.Equal(t, "laptop for alice", strings.TrimSpace(msg))
}

func TestTransactionRemove(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.Add(mustKey(t, testKeyA, "alice_1", "laptop")))
		require.NoError(t, tx.Add(mustKey(t, testKeyB, "alice_1", "desktop")))
		return tx.Commit("keys for alice")
	}))

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.Remove(mustKey(t, testKeyA, "alice_1", "laptop")))
		return tx.Commit("laptop")
	}))

	_, err := os.Stat(filepath.Join(dir, "keydir", "alice_1", "laptop", "alice_1.pub"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		keys, err := tx.Lookup("alice_1")
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, "desktop", keys[0].Location)
		return nil
	}))
}

func TestTransactionFailureLeavesRepoUntouched(t *testing.T) {
	s, dir := openTestStore(t)
	boom := errors.New("boom")

	err := s.Transaction(context.Background(), func(tx Tx) error {
		require.NoError(t, tx.Add(mustKey(t, testKeyA, "alice_1", "laptop")))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, commitCount(t, s))

	_, statErr := os.Stat(filepath.Join(dir, "keydir", "alice_1"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTransactionWithoutCommitDiscards(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Transaction(context.Background(), func(tx Tx) error {
		return tx.Add(mustKey(t, testKeyA, "alice_1", "laptop"))
	}))
	assert.Equal(t, 1, commitCount(t, s))

	require.NoError(t, s.Transaction(context.Background(), func(tx Tx) error {
		keys, err := tx.Lookup("alice_1")
		require.NoError(t, err)
		assert.Empty(t, keys)
		return nil
	}))
}

func TestCommitTwiceFails(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Transaction(context.Background(), func(tx Tx) error {
		require.NoError(t, tx.Commit("first"))
		assert.ErrorIs(t, tx.Commit("second"), ErrAlreadyCommitted)
		assert.ErrorIs(t, tx.Add(mustKey(t, testKeyA, "alice_1", "laptop")), ErrAlreadyCommitted)
		return nil
	}))
	assert.Equal(t, 2, commitCount(t, s))
}

func TestCanceledContext(t *testing.T) {
	s, _ := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Transaction(ctx, func(tx Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRepoConfsAndInclude(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.WriteRepoConf(RepoConf{
			Name:  "team/proj",
			Rules: []Rule{{Perm: PermReadWritePlus, Users: []string{"bob_2", "alice_1"}}},
		}))
		require.NoError(t, tx.WriteRepoConf(RepoConf{Name: "other"}))
		return tx.Commit("Updated projects")
	}))

	b, err := os.ReadFile(filepath.Join(dir, "conf", "projects", "team%2Fproj.conf"))
	require.NoError(t, err)
	assert.Equal(t, "repo team/proj\n    RW+ = alice_1 bob_2\n", string(b))

	mainConf, err := os.ReadFile(filepath.Join(dir, ConfFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(mainConf), `include "projects/*.conf"`))

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		names, err := tx.RepoConfs()
		require.NoError(t, err)
		assert.Equal(t, []string{"other", "team/proj"}, names)

		require.NoError(t, tx.RemoveRepoConf("other"))
		names, err = tx.RepoConfs()
		require.NoError(t, err)
		assert.Equal(t, []string{"team/proj"}, names)
		return tx.Commit("Removed other")
	}))

	// 再次写入不会重复 include
	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.WriteRepoConf(RepoConf{Name: "third"}))
		return tx.Commit("Updated projects")
	}))
	mainConf, err = os.ReadFile(filepath.Join(dir, ConfFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(mainConf), `include "projects/*.conf"`))
}

func TestRepoConfsKeepSimilarNamesApart(t *testing.T) {
	s, dir := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.WriteRepoConf(RepoConf{
			Name:  "new/team",
			Rules: []Rule{{Perm: PermReadWritePlus, Users: []string{"alice_1"}}},
		}))
		require.NoError(t, tx.WriteRepoConf(RepoConf{
			Name:  "new-team",
			Rules: []Rule{{Perm: PermReadWritePlus, Users: []string{"bob_2"}}},
		}))
		return tx.Commit("Updated projects")
	}))

	child, err := os.ReadFile(filepath.Join(dir, "conf", "projects", "new%2Fteam.conf"))
	require.NoError(t, err)
	assert.Equal(t, "repo new/team\n    RW+ = alice_1\n", string(child))
	top, err := os.ReadFile(filepath.Join(dir, "conf", "projects", "new-team.conf"))
	require.NoError(t, err)
	assert.Equal(t, "repo new-team\n    RW+ = bob_2\n", string(top))

	require.NoError(t, s.Transaction(ctx, func(tx Tx) error {
		names, err := tx.RepoConfs()
		require.NoError(t, err)
		assert.Equal(t, []string{"new-team", "new/team"}, names)

		require.NoError(t, tx.RemoveRepoConf("new/team"))
		return tx.Commit("Removed new/team")
	}))

	_, err = os.Stat(filepath.Join(dir, "conf", "projects", "new%2Fteam.conf"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "conf", "projects", "new-team.conf"))
	assert.NoError(t, err)
}
