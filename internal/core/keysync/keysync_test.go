package keysync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/database/dbtest"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/pkg/gitolite/gitolitetest"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
	pkgErrors "gitolite-sync/pkg/errors"
)

const (
	materialOld = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIOLD alice@laptop"
	materialNew = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAINEW alice@laptop"
)

func newSync(t *testing.T) (*Synchronizer, *gitolitetest.MemoryStore, repository.UserRepository, repository.PublicKeyRepository) {
	t.Helper()
	db := dbtest.Open(t)
	store := gitolitetest.NewMemoryStore()
	users := repository.NewUserRepository(db)
	return NewSynchronizer(store, users, zap.NewNop()), store, users, repository.NewPublicKeyRepository(db)
}

func key(identifier, title, material string) *model.GitolitePublicKey {
	return &model.GitolitePublicKey{Identifier: identifier, Title: title, Key: material}
}

func TestAddKeyIsIdempotent(t *testing.T) {
	s, store, _, _ := newSync(t)
	ctx := context.Background()

	require.NoError(t, s.AddKey(ctx, key("alice_1", "laptop", materialOld), "alice"))
	require.NoError(t, s.AddKey(ctx, key("alice_1", "laptop", materialNew), "alice"))

	commits := store.Commits()
	require.Len(t, commits, 2)
	assert.Equal(t, "laptop for alice", commits[0].Message)
	assert.Equal(t, "laptop for alice", commits[1].Message)

	keys := store.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, materialNew, keys[gitolite.KeyRef{Owner: "alice_1", Location: "laptop"}])
}

func TestAddKeyStoreFailureNoCommit(t *testing.T) {
	s, store, _, _ := newSync(t)
	store.FailAdd = errors.New("disk full")

	err := s.AddKey(context.Background(), key("alice_1", "laptop", materialOld), "alice")
	require.Error(t, err)

	var appErr *pkgErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgErrors.CodeAdminRepoError, appErr.Code)
	assert.Empty(t, store.Commits())
	assert.Empty(t, store.Keys())
}

func TestAddKeyInvalidMaterial(t *testing.T) {
	s, store, _, _ := newSync(t)
	err := s.AddKey(context.Background(), key("alice_1", "laptop", "garbage"), "alice")
	assert.Error(t, err)
	assert.Empty(t, store.Commits())
}

func TestRemoveKey(t *testing.T) {
	s, store, _, _ := newSync(t)
	ctx := context.Background()
	require.NoError(t, s.AddKey(ctx, key("alice_1", "laptop", materialOld), "alice"))

	res, err := s.RemoveKey(ctx, gitolite.KeyRef{Owner: "alice_1", Location: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, Removed, res)
	assert.Empty(t, store.Keys())

	commits := store.Commits()
	require.Len(t, commits, 2)
	assert.Equal(t, "laptop", commits[1].Message)
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	s, store, _, _ := newSync(t)

	res, err := s.RemoveKey(context.Background(), gitolite.KeyRef{Owner: "alice_1", Location: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Empty(t, store.Commits())
}

func TestRemoveKeysSingleCommit(t *testing.T) {
	s, store, _, _ := newSync(t)
	ctx := context.Background()
	require.NoError(t, s.AddKey(ctx, key("alice_1", "laptop", materialOld), "alice"))
	require.NoError(t, s.AddKey(ctx, key("alice_1", "desktop", materialNew), "alice"))

	n, err := s.RemoveKeys(ctx, "alice_1", []gitolite.KeyRef{
		{Owner: "alice_1", Location: "laptop"},
		{Owner: "alice_1", Location: "desktop"},
		{Owner: "alice_1", Location: "gone"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.Commits(), 3)
	assert.Empty(t, store.Keys())

	n, err = s.RemoveKeys(ctx, "alice_1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, store.Commits(), 3)
}

func TestMoveKeys(t *testing.T) {
	s, store, _, _ := newSync(t)
	ctx := context.Background()
	require.NoError(t, s.AddKey(ctx, key("alice_1", "laptop", materialOld), "alice"))

	err := s.MoveKeys(ctx, "alicia",
		[]gitolite.KeyRef{{Owner: "alice_1", Location: "laptop"}},
		[]*model.GitolitePublicKey{key("alicia_1", "laptop", materialOld)})
	require.NoError(t, err)

	keys := store.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys, gitolite.KeyRef{Owner: "alicia_1", Location: "laptop"})
	assert.Len(t, store.Commits(), 2)
}

func TestForceResyncAllSingleCommit(t *testing.T) {
	s, store, users, keys := newSync(t)
	ctx := context.Background()

	for _, login := range []string{"alice", "bob"} {
		u := &model.User{Login: login, Status: constants.UserStatusActive}
		require.NoError(t, users.Create(u))
		for _, title := range []string{"laptop", "desktop"} {
			require.NoError(t, keys.Create(&model.GitolitePublicKey{
				UserID:     u.ID,
				Title:      title,
				Identifier: u.GitoliteIdentifier(),
				Key:        "ssh-ed25519 AAAA" + login + title,
			}))
		}
	}
	require.NoError(t, users.Create(&model.User{Login: "carol", Status: constants.UserStatusActive}))

	// 已存在的条目被覆盖而不是重复
	store.Seed(gitolite.SSHKey{Type: "ssh-rsa", Blob: "STALE", Owner: "alice_1", Location: "laptop"})

	n, err := s.ForceResyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	commits := store.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "Updated SSH keys for 2 users", commits[0].Message)
	assert.Len(t, store.Keys(), 4)
	assert.Equal(t, "ssh-ed25519 AAAAalicelaptop", store.Keys()[gitolite.KeyRef{Owner: "alice_1", Location: "laptop"}])
}

func TestForceResyncAllNoUsers(t *testing.T) {
	s, store, _, _ := newSync(t)

	n, err := s.ForceResyncAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.Commits())
}

func TestForceResyncAllFailureAborts(t *testing.T) {
	s, store, users, keys := newSync(t)
	u := &model.User{Login: "alice", Status: constants.UserStatusActive}
	require.NoError(t, users.Create(u))
	require.NoError(t, keys.Create(&model.GitolitePublicKey{UserID: u.ID, Title: "laptop", Identifier: u.GitoliteIdentifier(), Key: materialOld}))
	store.FailCommit = errors.New("push rejected")

	_, err := s.ForceResyncAll(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.Commits())
	assert.Empty(t, store.Keys())
}
