package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitolite-sync/internal/core/events"
	"gitolite-sync/internal/core/keysync"
	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/database/dbtest"
	"gitolite-sync/internal/pkg/gitolite"
	"gitolite-sync/internal/repository"
	"gitolite-sync/pkg/constants"
)

type dispatched struct {
	op  string
	arg any
}

type fakeDispatcher struct {
	calls []dispatched
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, op string, arg any) error {
	d.calls = append(d.calls, dispatched{op, arg})
	return nil
}

type fakeKeys struct {
	removed []gitolite.KeyRef
	stale   []gitolite.KeyRef
	moved   []*model.GitolitePublicKey
}

func (k *fakeKeys) RemoveKeys(ctx context.Context, owner string, refs []gitolite.KeyRef) (int, error) {
	k.removed = append(k.removed, refs...)
	return len(refs), nil
}

func (k *fakeKeys) MoveKeys(ctx context.Context, login string, stale []gitolite.KeyRef, keys []*model.GitolitePublicKey) error {
	k.stale = stale
	k.moved = keys
	return nil
}

type fixture struct {
	bus        *events.Bus
	dispatcher *fakeDispatcher
	keys       *fakeKeys
	users      repository.UserRepository
	projects   repository.ProjectRepository
	publicKeys repository.PublicKeyRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{
		bus:        events.NewBus(),
		dispatcher: &fakeDispatcher{},
		keys:       &fakeKeys{},
		users:      repository.NewUserRepository(db),
		projects:   repository.NewProjectRepository(db),
		publicKeys: repository.NewPublicKeyRepository(db),
	}
	NewUserHook(f.dispatcher, f.keys, f.projects, f.publicKeys, zap.NewNop()).Register(f.bus)
	NewKeyHook(f.dispatcher, zap.NewNop()).Register(f.bus)
	return f
}

func (f *fixture) userInProjects(t *testing.T, n int) (*model.User, []int64) {
	t.Helper()
	u := &model.User{Login: "alice", Status: constants.UserStatusActive}
	require.NoError(t, f.users.Create(u))
	var ids []int64
	for i := 0; i < n; i++ {
		p := &model.Project{Identifier: "p" + string(rune('a'+i)), Name: "p", Status: constants.ProjectStatusActive}
		require.NoError(t, f.projects.Create(p))
		require.NoError(t, f.projects.AddMember(&model.Member{ProjectID: p.ID, UserID: u.ID, Role: constants.RoleDeveloper}))
		ids = append(ids, p.ID)
	}
	return u, ids
}

func TestStatusChangeUpdatesProjects(t *testing.T) {
	f := newFixture(t)
	u, ids := f.userInProjects(t, 2)

	err := f.bus.Publish(context.Background(), events.UserStatusChanged{
		UserID: u.ID, Login: u.Login, From: constants.UserStatusActive, To: constants.UserStatusLocked,
	})
	require.NoError(t, err)

	require.Len(t, f.dispatcher.calls, 1)
	assert.Equal(t, constants.OpUpdateProjects, f.dispatcher.calls[0].op)
	assert.Equal(t, ids, f.dispatcher.calls[0].arg)
}

func TestStatusUnchangedDoesNothing(t *testing.T) {
	f := newFixture(t)
	u, _ := f.userInProjects(t, 1)

	require.NoError(t, f.bus.Publish(context.Background(), events.UserStatusChanged{
		UserID: u.ID, From: constants.UserStatusActive, To: constants.UserStatusActive,
	}))
	assert.Empty(t, f.dispatcher.calls)
}

func TestStatusChangeWithoutProjects(t *testing.T) {
	f := newFixture(t)
	u, _ := f.userInProjects(t, 0)

	require.NoError(t, f.bus.Publish(context.Background(), events.UserStatusChanged{
		UserID: u.ID, From: constants.UserStatusActive, To: constants.UserStatusLocked,
	}))
	assert.Empty(t, f.dispatcher.calls)
}

func TestUserDeletedRemovesKeys(t *testing.T) {
	f := newFixture(t)
	refs := []gitolite.KeyRef{{Owner: "alice_1", Location: "laptop"}, {Owner: "alice_1", Location: "desktop"}}

	require.NoError(t, f.bus.Publish(context.Background(), events.UserDeleted{
		UserID: 1, Login: "alice", Keys: refs, ProjectIDs: []int64{5},
	}))

	assert.Equal(t, refs, f.keys.removed)
	require.Len(t, f.dispatcher.calls, 1)
	assert.Equal(t, []int64{5}, f.dispatcher.calls[0].arg)
}

func TestUserRenamedMovesKeys(t *testing.T) {
	f := newFixture(t)
	u, ids := f.userInProjects(t, 1)
	require.NoError(t, f.publicKeys.Create(&model.GitolitePublicKey{UserID: u.ID, Title: "laptop", Identifier: "alicia_1", Key: "ssh-ed25519 AAAA"}))
	stale := []gitolite.KeyRef{{Owner: "alice_1", Location: "laptop"}}

	require.NoError(t, f.bus.Publish(context.Background(), events.UserRenamed{
		UserID: u.ID, OldLogin: "alice", NewLogin: "alicia", StaleKeys: stale,
	}))

	assert.Equal(t, stale, f.keys.stale)
	require.Len(t, f.keys.moved, 1)
	assert.Equal(t, "alicia_1", f.keys.moved[0].Identifier)
	require.Len(t, f.dispatcher.calls, 1)
	assert.Equal(t, ids, f.dispatcher.calls[0].arg)
}

func TestKeyEventsDispatch(t *testing.T) {
	f := newFixture(t)
	key := model.GitolitePublicKey{Identifier: "alice_1", Title: "laptop", Key: "ssh-ed25519 AAAA"}

	require.NoError(t, f.bus.Publish(context.Background(), events.KeyAdded{Key: key, Login: "alice"}))
	require.NoError(t, f.bus.Publish(context.Background(), events.KeyRemoved{Ref: key.Ref()}))

	require.Len(t, f.dispatcher.calls, 2)
	assert.Equal(t, constants.OpAddSSHKey, f.dispatcher.calls[0].op)
	arg, ok := f.dispatcher.calls[0].arg.(keysync.AddKeyArg)
	require.True(t, ok)
	assert.Equal(t, "alice", arg.Login)
	assert.Equal(t, "laptop", arg.Key.Title)

	assert.Equal(t, constants.OpDeleteSSHKey, f.dispatcher.calls[1].op)
	assert.Equal(t, gitolite.KeyRef{Owner: "alice_1", Location: "laptop"}, f.dispatcher.calls[1].arg)
}
