package storage

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFSMoverMove(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/repos/old/proj.git", 0o755))

	m := NewFSMover(fs, zap.NewNop())
	require.NoError(t, m.Move("/data/repos/old/proj.git", "/data/repos/new-team/proj"))

	ok, err := afero.DirExists(fs, "/data/repos/new-team/proj")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = afero.Exists(fs, "/data/repos/old/proj.git")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFSMoverMissingSource(t *testing.T) {
	m := NewFSMover(afero.NewMemMapFs(), zap.NewNop())
	err := m.Move("/data/repos/missing.git", "/data/repos/new")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFSMoverTargetExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/repos/a.git", 0o755))
	require.NoError(t, fs.MkdirAll("/data/repos/b.git", 0o755))

	m := NewFSMover(fs, zap.NewNop())
	err := m.Move("/data/repos/a.git", "/data/repos/b.git")
	assert.ErrorIs(t, err, os.ErrExist)

	ok, _ := afero.DirExists(fs, "/data/repos/a.git")
	assert.True(t, ok)
}

func TestFSMoverSamePath(t *testing.T) {
	m := NewFSMover(afero.NewMemMapFs(), zap.NewNop())
	assert.NoError(t, m.Move("/x", "/x"))
}
