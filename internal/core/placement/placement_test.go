package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/config"
)

func TestManagedPath(t *testing.T) {
	chain := []string{"new-team", "proj"}

	hier := Policy{StorageRoot: "/data/repos/", Hierarchical: true}
	assert.Equal(t, "/data/repos/new-team/proj", hier.ManagedPath(chain))
	assert.Equal(t, "new-team/proj", hier.RepoName(chain))

	flat := Policy{StorageRoot: "/data/repos/", Suffix: ".git"}
	assert.Equal(t, "/data/repos/proj.git", flat.ManagedPath(chain))
	assert.Equal(t, "", flat.RepoName(nil))
}

func TestNewPolicy(t *testing.T) {
	cfg := config.GitoliteConfig{StorageRoot: "/srv/git", RepoSuffix: ".git"}

	p := NewPolicy(model.GlobalSettings{}, cfg)
	assert.Equal(t, "/srv/git/", p.StorageRoot)
	assert.False(t, p.Hierarchical)

	p = NewPolicy(model.GlobalSettings{
		model.SettingStoragePath:       "/data/repos",
		model.SettingHierarchicalPaths: "true",
	}, cfg)
	assert.Equal(t, "/data/repos/", p.StorageRoot)
	assert.True(t, p.Hierarchical)
	assert.Equal(t, ".git", p.Suffix)
}

func TestRelativeName(t *testing.T) {
	assert.Equal(t, "old/proj", RelativeName("/data/repos/", "/data/repos/old/proj.git"))
	assert.Equal(t, "new-team/proj", RelativeName("/data/repos", "/data/repos/new-team/proj"))
	assert.Equal(t, "proj", RelativeName("/data/repos/", "/data/repos/proj.git"))
	assert.Equal(t, "/data/repos2/x", RelativeName("/data/repos", "/data/repos2/x.git"))
	assert.Equal(t, "/data/repos2/x", RelativeName("/data/repos/", "/data/repos2/x"))
}

func TestURLPath(t *testing.T) {
	assert.Equal(t, "/data/repos/old/proj.git", URLPath("/data/repos/old/proj.git"))
	assert.Equal(t, "/data/repos/old/proj.git", URLPath("file:///data/repos/old/proj.git"))
}
