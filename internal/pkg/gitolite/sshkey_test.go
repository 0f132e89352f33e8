package gitolite

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestParseSSHKey(t *testing.T) {
	k, err := ParseSSHKey("  ssh-rsa AAAAB3Nz user@host extra \n", "bob_2", "work")
	require.NoError(t, err)
	assert.Equal(t, "ssh-rsa", k.Type)
	assert.Equal(t, "AAAAB3Nz", k.Blob)
	assert.Equal(t, "user@host extra", k.Comment)
	assert.Equal(t, KeyRef{Owner: "bob_2", Location: "work"}, k.Ref())
	assert.Equal(t, "ssh-rsa AAAAB3Nz user@host extra", k.Material())
	assert.Equal(t, "keydir/bob_2/work/bob_2.pub", k.RelativePath())
	assert.Equal(t, "bob_2@work", k.Ref().String())

	_, err = ParseSSHKey("ssh-rsa", "bob_2", "work")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	material := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))

	fp, err := Fingerprint(material)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fp, "SHA256:"))

	_, err = Fingerprint("not a key")
	assert.Error(t, err)
}

func TestRepoConfRender(t *testing.T) {
	c := RepoConf{
		Name: "team/proj",
		Rules: []Rule{
			{Perm: PermReadWritePlus, Users: []string{"carol_3", "alice_1"}},
			{Perm: PermRead, Users: []string{"dave_4"}},
			{Perm: PermRead},
		},
	}
	assert.Equal(t, "repo team/proj\n    RW+ = alice_1 carol_3\n    R   = dave_4\n", c.Render())
	assert.Equal(t, "conf/projects/team%2Fproj.conf", c.RelativePath())
}

func TestConfPathIsInjective(t *testing.T) {
	names := []string{"new/team", "new-team", "new%2Fteam", "a/b/c", "a%/b"}
	seen := map[string]string{}
	for _, n := range names {
		p := ConfPath(n)
		if other, ok := seen[p]; ok {
			t.Fatalf("%q and %q share %s", n, other, p)
		}
		seen[p] = n
		assert.Equal(t, n, ConfName(p))
	}
}

func TestEnsureInclude(t *testing.T) {
	out, changed := ensureInclude("repo testing\n    RW+ = @all")
	assert.True(t, changed)
	assert.Equal(t, "repo testing\n    RW+ = @all\n\ninclude \"projects/*.conf\"\n", out)

	again, changed := ensureInclude(out)
	assert.False(t, changed)
	assert.Equal(t, out, again)
}
