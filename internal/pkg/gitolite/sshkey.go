package gitolite

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeyDir 管理仓库中公钥目录
const KeyDir = "keydir"

// KeyRef 管理仓库中公钥的查找键
type KeyRef struct {
	Owner    string `json:"owner"`    // 用户的 gitolite 标识
	Location string `json:"location"` // 公钥标题, keydir 下的子目录
}

func (r KeyRef) String() string {
	return r.Owner + "@" + r.Location
}

// SSHKey 管理仓库中的一条公钥
type SSHKey struct {
	Type     string
	Blob     string
	Comment  string
	Owner    string
	Location string
}

// ParseSSHKey 拆分 "type blob [comment]" 格式的公钥
func ParseSSHKey(material, owner, location string) (SSHKey, error) {
	parts := strings.Fields(material)
	if len(parts) < 2 {
		return SSHKey{}, fmt.Errorf("invalid ssh key material for %s@%s", owner, location)
	}
	k := SSHKey{
		Type:     parts[0],
		Blob:     parts[1],
		Owner:    owner,
		Location: location,
	}
	if len(parts) > 2 {
		k.Comment = strings.Join(parts[2:], " ")
	}
	return k, nil
}

// Ref 查找键
func (k SSHKey) Ref() KeyRef {
	return KeyRef{Owner: k.Owner, Location: k.Location}
}

// Material 写入 .pub 文件的内容
func (k SSHKey) Material() string {
	s := k.Type + " " + k.Blob
	if k.Comment != "" {
		s += " " + k.Comment
	}
	return s
}

// RelativePath keydir/<owner>/<location>/<owner>.pub
func (k SSHKey) RelativePath() string {
	return keyPath(k.Owner, k.Location)
}

func keyPath(owner, location string) string {
	return path.Join(KeyDir, owner, location, owner+".pub")
}

// Fingerprint 校验公钥并返回 SHA256 指纹
func Fingerprint(material string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(material))
	if err != nil {
		return "", err
	}
	return ssh.FingerprintSHA256(pub), nil
}
