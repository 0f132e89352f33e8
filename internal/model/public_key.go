package model

import (
	"regexp"
	"strings"

	"gitolite-sync/internal/pkg/gitolite"
)

const PublicKeyTableName = "gitolite_public_keys"

// GitolitePublicKey 用户的 SSH 公钥
type GitolitePublicKey struct {
	BaseModel
	UserID      int64  `gorm:"column:user_id;not null;uniqueIndex:idx_user_title" json:"user_id"`
	Title       string `gorm:"size:60;not null;uniqueIndex:idx_user_title" json:"title"`
	Identifier  string `gorm:"size:120;not null;index" json:"identifier"`
	Key         string `gorm:"type:text;not null" json:"key"`
	Fingerprint string `gorm:"size:128;index" json:"fingerprint"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (GitolitePublicKey) TableName() string {
	return PublicKeyTableName
}

var invalidTitleChars = regexp.MustCompile(`[^0-9a-zA-Z_\-]+`)

// ValidTitle 规范化公钥标题, 标题同时是 keydir 下的目录名
func ValidTitle(title string) string {
	t := invalidTitleChars.ReplaceAllString(strings.TrimSpace(title), "_")
	t = strings.Trim(t, "_")
	if t == "" {
		return "key"
	}
	if len(t) > 60 {
		t = t[:60]
	}
	return t
}

// Ref 管理仓库中的查找键 (owner=identifier, location=title)
func (k *GitolitePublicKey) Ref() gitolite.KeyRef {
	return gitolite.KeyRef{Owner: k.Identifier, Location: k.Title}
}

// AdminKey 转换为管理仓库条目
func (k *GitolitePublicKey) AdminKey() (gitolite.SSHKey, error) {
	return gitolite.ParseSSHKey(k.Key, k.Identifier, k.Title)
}
