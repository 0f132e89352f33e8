package model

import (
	"regexp"
	"strconv"
	"strings"

	"gitolite-sync/pkg/constants"
)

const UserTableName = "users"

// User 用户模型
type User struct {
	BaseModel
	Login  string `gorm:"size:100;not null;uniqueIndex" json:"login"`
	Mail   string `gorm:"size:255" json:"mail"`
	Status int8   `gorm:"not null;default:1;index" json:"status"`

	// Relations
	PublicKeys []GitolitePublicKey `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"public_keys,omitempty"`
	Members    []Member            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return UserTableName
}

// IsActive 只有激活用户才会写入 gitolite 权限
func (u *User) IsActive() bool {
	return u.Status == constants.UserStatusActive
}

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
	invalidIDChars  = regexp.MustCompile(`[^0-9a-zA-Z\-]`)
)

// underscore CamelCase -> camel_case, '-' -> '_'
func underscore(s string) string {
	s = strings.ReplaceAll(s, "::", "/")
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// GitoliteIdentifier gitolite 中的用户标识: 规范化的 login + "_" + id.
// login 可能被修改, id 不会, 因此标识在改名前后始终唯一.
func (u *User) GitoliteIdentifier() string {
	return invalidIDChars.ReplaceAllString(underscore(u.Login), "_") + "_" + strconv.FormatInt(u.ID, 10)
}
