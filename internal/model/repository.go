package model

import (
	"strings"

	"github.com/google/uuid"

	"gitolite-sync/pkg/constants"
)

const RepositoryTableName = "repositories"

// Repository 代码库模型
type Repository struct {
	BaseModel
	ProjectID int64  `gorm:"column:project_id;not null;uniqueIndex" json:"project_id"`
	Type      string `gorm:"size:20;not null;index" json:"type"`
	URL       string `gorm:"column:url;size:500;not null" json:"url"`
	RootURL   string `gorm:"column:root_url;size:500;not null" json:"root_url"`

	// Extra 为空表示代码库尚未生成派生配置
	Extra           *RepositoryExtra `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE" json:"extra,omitempty"`
	PostReceiveURLs []PostReceiveURL `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE" json:"post_receive_urls,omitempty"`
	Project         *Project         `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Repository) TableName() string {
	return RepositoryTableName
}

// IsManaged 代码库路径由本系统计算
func (r *Repository) IsManaged() bool {
	return r.Type == constants.RepositoryTypeGitolite
}

// IsConfigured 是否已有派生配置
func (r *Repository) IsConfigured() bool {
	return r.Extra != nil
}

// RepositoryExtra 代码库派生配置
type RepositoryExtra struct {
	BaseModel
	RepositoryID  int64  `gorm:"column:repository_id;not null;uniqueIndex" json:"repository_id"`
	GitDaemon     bool   `gorm:"not null;default:false" json:"git_daemon"`
	GitHTTP       int8   `gorm:"column:git_http;not null;default:0" json:"git_http"` // 0:关闭 1:https 2:http+https
	GitNotify     bool   `gorm:"not null;default:false" json:"git_notify"`
	DefaultBranch string `gorm:"size:100;not null;default:'master'" json:"default_branch"`
	Key           string `gorm:"size:64;not null" json:"-"` // post-receive 回调签名
}

func (RepositoryExtra) TableName() string {
	return "repository_extras"
}

// ExtraDefaults 新生成派生配置时的默认值, 来自全局设置
type ExtraDefaults struct {
	GitDaemon bool
	GitHTTP   int8
	GitNotify bool
}

// NewExtraForExistingRepo 为已存在(非新建)的代码库生成派生配置
func NewExtraForExistingRepo(repositoryID int64, d ExtraDefaults) *RepositoryExtra {
	return &RepositoryExtra{
		RepositoryID:  repositoryID,
		GitDaemon:     d.GitDaemon,
		GitHTTP:       d.GitHTTP,
		GitNotify:     d.GitNotify,
		DefaultBranch: "master",
		Key:           strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
}
