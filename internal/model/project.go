package model

import (
	"gitolite-sync/internal/pkg/auth"
	"gitolite-sync/pkg/constants"
)

const ProjectTableName = "projects"

// Project 项目模型, 通过 ParentID 形成树
type Project struct {
	BaseModel
	Identifier string `gorm:"size:100;not null;uniqueIndex" json:"identifier"`
	Name       string `gorm:"size:255;not null" json:"name"`
	ParentID   *int64 `gorm:"column:parent_id;index" json:"parent_id"`
	Status     int8   `gorm:"not null;default:1;index" json:"status"`

	// Relations
	Repository *Repository `gorm:"foreignKey:ProjectID" json:"repository,omitempty"`
	Members    []Member    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// IsActive 非归档项目
func (p *Project) IsActive() bool {
	return p.Status == constants.ProjectStatusActive
}

// HasManagedRepository 项目代码库由本系统托管
func (p *Project) HasManagedRepository() bool {
	return p.Repository != nil && p.Repository.IsManaged()
}

// Member 项目成员
type Member struct {
	BaseModel
	ProjectID int64  `gorm:"column:project_id;not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    int64  `gorm:"column:user_id;not null;uniqueIndex:idx_project_user" json:"user_id"`
	Role      string `gorm:"size:20;not null;default:'developer'" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// CanManageRepository manager 可以管理代码库
func (m *Member) CanManageRepository() bool {
	return auth.Allow([]string{m.Role}, auth.PermRepositoryManage)
}

// CanCommit 可推送
func (m *Member) CanCommit() bool {
	return auth.Allow([]string{m.Role}, auth.PermRepositoryCommit)
}

// CanClone 可克隆
func (m *Member) CanClone() bool {
	return auth.Allow([]string{m.Role}, auth.PermRepositoryClone)
}
