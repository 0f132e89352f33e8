package model

const PostReceiveURLTableName = "repository_post_receive_urls"

// PostReceiveURL 推送后回调地址
type PostReceiveURL struct {
	BaseModel
	RepositoryID int64  `gorm:"column:repository_id;not null;index" json:"repository_id"`
	Active       int8   `gorm:"not null;default:1" json:"active"` // 1:启用 0:禁用
	URL          string `gorm:"column:url;size:500;not null" json:"url"`
	Mode         string `gorm:"size:20;not null;default:'github'" json:"mode"`
}

func (PostReceiveURL) TableName() string {
	return PostReceiveURLTableName
}

// IsActive 是否启用
func (p *PostReceiveURL) IsActive() bool {
	return p.Active == 1
}

// Toggle 启用 <-> 禁用
func (p *PostReceiveURL) Toggle() {
	if p.IsActive() {
		p.Active = 0
	} else {
		p.Active = 1
	}
}
