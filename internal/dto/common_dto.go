package dto

// IDParam ID参数
type IDParam struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// ProjectParam 项目路径参数
type ProjectParam struct {
	ProjectID int64 `uri:"project_id" binding:"required,min=1"`
}

// ProjectItemParam 项目下的子资源
type ProjectItemParam struct {
	ProjectID int64 `uri:"project_id" binding:"required,min=1"`
	ID        int64 `uri:"id" binding:"required,min=1"`
}

// UserKeyParam 用户下的公钥
type UserKeyParam struct {
	UserID int64 `uri:"id" binding:"required,min=1"`
	KeyID  int64 `uri:"key_id" binding:"required,min=1"`
}
