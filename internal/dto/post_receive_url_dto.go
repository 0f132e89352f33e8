package dto

// CreatePostReceiveURLRequest 创建推送回调
type CreatePostReceiveURLRequest struct {
	URL    string `json:"url" binding:"required,url,max=500"`
	Mode   string `json:"mode" binding:"omitempty,oneof=github get"`
	Active *bool  `json:"active"`
}

// UpdatePostReceiveURLRequest 修改推送回调
type UpdatePostReceiveURLRequest struct {
	URL  *string `json:"url" binding:"omitempty,url,max=500"`
	Mode *string `json:"mode" binding:"omitempty,oneof=github get"`
}
