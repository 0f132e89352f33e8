package dto

// CreateUserRequest 创建用户
type CreateUserRequest struct {
	Login  string `json:"login" binding:"required,max=100"`
	Mail   string `json:"mail" binding:"omitempty,email"`
	Status int8   `json:"status" binding:"omitempty,oneof=1 2 3"`
}

// UpdateUserRequest 更新用户, 只修改非空字段
type UpdateUserRequest struct {
	Login  *string `json:"login" binding:"omitempty,min=1,max=100"`
	Mail   *string `json:"mail" binding:"omitempty,email"`
	Status *int8   `json:"status" binding:"omitempty,oneof=1 2 3"`
}

// UserResponse 用户信息
type UserResponse struct {
	ID                 int64  `json:"id"`
	Login              string `json:"login"`
	Mail               string `json:"mail"`
	Status             int8   `json:"status"`
	StatusName         string `json:"status_name"`
	GitoliteIdentifier string `json:"gitolite_identifier"`
}
