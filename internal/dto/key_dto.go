package dto

// CreateKeyRequest 添加 SSH 公钥
type CreateKeyRequest struct {
	Title string `json:"title" binding:"required,max=255"`
	Key   string `json:"key" binding:"required"`
}

// KeyResponse SSH 公钥
type KeyResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Title       string `json:"title"`
	Identifier  string `json:"identifier"`
	Fingerprint string `json:"fingerprint"`
}
