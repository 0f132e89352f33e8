package dto

// SaveSettingsRequest 保存全局设置, 值均为字符串
type SaveSettingsRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// SettingsResponse 保存后的设置
type SettingsResponse struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

// DispatchRequest 执行批量操作
type DispatchRequest struct {
	Op string `json:"op" binding:"required,oneof=update_all_ssh_keys_forced update_all_projects clear_gitolite_config resync_repository_paths configure_projects"`
}
