package model

import (
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
)

// PluginSettingName gitolite 全局设置在 settings 表中的名称
const PluginSettingName = "plugin_gitolite"

// 全局设置字段
const (
	SettingSSHServerDomain   = "ssh_server_domain"
	SettingHTTPServerDomain  = "http_server_domain"
	SettingHTTPSServerDomain = "https_server_domain"
	SettingStoragePath       = "gitolite_global_storage_path"
	SettingServerPort        = "gitolite_server_port"
	SettingGitConfigEmail    = "git_config_email"
	SettingResyncAllProjects = "gitolite_resync_all_projects"
	SettingConfigureProjects = "gitolite_configure_projects"
	SettingResyncAllSSHKeys  = "gitolite_resync_all_ssh_keys"
	SettingDaemonByDefault   = "gitolite_daemon_by_default"
	SettingHTTPByDefault     = "gitolite_http_by_default"
	SettingNotifyByDefault   = "gitolite_notify_by_default"
	SettingHierarchicalPaths = "gitolite_hierarchical_paths"
)

// Setting 设置表, 每行一个命名的 JSON 值
type Setting struct {
	BaseModel
	Name  string         `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Value datatypes.JSON `gorm:"not null" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

// GlobalSettings 全局设置, 字符串键值
type GlobalSettings map[string]string

// Decode 解析 Setting.Value, 空值返回空 map
func (s *Setting) Decode() (GlobalSettings, error) {
	out := GlobalSettings{}
	if len(s.Value) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Value, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode 写回 Setting.Value
func (s *Setting) Encode(v GlobalSettings) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Value = datatypes.JSON(b)
	return nil
}

// Clone 浅拷贝
func (g GlobalSettings) Clone() GlobalSettings {
	out := make(GlobalSettings, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Bool 字段值为 "true" / "1" 时为真
func (g GlobalSettings) Bool(key string) bool {
	b, err := strconv.ParseBool(g[key])
	return err == nil && b
}

// ExtraDefaults 读取派生配置默认值
func (g GlobalSettings) ExtraDefaults() ExtraDefaults {
	d := ExtraDefaults{
		GitDaemon: g.Bool(SettingDaemonByDefault),
		GitNotify: g.Bool(SettingNotifyByDefault),
	}
	if n, err := strconv.Atoi(g[SettingHTTPByDefault]); err == nil && n >= 0 && n <= 2 {
		d.GitHTTP = int8(n)
	}
	return d
}
