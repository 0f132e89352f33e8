// Package settings 校验 gitolite 全局设置, 并在设置提交后执行一次性操作
package settings

import (
	"regexp"
	"strconv"
	"strings"

	"gitolite-sync/internal/core/placement"
	"gitolite-sync/internal/model"
)

// 端口上限沿用既有约定 65537
const (
	minServerPort = 1
	maxServerPort = 65537
)

var emailPattern = regexp.MustCompile(`(?i)^([^@\s]+)@((?:[-a-z0-9]+\.)+[a-z]{2,})$`)

var domainSettings = []string{
	model.SettingHTTPSServerDomain,
	model.SettingSSHServerDomain,
	model.SettingHTTPServerDomain,
}

// Triggers 一次设置写入中被置为 "true" 的一次性操作
type Triggers struct {
	ResyncProjects    bool `json:"resync_projects"`
	ConfigureProjects bool `json:"configure_projects"`
	ResyncSSHKeys     bool `json:"resync_ssh_keys"`
}

// Any 是否有需要执行的操作
func (t Triggers) Any() bool {
	return t.ResyncProjects || t.ConfigureProjects || t.ResyncSSHKeys
}

// Validator 持久化之前修正设置
type Validator struct {
	MailFrom string // git_config_email 为空时使用
}

// Validate 返回修正后的设置和触发的操作; 非法字段回退为 previous 中的值, 从不拒绝写入
func (v Validator) Validate(attempted, previous model.GlobalSettings) (model.GlobalSettings, Triggers) {
	out := attempted.Clone()

	for _, key := range domainSettings {
		domain := ""
		if raw := strings.TrimSpace(out[key]); raw != "" {
			domain = strings.Split(raw, "/")[0]
		}
		if domain == "" {
			fallback(out, previous, key)
		} else {
			out[key] = domain
		}
	}

	if p := strings.TrimSpace(out[model.SettingStoragePath]); p != "" {
		out[model.SettingStoragePath] = placement.EnsureTrailingSlash(p)
	} else {
		fallback(out, previous, model.SettingStoragePath)
	}

	rawPort := strings.TrimSpace(out[model.SettingServerPort])
	if port, err := strconv.Atoi(rawPort); err != nil || port < minServerPort || port > maxServerPort {
		fallback(out, previous, model.SettingServerPort)
	} else {
		out[model.SettingServerPort] = rawPort
	}

	email := strings.TrimSpace(out[model.SettingGitConfigEmail])
	switch {
	case email == "":
		out[model.SettingGitConfigEmail] = strings.ToLower(strings.TrimSpace(v.MailFrom))
	case !emailPattern.MatchString(email):
		fallback(out, previous, model.SettingGitConfigEmail)
	default:
		out[model.SettingGitConfigEmail] = email
	}

	t := Triggers{
		ResyncProjects:    takeTrigger(out, model.SettingResyncAllProjects),
		ConfigureProjects: takeTrigger(out, model.SettingConfigureProjects),
		ResyncSSHKeys:     takeTrigger(out, model.SettingResyncAllSSHKeys),
	}
	return out, t
}

// takeTrigger 读取一次性字段并复位为 "false"
func takeTrigger(s model.GlobalSettings, key string) bool {
	on := s[key] == "true"
	s[key] = "false"
	return on
}

func fallback(out, previous model.GlobalSettings, key string) {
	if v, ok := previous[key]; ok {
		out[key] = v
	} else {
		delete(out, key)
	}
}
