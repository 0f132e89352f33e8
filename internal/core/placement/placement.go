// Package placement 计算托管代码库在存储根目录下的路径
package placement

import (
	"net/url"
	"path"
	"strings"

	"gitolite-sync/internal/model"
	"gitolite-sync/internal/pkg/config"
)

// Policy 托管路径规则
type Policy struct {
	StorageRoot  string // 总是以 "/" 结尾
	Hierarchical bool   // 为 true 时按项目树嵌套目录
	Suffix       string // 例如 ".git"
}

// NewPolicy 由全局设置生成规则, 设置中没有存储路径时使用配置文件
func NewPolicy(settings model.GlobalSettings, cfg config.GitoliteConfig) Policy {
	root := settings[model.SettingStoragePath]
	if root == "" {
		root = cfg.StorageRoot
	}
	return Policy{
		StorageRoot:  EnsureTrailingSlash(root),
		Hierarchical: settings.Bool(model.SettingHierarchicalPaths),
		Suffix:       cfg.RepoSuffix,
	}
}

// EnsureTrailingSlash 目录路径统一以 "/" 结尾
func EnsureTrailingSlash(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// RepoName 相对存储根目录的名称, 不含后缀; chain 为从根项目到当前项目的 identifier
func (p Policy) RepoName(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	if !p.Hierarchical {
		return chain[len(chain)-1]
	}
	return path.Join(chain...)
}

// ManagedPath 代码库应在的绝对路径
func (p Policy) ManagedPath(chain []string) string {
	return p.StorageRoot + p.RepoName(chain) + p.Suffix
}

// RelativeName 相对 root 的路径, 去掉 .git 后缀, 保留中间目录; 不在 root 下时保留完整路径
func RelativeName(root, p string) string {
	rel := p
	if after, ok := strings.CutPrefix(p, strings.TrimSuffix(root, "/")+"/"); ok {
		rel = strings.Trim(after, "/")
	}
	return strings.TrimSuffix(rel, ".git")
}

// URLPath 从代码库 url 中取出文件系统路径; 没有 scheme 时原样返回
func URLPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	return u.Path
}
