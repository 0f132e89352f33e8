package gitolite

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	// ConfFile gitolite 主配置
	ConfFile = "conf/gitolite.conf"
	// ProjectConfDir 每个项目一个 include 文件
	ProjectConfDir = "conf/projects"

	projectInclude = `include "projects/*.conf"`
)

// 权限
const (
	PermReadWritePlus = "RW+"
	PermRead          = "R"
)

// Rule 一条访问规则
type Rule struct {
	Perm  string
	Users []string
}

// RepoConf 一个代码库的 gitolite 配置
type RepoConf struct {
	Name  string // 相对存储根目录的路径, 不含 .git
	Rules []Rule
}

var (
	confNameEscaper   = strings.NewReplacer("%", "%25", "/", "%2F")
	confNameUnescaper = strings.NewReplacer("%2F", "/", "%25", "%")
)

// RelativePath conf/projects/<name>.conf
func (c RepoConf) RelativePath() string {
	return ConfPath(c.Name)
}

// ConfPath 项目配置文件路径; '/' 转义为 %2F, 不同名称不会落到同一个文件
func ConfPath(name string) string {
	return path.Join(ProjectConfDir, confNameEscaper.Replace(name)+".conf")
}

// ConfName ConfPath 的逆运算
func ConfName(p string) string {
	return confNameUnescaper.Replace(strings.TrimSuffix(path.Base(p), ".conf"))
}

// Render 输出 gitolite 配置片段, 没有用户的规则被忽略
func (c RepoConf) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "repo %s\n", c.Name)
	for _, r := range c.Rules {
		if len(r.Users) == 0 {
			continue
		}
		users := append([]string(nil), r.Users...)
		sort.Strings(users)
		fmt.Fprintf(&b, "    %-3s = %s\n", r.Perm, strings.Join(users, " "))
	}
	return b.String()
}

// ensureInclude 主配置中加入 projects include
func ensureInclude(conf string) (string, bool) {
	for _, line := range strings.Split(conf, "\n") {
		if strings.TrimSpace(line) == projectInclude {
			return conf, false
		}
	}
	if conf != "" && !strings.HasSuffix(conf, "\n") {
		conf += "\n"
	}
	return conf + "\n" + projectInclude + "\n", true
}
