package constants

import "fmt"

// 用户状态
const (
	UserStatusActive     int8 = 1
	UserStatusRegistered int8 = 2
	UserStatusLocked     int8 = 3
)

var userStatusName = map[int8]string{
	UserStatusActive:     "active",
	UserStatusRegistered: "registered",
	UserStatusLocked:     "locked",
}

// UserStatusToString int8 → string
func UserStatusToString(status int8) string {
	if name, ok := userStatusName[status]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", status)
}

// 项目状态
const (
	ProjectStatusActive   int8 = 1
	ProjectStatusArchived int8 = 9
)

// 代码库类型
const (
	RepositoryTypeGitolite = "gitolite" // 由本系统托管路径的代码库
	RepositoryTypeExternal = "external"
)

// 项目成员角色
const (
	RoleManager   = "manager"
	RoleDeveloper = "developer"
	RoleReporter  = "reporter"
)

// Post-receive URL 模式
const (
	PostReceiveModeGithub = "github"
	PostReceiveModeGet    = "get"
)

// 启用状态
const (
	StatusEnabled  int8 = 1
	StatusDisabled int8 = 0
)

// JWT 相关
const (
	JWTContextKey = "jwt_subject"
	JWTTypeAccess = "access"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)
