package auth

import "strings"

// Role 项目成员角色
type Role string

const (
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
	RoleReporter  Role = "reporter"
)

// Permission 代码库权限
type Permission string

const (
	PermRepositoryManage Permission = "repository:manage"
	PermRepositoryCommit Permission = "repository:commit"
	PermRepositoryClone  Permission = "repository:clone"
)

// RolePermissions 每个角色拥有的权限集合
var RolePermissions = map[Role][]Permission{
	RoleManager: {
		"repository:*",
	},
	RoleDeveloper: {
		PermRepositoryCommit,
		PermRepositoryClone,
	},
	RoleReporter: {
		PermRepositoryClone,
	},
}

// Allow 判断一组角色是否包含所需权限，支持通配符
func Allow(roles []string, need Permission) bool {
	for _, p := range collectPermissions(roles) {
		if match(p, need) {
			return true
		}
	}
	return false
}

func collectPermissions(roles []string) []Permission {
	perms := make([]Permission, 0)
	for _, r := range roles {
		if ps, ok := RolePermissions[Role(r)]; ok {
			perms = append(perms, ps...)
		}
	}
	return perms
}

// match "*" 匹配剩余所有段
func match(have, need Permission) bool {
	if have == need || have == "*" {
		return true
	}

	haveParts := strings.Split(string(have), ":")
	needParts := strings.Split(string(need), ":")
	for i, part := range haveParts {
		if part == "*" {
			return true
		}
		if i >= len(needParts) || part != needParts[i] {
			return false
		}
	}
	return len(haveParts) == len(needParts)
}
