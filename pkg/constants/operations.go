package constants

// 批量操作名称, 交由 dispatch.Dispatcher 执行
const (
	OpAddSSHKey              = "add_ssh_key"
	OpDeleteSSHKey           = "delete_ssh_key"
	OpUpdateAllSSHKeysForced = "update_all_ssh_keys_forced"
	OpUpdateProjects         = "update_projects"
	OpUpdateAllProjects      = "update_all_projects"
	OpClearGitoliteConfig    = "clear_gitolite_config"
	OpResyncRepositoryPaths  = "resync_repository_paths"
	OpConfigureProjects      = "configure_projects"
)
