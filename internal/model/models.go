package model

// All 返回需要迁移的全部模型, 顺序即建表顺序
func All() []interface{} {
	return []interface{}{
		&User{},
		&GitolitePublicKey{},
		&Project{},
		&Member{},
		&Repository{},
		&RepositoryExtra{},
		&PostReceiveURL{},
		&Setting{},
	}
}
