package model

// All 返回需要自动迁移的全部实体，顺序满足外键依赖。
func All() []interface{} {
	return []interface{}{
		&Picture{},
		&User{},
		&Publication{},
		&Reaction{},
		&Subscription{},
	}
}
