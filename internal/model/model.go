package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名执行建表迁移
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Note":
		return db.AutoMigrate(Note{})

	case "ShareLink":
		return db.AutoMigrate(ShareLink{})

	case "User":
		return db.AutoMigrate(User{})
	}
	return nil
}

// AutoMigrateAll 迁移全部模型
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Note{}, ShareLink{}, User{})
}
