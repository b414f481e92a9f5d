package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "User":
		return db.AutoMigrate(User{})

	case "Document":
		return db.AutoMigrate(Document{})

	case "DocumentVersion":
		return db.AutoMigrate(DocumentVersion{})
	}
	return nil
}

// AutoMigrateAll 迁移所有表
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(User{}, Document{}, DocumentVersion{})
}
