package config

import (
	"go-identity-core/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, log *logrus.Logger) {
	err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.UserPermission{},
		&model.Session{},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	log.Info("Database migrated successfully")
}
