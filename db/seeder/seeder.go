package seeder

import (
	"log"
	"time"

	"go-identity-core/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed resets the database and loads the baseline RBAC data: admin and
// member roles, CRUD permissions per resource, and one admin user.
func Seed(db *gorm.DB) {
	// Cleanup existing records in dependency order
	for _, table := range []string{"sessions", "user_roles", "role_permissions", "user_permissions", "users", "roles", "permissions"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("Failed to delete from %s: %v", table, err)
		}
	}

	adminRole := model.Role{ID: uuid.NewString(), Name: "admin", Description: "full access"}
	memberRole := model.Role{ID: uuid.NewString(), Name: "member", Description: "self-service access"}
	for _, r := range []model.Role{adminRole, memberRole} {
		if err := db.Create(&r).Error; err != nil {
			log.Fatalf("Failed to insert role %s: %v", r.Name, err)
		}
	}

	newPerm := func(name string) model.Permission {
		return model.Permission{ID: uuid.NewString(), Name: name}
	}

	var adminPerms, memberPerms []model.Permission
	for _, resource := range []string{"users", "roles", "permissions", "sessions"} {
		for _, action := range []string{"read", "write", "update", "delete"} {
			adminPerms = append(adminPerms, newPerm(resource+":"+action))
		}
	}
	memberPerms = append(memberPerms, newPerm("profile:read"), newPerm("profile:update"))

	for _, p := range append(adminPerms, memberPerms...) {
		if err := db.Create(&p).Error; err != nil {
			log.Fatalf("Failed to insert permission %s: %v", p.Name, err)
		}
	}

	for _, p := range adminPerms {
		edge := model.RolePermission{ID: uuid.NewString(), RoleID: adminRole.ID, PermissionID: p.ID}
		if err := db.Create(&edge).Error; err != nil {
			log.Fatalf("Failed to assign permission %s to admin role: %v", p.Name, err)
		}
	}
	for _, p := range memberPerms {
		edge := model.RolePermission{ID: uuid.NewString(), RoleID: memberRole.ID, PermissionID: p.ID}
		if err := db.Create(&edge).Error; err != nil {
			log.Fatalf("Failed to assign permission %s to member role: %v", p.Name, err)
		}
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	now := time.Now()
	admin := model.User{
		ID:           uuid.NewString(),
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to insert admin user: %v", err)
	}

	for _, r := range []model.Role{adminRole, memberRole} {
		edge := model.UserRole{ID: uuid.NewString(), UserID: admin.ID, RoleID: r.ID}
		if err := db.Create(&edge).Error; err != nil {
			log.Fatalf("Failed to assign role %s to admin user: %v", r.Name, err)
		}
	}
}
