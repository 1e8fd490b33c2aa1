package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admin-service/internal/models"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Role{},
		&models.Permission{},
		&models.ModelHasRole{},
		&models.RoleHasPermission{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, name string, status int) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name, Password: "x", Status: status}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedAdmin(t *testing.T, db *gorm.DB, email, name string, isSystem bool) *models.Admin {
	t.Helper()
	admin := &models.Admin{Email: email, Name: name, Password: "x", Status: 1, IsSystem: isSystem}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func seedRole(t *testing.T, db *gorm.DB, name string, roleType models.SubjectType, isSystem bool) *models.Role {
	t.Helper()
	role := &models.Role{Name: name, Type: roleType, Status: 1, IsSystem: isSystem}
	require.NoError(t, db.Create(role).Error)
	return role
}

func seedPermission(t *testing.T, db *gorm.DB, name string, permType models.SubjectType) *models.Permission {
	t.Helper()
	perm := &models.Permission{Name: name, Type: permType}
	require.NoError(t, db.Create(perm).Error)
	return perm
}
