package services

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admin-service/internal/models"
	"admin-service/internal/repository"
)

const testJWTSecret = "test-secret"

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

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type testEnv struct {
	db     *gorm.DB
	users  *UserService
	admins *AdminService
	rbac   *RBACService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	rbacRepo := repository.NewRBACRepository(db)

	// Minimum bcrypt cost keeps hashing fast in tests.
	return &testEnv{
		db:     db,
		users:  NewUserService(userRepo, 4, log),
		admins: NewAdminService(adminRepo, 4, testJWTSecret, log),
		rbac:   NewRBACService(rbacRepo, userRepo, adminRepo, log),
	}
}
