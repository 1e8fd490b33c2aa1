package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

func createPermission(t *testing.T, env *testEnv, name string, permType models.SubjectType) *models.Permission {
	t.Helper()
	perm, err := env.rbac.CreatePermission(&models.CreatePermissionRequest{Name: name, Type: permType})
	require.NoError(t, err)
	return perm
}

func TestCreateRoleValidation(t *testing.T) {
	env := newTestEnv(t)

	perm := createPermission(t, env, "users.view", models.SubjectAdmin)
	userPerm := createPermission(t, env, "orders.view", models.SubjectUser)

	role, err := env.rbac.CreateRole(&models.CreateRoleRequest{
		Name:          "editor",
		Type:          models.SubjectAdmin,
		PermissionIDs: []uuid.UUID{perm.ID},
	})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 1)

	// Duplicate name.
	_, err = env.rbac.CreateRole(&models.CreateRoleRequest{Name: "editor", Type: models.SubjectAdmin})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	// Permission of the wrong type.
	_, err = env.rbac.CreateRole(&models.CreateRoleRequest{
		Name:          "mixed",
		Type:          models.SubjectAdmin,
		PermissionIDs: []uuid.UUID{userPerm.ID},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// Nonexistent permission id.
	_, err = env.rbac.CreateRole(&models.CreateRoleRequest{
		Name:          "ghost",
		Type:          models.SubjectAdmin,
		PermissionIDs: []uuid.UUID{uuid.New()},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestUpdateRoleTypeImmutable(t *testing.T) {
	env := newTestEnv(t)

	role, err := env.rbac.CreateRole(&models.CreateRoleRequest{Name: "editor", Type: models.SubjectAdmin})
	require.NoError(t, err)

	userType := models.SubjectUser
	_, err = env.rbac.UpdateRole(role.ID, &models.UpdateRoleRequest{Type: &userType})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// Restating the current type is a no-op, not an error.
	adminType := models.SubjectAdmin
	newName := "editors"
	updated, err := env.rbac.UpdateRole(role.ID, &models.UpdateRoleRequest{Type: &adminType, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "editors", updated.Name)
}

func TestBindRoleTypeMatch(t *testing.T) {
	env := newTestEnv(t)

	adminRole, err := env.rbac.CreateRole(&models.CreateRoleRequest{Name: "admin-editor", Type: models.SubjectAdmin})
	require.NoError(t, err)

	user, err := env.users.Create(&models.CreateUserRequest{
		Email: "user@example.com", Name: "User", Password: "password-one",
	})
	require.NoError(t, err)
	admin, err := env.admins.Create(&models.CreateAdminRequest{
		Email: "ops@example.com", Name: "Ops", Password: "password-one",
	})
	require.NoError(t, err)

	// Admin role onto a user subject: type mismatch.
	_, err = env.rbac.BindRoleToSubject(adminRole.ID, user.ID, models.SubjectUser)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	binding, err := env.rbac.BindRoleToSubject(adminRole.ID, admin.ID, models.SubjectAdmin)
	require.NoError(t, err)
	assert.Equal(t, adminRole.ID, binding.RoleID)

	// Duplicate binding.
	_, err = env.rbac.BindRoleToSubject(adminRole.ID, admin.ID, models.SubjectAdmin)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	// Nonexistent subject.
	_, err = env.rbac.BindRoleToSubject(adminRole.ID, uuid.New(), models.SubjectAdmin)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUnbindRole(t *testing.T) {
	env := newTestEnv(t)

	role, err := env.rbac.CreateRole(&models.CreateRoleRequest{Name: "editor", Type: models.SubjectAdmin})
	require.NoError(t, err)
	admin, err := env.admins.Create(&models.CreateAdminRequest{
		Email: "ops@example.com", Name: "Ops", Password: "password-one",
	})
	require.NoError(t, err)

	_, err = env.rbac.BindRoleToSubject(role.ID, admin.ID, models.SubjectAdmin)
	require.NoError(t, err)

	require.NoError(t, env.rbac.UnbindRoleFromSubject(role.ID, admin.ID, models.SubjectAdmin))

	// Removing it again reports not found.
	err = env.rbac.UnbindRoleFromSubject(role.ID, admin.ID, models.SubjectAdmin)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestSetRolePermissionsValidatesType(t *testing.T) {
	env := newTestEnv(t)

	role, err := env.rbac.CreateRole(&models.CreateRoleRequest{Name: "editor", Type: models.SubjectAdmin})
	require.NoError(t, err)
	adminPerm := createPermission(t, env, "users.view", models.SubjectAdmin)
	userPerm := createPermission(t, env, "orders.view", models.SubjectUser)

	err = env.rbac.SetRolePermissions(role.ID, []uuid.UUID{adminPerm.ID, userPerm.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// Failed replace left the previous (empty) set intact.
	got, err := env.rbac.GetRole(role.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)

	require.NoError(t, env.rbac.SetRolePermissions(role.ID, []uuid.UUID{adminPerm.ID}))
	got, err = env.rbac.GetRole(role.ID)
	require.NoError(t, err)
	assert.Len(t, got.Permissions, 1)
}

func TestCreatePermissionParentRules(t *testing.T) {
	env := newTestEnv(t)

	parent := createPermission(t, env, "users", models.SubjectAdmin)

	child, err := env.rbac.CreatePermission(&models.CreatePermissionRequest{
		Name: "users.view", Type: models.SubjectAdmin, ParentID: &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentID)

	// Parent of the other type.
	_, err = env.rbac.CreatePermission(&models.CreatePermissionRequest{
		Name: "orders.view", Type: models.SubjectUser, ParentID: &parent.ID,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// Nonexistent parent.
	ghost := uuid.New()
	_, err = env.rbac.CreatePermission(&models.CreatePermissionRequest{
		Name: "users.delete", Type: models.SubjectAdmin, ParentID: &ghost,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	// Duplicate name.
	_, err = env.rbac.CreatePermission(&models.CreatePermissionRequest{
		Name: "users.view", Type: models.SubjectAdmin,
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestListPermissionsAndRoles(t *testing.T) {
	env := newTestEnv(t)

	adminPerm := createPermission(t, env, "users.view", models.SubjectAdmin)
	createPermission(t, env, "orders.view", models.SubjectUser)

	adminRole, err := env.rbac.CreateRole(&models.CreateRoleRequest{
		Name: "admin-viewer", Type: models.SubjectAdmin, PermissionIDs: []uuid.UUID{adminPerm.ID},
	})
	require.NoError(t, err)
	_, err = env.rbac.CreateRole(&models.CreateRoleRequest{Name: "user-viewer", Type: models.SubjectUser})
	require.NoError(t, err)

	matrix, err := env.rbac.ListPermissionsAndRoles(models.SubjectAdmin)
	require.NoError(t, err)
	require.Len(t, matrix.Permissions, 1)
	require.Len(t, matrix.Roles, 1)
	require.Len(t, matrix.RolePermissions, 1)
	assert.Equal(t, adminRole.ID, matrix.RolePermissions[0].RoleID)

	// Invalid subject type.
	_, err = env.rbac.ListPermissionsAndRoles("robot")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestDeleteRolesZeroEffective(t *testing.T) {
	env := newTestEnv(t)

	system := &models.Role{Name: "superadmin", Type: models.SubjectAdmin, Status: 1, IsSystem: true}
	require.NoError(t, env.db.Create(system).Error)

	_, err := env.rbac.DeleteRoles([]uuid.UUID{system.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

// The end-to-end editor scenario: create a role with permissions, bind it,
// confirm effective permissions, then remove everything.
func TestEditorRoleLifecycle(t *testing.T) {
	env := newTestEnv(t)

	view := createPermission(t, env, "users.view", models.SubjectAdmin)
	update := createPermission(t, env, "users.update", models.SubjectAdmin)

	editor, err := env.rbac.CreateRole(&models.CreateRoleRequest{
		Name: "editor", Type: models.SubjectAdmin, PermissionIDs: []uuid.UUID{view.ID, update.ID},
	})
	require.NoError(t, err)

	admin, err := env.admins.Create(&models.CreateAdminRequest{
		Email: "ops@example.com", Name: "Ops", Password: "password-one",
	})
	require.NoError(t, err)

	_, err = env.rbac.BindRoleToSubject(editor.ID, admin.ID, models.SubjectAdmin)
	require.NoError(t, err)

	perms, err := env.rbac.EffectivePermissions(admin.ID, models.SubjectAdmin)
	require.NoError(t, err)
	require.Len(t, perms.Roles, 1)
	assert.Len(t, perms.Permissions, 2)

	// Deleting the role cascades to the binding.
	count, err := env.rbac.DeleteRoles([]uuid.UUID{editor.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	perms, err = env.rbac.EffectivePermissions(admin.ID, models.SubjectAdmin)
	require.NoError(t, err)
	assert.Empty(t, perms.Roles)
	assert.Empty(t, perms.Permissions)
}
