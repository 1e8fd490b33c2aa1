package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admin-service/internal/models"
)

type RBACRepository interface {
	// Roles
	CreateRole(role *models.Role, permissionIDs []uuid.UUID) error
	GetRoleByID(id uuid.UUID) (*models.Role, error)
	GetRoleByName(name string) (*models.Role, error)
	UpdateRole(id uuid.UUID, updates map[string]interface{}) error
	ListRoles(q models.ListQuery) (*models.Page[models.Role], error)
	ListRolesByType(subjectType models.SubjectType) ([]models.Role, error)
	// DeleteRolesCascade removes roles together with their junction and
	// binding rows in one transaction. is_system roles are skipped.
	DeleteRolesCascade(ids []uuid.UUID) (int64, error)
	BulkUpdateRoleField(ids []uuid.UUID, field models.FieldUpdate) (int64, error)

	// Permissions
	CreatePermission(permission *models.Permission) error
	GetPermissionByID(id uuid.UUID) (*models.Permission, error)
	GetPermissionByName(name string) (*models.Permission, error)
	ListPermissions(subjectType models.SubjectType) ([]models.Permission, error)
	GetPermissionsByIDs(ids []uuid.UUID) ([]models.Permission, error)

	// Role-permission junction
	SetRolePermissions(roleID uuid.UUID, permissionIDs []uuid.UUID) error
	ListRolePermissions(roleIDs []uuid.UUID) ([]models.RoleHasPermission, error)

	// Subject bindings
	CreateBinding(binding *models.ModelHasRole) error
	GetBinding(roleID, modelID uuid.UUID, modelType models.SubjectType) (*models.ModelHasRole, error)
	DeleteBinding(roleID, modelID uuid.UUID, modelType models.SubjectType) (int64, error)
	ListSubjectBindings(modelID uuid.UUID, modelType models.SubjectType) ([]models.ModelHasRole, error)
	CountRoleBindings(roleID uuid.UUID) (int64, error)
	EffectivePermissions(modelID uuid.UUID, modelType models.SubjectType) (*models.EffectivePermissions, error)
}

type rbacRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) RBACRepository {
	return &rbacRepository{db: db}
}

// ============================================================================
// ROLES
// ============================================================================

func (r *rbacRepository) CreateRole(role *models.Role, permissionIDs []uuid.UUID) error {
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			rp := models.RoleHasPermission{RoleID: role.ID, PermissionID: permID}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *rbacRepository) GetRoleByID(id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.Where("id = ?", id).Preload("Permissions").First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *rbacRepository) GetRoleByName(name string) (*models.Role, error) {
	var role models.Role
	// Name uniqueness is case-sensitive per schema.
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *rbacRepository) UpdateRole(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Role{}).Where("id = ?", id).Updates(updates).Error
}

func (r *rbacRepository) ListRoles(q models.ListQuery) (*models.Page[models.Role], error) {
	return FindAllPaginate[models.Role](r.db, RoleSchema, q)
}

func (r *rbacRepository) ListRolesByType(subjectType models.SubjectType) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.Where("type = ?", subjectType).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *rbacRepository) DeleteRolesCascade(ids []uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var deletable []uuid.UUID
		if err := tx.Model(&models.Role{}).
			Where("id IN ? AND is_system = ?", ids, false).
			Pluck("id", &deletable).Error; err != nil {
			return err
		}
		if len(deletable) == 0 {
			return nil
		}

		// Junction and binding rows must never outlive their role.
		if err := tx.Where("role_id IN ?", deletable).Delete(&models.RoleHasPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id IN ?", deletable).Delete(&models.ModelHasRole{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", deletable).Delete(&models.Role{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

func (r *rbacRepository) BulkUpdateRoleField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	return BulkUpdateField[models.Role](r.db, RoleSchema, ids, field)
}

// ============================================================================
// PERMISSIONS
// ============================================================================

func (r *rbacRepository) CreatePermission(permission *models.Permission) error {
	permission.CreatedAt = time.Now()
	permission.UpdatedAt = time.Now()
	return r.db.Create(permission).Error
}

func (r *rbacRepository) GetPermissionByID(id uuid.UUID) (*models.Permission, error) {
	var permission models.Permission
	if err := r.db.Where("id = ?", id).First(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *rbacRepository) GetPermissionByName(name string) (*models.Permission, error) {
	var permission models.Permission
	if err := r.db.Where("name = ?", name).First(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *rbacRepository) ListPermissions(subjectType models.SubjectType) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.Where("type = ?", subjectType).
		Order("name ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *rbacRepository) GetPermissionsByIDs(ids []uuid.UUID) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.Where("id IN ?", ids).Find(&permissions).Error
	return permissions, err
}

// ============================================================================
// ROLE-PERMISSION JUNCTION
// ============================================================================

func (r *rbacRepository) SetRolePermissions(roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	// Replace the full set atomically; a failure mid-sequence must leave the
	// previous set intact.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RoleHasPermission{}).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			rp := models.RoleHasPermission{RoleID: roleID, PermissionID: permID}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *rbacRepository) ListRolePermissions(roleIDs []uuid.UUID) ([]models.RoleHasPermission, error) {
	rows := make([]models.RoleHasPermission, 0)
	if len(roleIDs) == 0 {
		return rows, nil
	}
	err := r.db.Where("role_id IN ?", roleIDs).Find(&rows).Error
	return rows, err
}

// ============================================================================
// SUBJECT BINDINGS
// ============================================================================

func (r *rbacRepository) CreateBinding(binding *models.ModelHasRole) error {
	binding.CreatedAt = time.Now()
	binding.UpdatedAt = time.Now()
	return r.db.Create(binding).Error
}

func (r *rbacRepository) GetBinding(roleID, modelID uuid.UUID, modelType models.SubjectType) (*models.ModelHasRole, error) {
	var binding models.ModelHasRole
	err := r.db.Where("role_id = ? AND model_id = ? AND model_type = ?", roleID, modelID, modelType).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *rbacRepository) DeleteBinding(roleID, modelID uuid.UUID, modelType models.SubjectType) (int64, error) {
	result := r.db.Where("role_id = ? AND model_id = ? AND model_type = ?", roleID, modelID, modelType).
		Delete(&models.ModelHasRole{})
	return result.RowsAffected, result.Error
}

func (r *rbacRepository) ListSubjectBindings(modelID uuid.UUID, modelType models.SubjectType) ([]models.ModelHasRole, error) {
	var bindings []models.ModelHasRole
	err := r.db.Where("model_id = ? AND model_type = ?", modelID, modelType).
		Find(&bindings).Error
	return bindings, err
}

func (r *rbacRepository) CountRoleBindings(roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.ModelHasRole{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

func (r *rbacRepository) EffectivePermissions(modelID uuid.UUID, modelType models.SubjectType) (*models.EffectivePermissions, error) {
	bindings, err := r.ListSubjectBindings(modelID, modelType)
	if err != nil {
		return nil, err
	}

	result := &models.EffectivePermissions{
		ModelID:     modelID,
		ModelType:   modelType,
		Roles:       make([]models.Role, 0, len(bindings)),
		Permissions: make([]models.Permission, 0),
	}

	permissionSet := make(map[uuid.UUID]models.Permission)
	for _, binding := range bindings {
		var role models.Role
		if err := r.db.Where("id = ?", binding.RoleID).Preload("Permissions").First(&role).Error; err != nil {
			return nil, err
		}
		result.Roles = append(result.Roles, role)
		for _, perm := range role.Permissions {
			permissionSet[perm.ID] = perm
		}
	}

	for _, perm := range permissionSet {
		result.Permissions = append(result.Permissions, perm)
	}
	return result, nil
}
