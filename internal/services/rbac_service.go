package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
	"admin-service/internal/repository"
)

// RBACService manages roles, permissions and their bindings, enforcing the
// cross-type consistency rules: a role only binds to subjects and
// permissions of its own type, names are unique, and system roles survive
// bulk mutation.
type RBACService struct {
	repo      repository.RBACRepository
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	log       *logrus.Entry
}

func NewRBACService(repo repository.RBACRepository, userRepo repository.UserRepository, adminRepo repository.AdminRepository, log *logrus.Entry) *RBACService {
	return &RBACService{repo: repo, userRepo: userRepo, adminRepo: adminRepo, log: log}
}

// ListPermissionsAndRoles returns one consistent snapshot for building a
// permission matrix: every permission and role of the given subject type and
// the junction rows restricted to those roles.
func (s *RBACService) ListPermissionsAndRoles(subjectType models.SubjectType) (*models.PermissionMatrix, error) {
	if !subjectType.Valid() {
		return nil, apperr.NewValidation("type must be one of: admin, user", nil)
	}

	permissions, err := s.repo.ListPermissions(subjectType)
	if err != nil {
		return nil, apperr.NewInternal("failed to list permissions", err)
	}
	roles, err := s.repo.ListRolesByType(subjectType)
	if err != nil {
		return nil, apperr.NewInternal("failed to list roles", err)
	}

	roleIDs := make([]uuid.UUID, len(roles))
	for i, role := range roles {
		roleIDs[i] = role.ID
	}
	junctions, err := s.repo.ListRolePermissions(roleIDs)
	if err != nil {
		return nil, apperr.NewInternal("failed to list role permissions", err)
	}

	return &models.PermissionMatrix{
		Permissions:     permissions,
		Roles:           roles,
		RolePermissions: junctions,
	}, nil
}

func (s *RBACService) CreateRole(req *models.CreateRoleRequest) (*models.Role, error) {
	if _, err := s.repo.GetRoleByName(req.Name); err == nil {
		return nil, apperr.NewConflict("role with this name already exists", map[string]interface{}{"name": req.Name})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("failed to check name uniqueness", err)
	}

	if err := s.checkPermissionIDs(req.PermissionIDs, req.Type); err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:   req.Name,
		Type:   req.Type,
		Status: 1,
	}
	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.repo.CreateRole(role, req.PermissionIDs); err != nil {
		return nil, apperr.FromStorage(err, "role")
	}
	s.log.WithFields(logrus.Fields{"role_id": role.ID, "type": role.Type}).Info("role created")
	return s.GetRole(role.ID)
}

func (s *RBACService) GetRole(id uuid.UUID) (*models.Role, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "role")
	}
	return role, nil
}

// UpdateRole applies a partial update. The role's type is immutable:
// permissions and subjects bound under the old type would silently become
// inconsistent, so any attempt to change it is rejected.
func (s *RBACService) UpdateRole(id uuid.UUID, req *models.UpdateRoleRequest) (*models.Role, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "role")
	}

	if req.Type != nil && *req.Type != role.Type {
		return nil, apperr.NewValidation("role type is immutable", nil)
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != role.Name {
		if existing, err := s.repo.GetRoleByName(*req.Name); err == nil && existing.ID != id {
			return nil, apperr.NewConflict("role with this name already exists", map[string]interface{}{"name": *req.Name})
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewInternal("failed to check name uniqueness", err)
		}
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateRole(id, updates); err != nil {
			return nil, apperr.FromStorage(err, "role")
		}
	}

	if req.PermissionIDs != nil {
		if err := s.SetRolePermissions(id, req.PermissionIDs); err != nil {
			return nil, err
		}
	}
	return s.GetRole(id)
}

func (s *RBACService) ListRoles(q models.ListQuery) (*models.Page[models.Role], error) {
	return s.repo.ListRoles(q)
}

// DeleteRoles removes roles and, in the same transaction, every junction and
// binding row referencing them. System roles are skipped; deleting nothing
// is an error, not a silent zero.
func (s *RBACService) DeleteRoles(ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.NewValidation("ids must not be empty", nil)
	}
	count, err := s.repo.DeleteRolesCascade(ids)
	if err != nil {
		return 0, apperr.NewInternal("failed to delete roles", err)
	}
	if count == 0 {
		return 0, apperr.NewNotFound("deletable role")
	}
	return count, nil
}

func (s *RBACService) BulkUpdateRoleField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	count, err := s.repo.BulkUpdateRoleField(ids, field)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NewNotFound("updatable role")
	}
	return count, nil
}

// BindRoleToSubject binds one subject to one role. The role's type must
// match the subject's type, the subject must exist, and the
// (role, subject, type) triple must be new.
func (s *RBACService) BindRoleToSubject(roleID, modelID uuid.UUID, modelType models.SubjectType) (*models.ModelHasRole, error) {
	if !modelType.Valid() {
		return nil, apperr.NewValidation("modelType must be one of: admin, user", nil)
	}

	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return nil, apperr.FromStorage(err, "role")
	}
	if role.Type != modelType {
		return nil, apperr.NewValidation(
			fmt.Sprintf("role %q is of type %q and cannot be bound to a subject of type %q", role.Name, role.Type, modelType), nil)
	}

	if err := s.checkSubjectExists(modelID, modelType); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetBinding(roleID, modelID, modelType); err == nil {
		return nil, apperr.NewConflict("role is already assigned to this subject", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("failed to check existing binding", err)
	}

	binding := &models.ModelHasRole{RoleID: roleID, ModelID: modelID, ModelType: modelType}
	if err := s.repo.CreateBinding(binding); err != nil {
		return nil, apperr.FromStorage(err, "role binding")
	}
	return binding, nil
}

// UnbindRoleFromSubject removes a binding; removing a binding that does not
// exist is reported as not found.
func (s *RBACService) UnbindRoleFromSubject(roleID, modelID uuid.UUID, modelType models.SubjectType) error {
	count, err := s.repo.DeleteBinding(roleID, modelID, modelType)
	if err != nil {
		return apperr.NewInternal("failed to remove binding", err)
	}
	if count == 0 {
		return apperr.NewNotFound("role binding")
	}
	return nil
}

// SetRolePermissions replaces a role's permission set atomically. Every
// permission must exist and carry the role's type.
func (s *RBACService) SetRolePermissions(roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return apperr.FromStorage(err, "role")
	}
	if err := s.checkPermissionIDs(permissionIDs, role.Type); err != nil {
		return err
	}
	if err := s.repo.SetRolePermissions(roleID, permissionIDs); err != nil {
		return apperr.NewInternal("failed to set role permissions", err)
	}
	s.log.WithFields(logrus.Fields{"role_id": roleID, "permissions": len(permissionIDs)}).Info("role permissions replaced")
	return nil
}

// CreatePermission registers a new permission. A parent, when given, must
// exist and carry the same type.
func (s *RBACService) CreatePermission(req *models.CreatePermissionRequest) (*models.Permission, error) {
	if _, err := s.repo.GetPermissionByName(req.Name); err == nil {
		return nil, apperr.NewConflict("permission with this name already exists", map[string]interface{}{"name": req.Name})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("failed to check name uniqueness", err)
	}

	if req.ParentID != nil {
		parent, err := s.repo.GetPermissionByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NewValidation("parentId does not reference an existing permission", nil)
			}
			return nil, apperr.NewInternal("failed to resolve parent permission", err)
		}
		if parent.Type != req.Type {
			return nil, apperr.NewValidation("parent permission must have the same type", nil)
		}
	}

	permission := &models.Permission{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
	}
	if err := s.repo.CreatePermission(permission); err != nil {
		return nil, apperr.FromStorage(err, "permission")
	}
	return permission, nil
}

func (s *RBACService) ListPermissions(subjectType models.SubjectType) ([]models.Permission, error) {
	if !subjectType.Valid() {
		return nil, apperr.NewValidation("type must be one of: admin, user", nil)
	}
	permissions, err := s.repo.ListPermissions(subjectType)
	if err != nil {
		return nil, apperr.NewInternal("failed to list permissions", err)
	}
	return permissions, nil
}

// EffectivePermissions resolves the flattened permission set a subject holds
// through its role bindings.
func (s *RBACService) EffectivePermissions(modelID uuid.UUID, modelType models.SubjectType) (*models.EffectivePermissions, error) {
	perms, err := s.repo.EffectivePermissions(modelID, modelType)
	if err != nil {
		return nil, apperr.NewInternal("failed to resolve effective permissions", err)
	}
	return perms, nil
}

func (s *RBACService) checkPermissionIDs(ids []uuid.UUID, roleType models.SubjectType) error {
	if len(ids) == 0 {
		return nil
	}
	permissions, err := s.repo.GetPermissionsByIDs(ids)
	if err != nil {
		return apperr.NewInternal("failed to resolve permissions", err)
	}
	if len(permissions) != len(ids) {
		return apperr.NewValidation("one or more permission ids do not exist", nil)
	}
	for _, perm := range permissions {
		if perm.Type != roleType {
			return apperr.NewValidation(
				fmt.Sprintf("permission %q is of type %q, expected %q", perm.Name, perm.Type, roleType), nil)
		}
	}
	return nil
}

func (s *RBACService) checkSubjectExists(modelID uuid.UUID, modelType models.SubjectType) error {
	switch modelType {
	case models.SubjectUser:
		if _, err := s.userRepo.GetByID(modelID); err != nil {
			return apperr.FromStorage(err, "user")
		}
	case models.SubjectAdmin:
		if _, err := s.adminRepo.GetByID(modelID); err != nil {
			return apperr.FromStorage(err, "admin")
		}
	}
	return nil
}
