package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubjectType discriminates the two kinds of subjects a role can bind to.
type SubjectType string

const (
	SubjectAdmin SubjectType = "admin"
	SubjectUser  SubjectType = "user"
)

// Valid reports whether t is one of the two recognized subject types.
func (t SubjectType) Valid() bool {
	return t == SubjectAdmin || t == SubjectUser
}

// Role groups permissions and is bound to subjects of a matching type.
// Roles flagged IsSystem are exempt from bulk deletion and bulk mutation.
type Role struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Name      string      `json:"name" gorm:"uniqueIndex;not null"`
	Type      SubjectType `json:"type" gorm:"not null;index"`
	Status    int         `json:"status" gorm:"default:1"`
	IsSystem  bool        `json:"isSystem" gorm:"default:false"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_has_permissions;foreignKey:ID;joinForeignKey:RoleID;References:ID;joinReferences:PermissionID"`
}

func (Role) TableName() string {
	return "roles"
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Permission is a grantable capability. ParentID optionally points at another
// permission of the same type, forming groups for matrix rendering.
type Permission struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Name      string      `json:"name" gorm:"uniqueIndex;not null"`
	Type      SubjectType `json:"type" gorm:"not null;index"`
	ParentID  *uuid.UUID  `json:"parentId,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (Permission) TableName() string {
	return "permissions"
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ModelHasRole binds one subject (admin or user) to one role. The
// (RoleID, ModelID, ModelType) triple is unique.
type ModelHasRole struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	RoleID    uuid.UUID   `json:"roleId" gorm:"type:uuid;not null;uniqueIndex:idx_model_has_role"`
	ModelID   uuid.UUID   `json:"modelId" gorm:"type:uuid;not null;uniqueIndex:idx_model_has_role"`
	ModelType SubjectType `json:"modelType" gorm:"not null;uniqueIndex:idx_model_has_role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (ModelHasRole) TableName() string {
	return "model_has_roles"
}

func (m *ModelHasRole) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RoleHasPermission is the role/permission junction row.
type RoleHasPermission struct {
	RoleID       uuid.UUID `json:"roleId" gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `json:"permissionId" gorm:"type:uuid;primaryKey"`
}

func (RoleHasPermission) TableName() string {
	return "role_has_permissions"
}

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name          string      `json:"name" binding:"required"`
	Type          SubjectType `json:"type" binding:"required,oneof=admin user"`
	Status        *int        `json:"status,omitempty"`
	PermissionIDs []uuid.UUID `json:"permissionIds,omitempty"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	Name          *string      `json:"name,omitempty"`
	Type          *SubjectType `json:"type,omitempty" binding:"omitempty,oneof=admin user"`
	Status        *int         `json:"status,omitempty"`
	PermissionIDs []uuid.UUID  `json:"permissionIds,omitempty"`
}

// CreatePermissionRequest represents a request to create a permission
type CreatePermissionRequest struct {
	Name     string      `json:"name" binding:"required"`
	Type     SubjectType `json:"type" binding:"required,oneof=admin user"`
	ParentID *uuid.UUID  `json:"parentId,omitempty"`
}

// AssignRoleRequest is the body of POST /admin/users/:id/roles and
// POST /admin/admins/:id/roles.
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"roleId" binding:"required"`
}

// SetRolePermissionsRequest is the body of PUT /roles/:id/permissions. An
// empty list clears the role's permission set.
type SetRolePermissionsRequest struct {
	PermissionIDs []uuid.UUID `json:"permissionIds"`
}

// PermissionMatrix is the consistent snapshot returned by
// GET /roles/permissions?type=: every permission and role of one subject
// type plus the junction rows restricted to those roles.
type PermissionMatrix struct {
	Permissions     []Permission        `json:"permissions"`
	Roles           []Role              `json:"roles"`
	RolePermissions []RoleHasPermission `json:"rolePermissions"`
}

// EffectivePermissions is the flattened permission set a subject holds
// through its role bindings.
type EffectivePermissions struct {
	ModelID     uuid.UUID    `json:"modelId"`
	ModelType   SubjectType  `json:"modelType"`
	Roles       []Role       `json:"roles"`
	Permissions []Permission `json:"permissions"`
}
