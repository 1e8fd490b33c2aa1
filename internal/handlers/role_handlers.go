package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"admin-service/internal/cache"
	"admin-service/internal/models"
	"admin-service/internal/services"
)

// RoleHandler exposes role and permission management. Every mutation flushes
// the permission cache: role and permission changes affect an unknown set of
// admins.
type RoleHandler struct {
	rbac      *services.RBACService
	permCache *cache.PermissionCache
	logger    *logrus.Entry

	defaultPageSize int
	maxPageSize     int
}

func NewRoleHandler(rbac *services.RBACService, permCache *cache.PermissionCache, defaultPageSize, maxPageSize int, logger *logrus.Entry) *RoleHandler {
	return &RoleHandler{
		rbac:            rbac,
		permCache:       permCache,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (h *RoleHandler) flushPermissionCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := h.permCache.InvalidateAll(ctx); err != nil {
		h.logger.WithError(err).Warn("permission cache flush failed")
	}
}

// List returns a paginated, filterable role listing
// @Summary List roles
// @Tags roles
// @Produce json
// @Param pageNumber query int false "0-based page number"
// @Param perPage query int false "Page size"
// @Param sort query string false "Sort field"
// @Param order query string false "ASC or DESC"
// @Param q query string false "Free-text search"
// @Success 200 {object} models.SuccessResponse
// @Router /roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	q, err := parseListQuery(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.rbac.ListRoles(q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page, "roles retrieved")
}

// PermissionMatrix returns every permission, role and junction row for one
// subject type in a single consistent snapshot
// @Summary Get the permission matrix for a subject type
// @Tags roles
// @Produce json
// @Param type query string true "Subject type (admin or user)"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /roles/permissions [get]
func (h *RoleHandler) PermissionMatrix(c *gin.Context) {
	matrix, err := h.rbac.ListPermissionsAndRoles(models.SubjectType(c.Query("type")))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, matrix, "permission matrix retrieved")
}

// Get returns one role with its permissions preloaded
// @Summary Get a role
// @Tags roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	role, err := h.rbac.GetRole(id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, role, "role retrieved")
}

// Create registers a new role, optionally with an initial permission set
// @Summary Create a role
// @Tags roles
// @Accept json
// @Produce json
// @Param request body models.CreateRoleRequest true "Role fields"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	role, err := h.rbac.CreateRole(&req)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, role, "role created")
}

// Update applies a partial update to a role
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body models.UpdateRoleRequest true "Fields to update"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	role, err := h.rbac.UpdateRole(id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	h.flushPermissionCache()
	respondOK(c, role, "role updated")
}

// BulkDelete removes the given roles and cascades to their junction and
// binding rows; system roles are skipped
// @Summary Bulk-delete roles
// @Tags roles
// @Accept json
// @Produce json
// @Param request body models.BulkDeleteRequest true "Role IDs"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /roles [delete]
func (h *RoleHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.rbac.DeleteRoles(req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	h.flushPermissionCache()
	h.logger.WithField("count", count).Info("roles bulk-deleted")
	respondOK(c, gin.H{"deleted": count}, fmt.Sprintf("%d role(s) deleted", count))
}

// BulkAction applies one field assignment to many roles; system roles are
// skipped
// @Summary Bulk-update a role field
// @Tags roles
// @Accept json
// @Produce json
// @Param request body models.BulkActionRequest true "Role IDs and field"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /roles/action [post]
func (h *RoleHandler) BulkAction(c *gin.Context) {
	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.rbac.BulkUpdateRoleField(req.IDs, req.Field)
	if err != nil {
		fail(c, err)
		return
	}
	h.flushPermissionCache()
	respondOK(c, gin.H{"updated": count}, fmt.Sprintf("%d role(s) updated", count))
}

// SetPermissions replaces a role's permission set
// @Summary Set a role's permissions
// @Tags roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body models.SetRolePermissionsRequest true "Permission IDs"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /roles/{id}/permissions [put]
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req models.SetRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	if err := h.rbac.SetRolePermissions(id, req.PermissionIDs); err != nil {
		fail(c, err)
		return
	}
	h.flushPermissionCache()

	role, err := h.rbac.GetRole(id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, role, "role permissions updated")
}

// ListPermissions returns every permission of one subject type
// @Summary List permissions
// @Tags permissions
// @Produce json
// @Param type query string true "Subject type (admin or user)"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	permissions, err := h.rbac.ListPermissions(models.SubjectType(c.Query("type")))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, permissions, "permissions retrieved")
}

// CreatePermission registers a new permission
// @Summary Create a permission
// @Tags permissions
// @Accept json
// @Produce json
// @Param request body models.CreatePermissionRequest true "Permission fields"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /permissions [post]
func (h *RoleHandler) CreatePermission(c *gin.Context) {
	var req models.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	permission, err := h.rbac.CreatePermission(&req)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, permission, "permission created")
}
