package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"admin-service/internal/cache"
	"admin-service/internal/models"
	"admin-service/internal/services"
)

// AdminHandler exposes admin account management for operators holding the
// relevant permissions. The authenticated admin's own profile lives on
// AuthHandler.
type AdminHandler struct {
	admins    *services.AdminService
	rbac      *services.RBACService
	permCache *cache.PermissionCache
	logger    *logrus.Entry

	defaultPageSize int
	maxPageSize     int
}

func NewAdminHandler(admins *services.AdminService, rbac *services.RBACService, permCache *cache.PermissionCache, defaultPageSize, maxPageSize int, logger *logrus.Entry) *AdminHandler {
	return &AdminHandler{
		admins:          admins,
		rbac:            rbac,
		permCache:       permCache,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// invalidateAdminCache drops one admin's cached permissions after a binding
// change so the next request re-resolves them.
func (h *AdminHandler) invalidateAdminCache(adminID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := h.permCache.Invalidate(ctx, adminID); err != nil {
		h.logger.WithError(err).WithField("admin_id", adminID).Warn("cache invalidation failed")
	}
}

// List returns a paginated, filterable admin listing
// @Summary List admins
// @Tags admins
// @Produce json
// @Param pageNumber query int false "0-based page number"
// @Param perPage query int false "Page size"
// @Param sort query string false "Sort field"
// @Param order query string false "ASC or DESC"
// @Param q query string false "Free-text search"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	q, err := parseListQuery(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.admins.List(q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page, "admins retrieved")
}

// Get returns one admin
// @Summary Get an admin
// @Tags admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	admin, err := h.admins.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, admin, "admin retrieved")
}

// Create registers a new admin account
// @Summary Create an admin
// @Tags admins
// @Accept json
// @Produce json
// @Param request body models.CreateAdminRequest true "Admin fields"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /admin/admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req models.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	admin, err := h.admins.Create(&req)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, admin, "admin created")
}

// Update applies a partial update to an admin
// @Summary Update an admin
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param request body models.UpdateAdminRequest true "Fields to update"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/admins/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req models.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	admin, err := h.admins.Update(id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, admin, "admin updated")
}

// BulkDelete removes the given admins; system accounts are skipped
// @Summary Bulk-delete admins
// @Tags admins
// @Accept json
// @Produce json
// @Param request body models.BulkDeleteRequest true "Admin IDs"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/admins [delete]
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.admins.BulkDelete(req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	for _, id := range req.IDs {
		h.invalidateAdminCache(id)
	}
	h.logger.WithField("count", count).Info("admins bulk-deleted")
	respondOK(c, gin.H{"deleted": count}, fmt.Sprintf("%d admin(s) deleted", count))
}

// BulkAction applies one field assignment to many admins; system accounts
// are skipped
// @Summary Bulk-update an admin field
// @Tags admins
// @Accept json
// @Produce json
// @Param request body models.BulkActionRequest true "Admin IDs and field"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /admin/admins/action [post]
func (h *AdminHandler) BulkAction(c *gin.Context) {
	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.admins.BulkUpdateField(req.IDs, req.Field)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"updated": count}, fmt.Sprintf("%d admin(s) updated", count))
}

// AssignRole binds a role to an admin
// @Summary Assign a role to an admin
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param request body models.AssignRoleRequest true "Role ID"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /admin/admins/{id}/roles [post]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	binding, err := h.rbac.BindRoleToSubject(req.RoleID, id, models.SubjectAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	h.invalidateAdminCache(id)
	respondCreated(c, binding, "role assigned")
}

// UnassignRole removes a role binding from an admin
// @Summary Remove a role from an admin
// @Tags admins
// @Produce json
// @Param id path string true "Admin ID"
// @Param roleId path string true "Role ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/admins/{id}/roles/{roleId} [delete]
func (h *AdminHandler) UnassignRole(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	roleID, err := parseUUIDParam(c, "roleId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.rbac.UnbindRoleFromSubject(roleID, id, models.SubjectAdmin); err != nil {
		fail(c, err)
		return
	}
	h.invalidateAdminCache(id)
	respondOK(c, nil, "role removed")
}

// Permissions returns the flattened permission set an admin holds
// @Summary Get an admin's effective permissions
// @Tags admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/admins/{id}/permissions [get]
func (h *AdminHandler) Permissions(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := h.admins.Get(id); err != nil {
		fail(c, err)
		return
	}

	perms, err := h.rbac.EffectivePermissions(id, models.SubjectAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, perms, "permissions retrieved")
}
