package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"admin-service/internal/models"
	"admin-service/internal/services"
)

// UserHandler exposes the back-office user management surface.
type UserHandler struct {
	users  *services.UserService
	rbac   *services.RBACService
	logger *logrus.Entry

	defaultPageSize int
	maxPageSize     int
}

func NewUserHandler(users *services.UserService, rbac *services.RBACService, defaultPageSize, maxPageSize int, logger *logrus.Entry) *UserHandler {
	return &UserHandler{
		users:           users,
		rbac:            rbac,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// List returns a paginated, filterable user listing
// @Summary List users
// @Tags users
// @Produce json
// @Param pageNumber query int false "0-based page number"
// @Param perPage query int false "Page size"
// @Param sort query string false "Sort field"
// @Param order query string false "ASC or DESC"
// @Param q query string false "Free-text search"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	q, err := parseListQuery(c, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		fail(c, err)
		return
	}

	page, err := h.users.List(q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page, "users retrieved")
}

// Get returns one user
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, user, "user retrieved")
}

// Create registers a new user
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "User fields"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	user, err := h.users.Create(&req)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, user, "user created")
}

// Update applies a partial update to a user
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	user, err := h.users.Update(id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, user, "user updated")
}

// BulkDelete removes the given users
// @Summary Bulk-delete users
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.BulkDeleteRequest true "User IDs"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/users [delete]
func (h *UserHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.users.BulkDelete(req.IDs)
	if err != nil {
		fail(c, err)
		return
	}
	h.logger.WithField("count", count).Info("users bulk-deleted")
	respondOK(c, gin.H{"deleted": count}, fmt.Sprintf("%d user(s) deleted", count))
}

// BulkAction applies one field assignment to many users
// @Summary Bulk-update a user field
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.BulkActionRequest true "User IDs and field"
// @Success 200 {object} models.SuccessResponse
// @Failure 422 {object} models.ErrorBody
// @Router /admin/users/action [post]
func (h *UserHandler) BulkAction(c *gin.Context) {
	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	count, err := h.users.BulkUpdateField(req.IDs, req.Field)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"updated": count}, fmt.Sprintf("%d user(s) updated", count))
}

// Export streams every user as an xlsx workbook
// @Summary Export users to xlsx
// @Tags users
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /admin/users/export [get]
func (h *UserHandler) Export(c *gin.Context) {
	users, err := h.users.ListAll()
	if err != nil {
		fail(c, err)
		return
	}

	workbook, err := services.BuildUserWorkbook(users)
	if err != nil {
		fail(c, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("failed to stream export")
	}
}

// AssignRole binds a role to a user
// @Summary Assign a role to a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.AssignRoleRequest true "Role ID"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /admin/users/{id}/roles [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
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

	binding, err := h.rbac.BindRoleToSubject(req.RoleID, id, models.SubjectUser)
	if err != nil {
		fail(c, err)
		return
	}
	respondCreated(c, binding, "role assigned")
}

// UnassignRole removes a role binding from a user
// @Summary Remove a role from a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param roleId path string true "Role ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorBody
// @Router /admin/users/{id}/roles/{roleId} [delete]
func (h *UserHandler) UnassignRole(c *gin.Context) {
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

	if err := h.rbac.UnbindRoleFromSubject(roleID, id, models.SubjectUser); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, nil, "role removed")
}

// Permissions returns the flattened permission set a user holds
// @Summary Get a user's effective permissions
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/users/{id}/permissions [get]
func (h *UserHandler) Permissions(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := h.users.Get(id); err != nil {
		fail(c, err)
		return
	}

	perms, err := h.rbac.EffectivePermissions(id, models.SubjectUser)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, perms, "permissions retrieved")
}
