package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"admin-service/internal/apperr"
	"admin-service/internal/cache"
	"admin-service/internal/models"
	"admin-service/internal/services"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "admin_session"

// AuthMiddleware resolves sessions and authorizes requests against the
// caller's effective permissions.
type AuthMiddleware struct {
	sessions  *cache.SessionStore
	admins    *services.AdminService
	rbac      *services.RBACService
	permCache *cache.PermissionCache
	logger    *logrus.Entry
}

func NewAuthMiddleware(sessions *cache.SessionStore, admins *services.AdminService, rbac *services.RBACService, permCache *cache.PermissionCache, logger *logrus.Entry) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:  sessions,
		admins:    admins,
		rbac:      rbac,
		permCache: permCache,
		logger:    logger,
	}
}

// RequireSession resolves the session cookie to a live admin account and
// stores the admin id and session token in the context. Requests without a
// valid session never reach a handler.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			abortWith(c, apperr.NewUnauthorized("authentication required"))
			return
		}

		adminID, err := m.sessions.Get(c.Request.Context(), token)
		if err != nil {
			abortWith(c, apperr.NewUnauthorized("session expired or invalid"))
			return
		}

		admin, err := m.admins.Get(adminID)
		if err != nil || admin.Status != 1 {
			// The account was removed or disabled after login.
			abortWith(c, apperr.NewUnauthorized("session expired or invalid"))
			return
		}

		c.Set("admin_id", adminID.String())
		c.Set("session_token", token)
		c.Next()
	}
}

// RequirePermission requires the authenticated admin to hold the named
// permission through at least one of its role bindings.
func (m *AuthMiddleware) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, err := uuid.Parse(c.GetString("admin_id"))
		if err != nil {
			abortWith(c, apperr.NewUnauthorized("authentication required"))
			return
		}

		perms, err := m.effectivePermissions(c, adminID)
		if err != nil {
			abortWith(c, apperr.NewInternal("failed to resolve permissions", err))
			return
		}

		for _, p := range perms.Permissions {
			if p.Name == permission {
				c.Next()
				return
			}
		}

		m.logger.WithFields(logrus.Fields{
			"admin_id":   adminID,
			"permission": permission,
			"path":       c.Request.URL.Path,
		}).Warn("permission denied")
		abortWith(c, apperr.NewForbidden("insufficient permissions"))
	}
}

func (m *AuthMiddleware) effectivePermissions(c *gin.Context, adminID uuid.UUID) (*models.EffectivePermissions, error) {
	ctx := c.Request.Context()

	if cached, err := m.permCache.Get(ctx, adminID); err == nil && cached != nil {
		return cached, nil
	}

	perms, err := m.rbac.EffectivePermissions(adminID, models.SubjectAdmin)
	if err != nil {
		return nil, err
	}
	if err := m.permCache.Set(ctx, adminID, perms); err != nil {
		m.logger.WithError(err).Warn("failed to cache permissions")
	}
	return perms, nil
}

// abortWith records the error for the error handler and stops the chain
// before the handler runs.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
