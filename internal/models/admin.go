package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin represents a back-office operator. Admins are subjects of type
// "admin" in the RBAC model. Records flagged IsSystem are exempt from bulk
// deletion and bulk mutation.
type Admin struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email            string    `json:"email" gorm:"uniqueIndex;not null"`
	Name             string    `json:"name" gorm:"not null"`
	Password         string    `json:"-" gorm:"not null"`
	PreviousPassword *string   `json:"-"`
	Status           int       `json:"status" gorm:"default:1"`
	IsSystem         bool      `json:"isSystem" gorm:"default:false"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CreateAdminRequest represents a request to create an admin
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Status   *int   `json:"status,omitempty"`
}

// UpdateAdminRequest represents a request to update an admin
type UpdateAdminRequest struct {
	Email  *string `json:"email,omitempty" binding:"omitempty,email"`
	Name   *string `json:"name,omitempty"`
	Status *int    `json:"status,omitempty"`
}

// LoginRequest is the body of POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body of PUT /admin/profile.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
}

// ChangePasswordRequest is the body of PUT /admin/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// PasswordResetRequest is the body of POST /admin/password/reset-request.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordReset is the body of POST /admin/password/reset.
type PasswordReset struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
