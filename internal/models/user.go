package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an end user managed through the back office. Users are
// subjects of type "user" in the RBAC model.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	PhoneNo   *string   `json:"phoneNo,omitempty"`
	Password  string    `json:"-" gorm:"not null"`
	Status    int       `json:"status" gorm:"default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	PhoneNo  *string `json:"phoneNo,omitempty"`
	Password string  `json:"password" binding:"required,min=8"`
	Status   *int    `json:"status,omitempty"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	Email   *string `json:"email,omitempty" binding:"omitempty,email"`
	Name    *string `json:"name,omitempty"`
	PhoneNo *string `json:"phoneNo,omitempty"`
	Status  *int    `json:"status,omitempty"`
}
