package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum - gates navigation and admin-only endpoints
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleNurse        Role = "nurse"
	RoleRemoteDoctor Role = "remote_doctor"
	RoleRemoteWorker Role = "remote_worker"
)

// ValidRole reports whether r is a known staff role
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleNurse, RoleRemoteDoctor, RoleRemoteWorker:
		return true
	}
	return false
}

// User model for authentication
type User struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"column:full_name" json:"fullName"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"default:nurse" json:"role"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
