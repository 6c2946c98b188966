package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleManager   UserRole = "manager"
	RoleCashier   UserRole = "cashier"
	RoleInventory UserRole = "inventory"
)

// User is a staff account. Role gates register assignment, session archival
// and staff management; see middleware.RequireRole.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	BusinessID   uint           `gorm:"not null;index" json:"business_id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	Role         UserRole       `gorm:"type:varchar(20);default:'cashier'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Business Business `gorm:"foreignKey:BusinessID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CanManageSessions reports whether the role may archive or unarchive
// cash register sessions.
func (r UserRole) CanManageSessions() bool {
	return r == RoleAdmin || r == RoleManager
}
