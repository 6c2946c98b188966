package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

// CashRegisterSession tracks one open/close cycle of a physical till.
// Closing fields stay null until Close, which sets balance, time, variance
// and status in a single atomic update. IsArchived is a visibility flag
// orthogonal to the lifecycle.
type CashRegisterSession struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	BusinessID     uint             `gorm:"not null;index" json:"business_id"`
	RegisterName   string           `gorm:"not null" json:"register_name"`
	StaffID        uint             `gorm:"not null;index" json:"staff_id"`
	OpeningBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"opening_balance"`
	OpeningTime    time.Time        `gorm:"not null" json:"opening_time"`
	ClosingBalance *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_balance,omitempty"`
	ClosingTime    *time.Time       `json:"closing_time,omitempty"`
	Variance       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"variance,omitempty"`
	Status         RegisterStatus   `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Notes          string           `gorm:"type:text" json:"notes"`
	IsArchived     bool             `gorm:"default:false" json:"is_archived"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	Staff User `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

func (CashRegisterSession) TableName() string {
	return "cash_register_sessions"
}
