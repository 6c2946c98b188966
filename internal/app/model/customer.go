package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer is optional on a sale; walk-ins stay anonymous. Phone is the
// lookup key used by checkout to resolve-or-create.
type Customer struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	BusinessID uint           `gorm:"not null;index:idx_customers_business_phone,priority:1" json:"business_id"`
	Name       string         `gorm:"not null" json:"name"`
	Phone      string         `gorm:"index:idx_customers_business_phone,priority:2" json:"phone"`
	Email      string         `json:"email"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Sales []Sale `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}
