package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Business is the tenant root. Every other entity carries a BusinessID and
// all queries are scoped to it; cross-business references never leave the
// repository layer.
type Business struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"not null" json:"name"`
	CurrencyCode   string         `gorm:"type:varchar(3);default:'USD'" json:"currency_code"`
	Address        string         `gorm:"type:text" json:"address"`
	Phone          string         `json:"phone"`
	PaymentMethods pq.StringArray `gorm:"type:text[]" json:"payment_methods"` // e.g. cash, card, mobile
	ReceiptPrefix  string         `gorm:"type:varchar(10);default:'RCP'" json:"receipt_prefix"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Users    []User    `gorm:"foreignKey:BusinessID" json:"-"`
	Products []Product `gorm:"foreignKey:BusinessID" json:"-"`
}

func (Business) TableName() string {
	return "businesses"
}
