package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleType string
type SaleStatus string
type PaymentStatus string

const (
	SaleRetail   SaleType = "retail"
	SaleDineIn   SaleType = "dine_in"
	SaleTakeaway SaleType = "takeaway"

	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"

	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// IsValid reports whether t is a known sale type.
func (t SaleType) IsValid() bool {
	switch t {
	case SaleRetail, SaleDineIn, SaleTakeaway:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusCompleted || s == SaleStatusCancelled
}

// Sale is the transactional root. Subtotal/tax/total are fixed at creation by
// the money calculator and never recomputed; cancellation keeps them as
// historical record. Retail sales are created completed, customer orders
// start pending.
type Sale struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	BusinessID    uint            `gorm:"not null;index" json:"business_id"`
	ReceiptNumber string          `gorm:"uniqueIndex;not null" json:"receipt_number"`
	CustomerID    *uint           `gorm:"index" json:"customer_id,omitempty"`
	SaleType      SaleType        `gorm:"type:varchar(20);not null" json:"sale_type"`
	TableID       *uint           `gorm:"index" json:"table_id,omitempty"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_total"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PaymentMethod string          `gorm:"type:varchar(30)" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	SaleStatus    SaleStatus      `gorm:"type:varchar(20);default:'pending';index" json:"sale_status"`
	NeedsReview   bool            `gorm:"default:false" json:"needs_review"` // set by the reconciliation sweep
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedByID   uint            `gorm:"not null;index" json:"created_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Customer  *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Table     *RestaurantTable `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CreatedBy User             `gorm:"foreignKey:CreatedByID" json:"-"`
	Items     []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line within a sale. Unit price and tax rate are snapshots
// taken at creation; the row is immutable afterwards.
type SaleItem struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	SaleID          uint            `gorm:"not null;index" json:"sale_id"`
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	CreatedAt       time.Time       `json:"created_at"`

	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
