package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionAdjustment TransactionType = "adjustment"
	TransactionReceiving  TransactionType = "receiving"
	TransactionSale       TransactionType = "sale"
	TransactionReturn     TransactionType = "return"
	TransactionDamage     TransactionType = "damage"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionAdjustment, TransactionReceiving, TransactionSale, TransactionReturn, TransactionDamage:
		return true
	}
	return false
}

// Delta converts an unsigned quantity into the signed on-hand delta for this
// transaction type. adjustment/receiving add stock; sale/return/damage remove it.
func (t TransactionType) Delta(quantity decimal.Decimal) decimal.Decimal {
	switch t {
	case TransactionAdjustment, TransactionReceiving:
		return quantity
	default:
		return quantity.Neg()
	}
}

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLow        StockStatus = "low_stock"
	StockOut        StockStatus = "out_of_stock"
)

// InventoryRecord holds the current stock level for one (business, product)
// pair. QuantityOnHand is only ever changed by applying an
// InventoryTransaction delta; it is never written directly after creation.
type InventoryRecord struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	BusinessID       uint            `gorm:"not null;uniqueIndex:idx_inventory_business_product,priority:1" json:"business_id"`
	ProductID        uint            `gorm:"not null;uniqueIndex:idx_inventory_business_product,priority:2" json:"product_id"`
	QuantityOnHand   decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"quantity_on_hand"`
	QuantityReserved decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"quantity_reserved"`
	ReorderLevel     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"reorder_level"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// Available is on-hand minus reserved. It may go negative; the ledger is an
// audit trail, not a reservation system, and callers treat negative stock as
// a warning signal.
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.QuantityOnHand.Sub(r.QuantityReserved)
}

// Status classifies available stock against the reorder level.
func (r *InventoryRecord) Status() StockStatus {
	available := r.Available()
	if available.LessThanOrEqual(decimal.Zero) {
		return StockOut
	}
	if available.LessThanOrEqual(r.ReorderLevel) {
		return StockLow
	}
	return StockInStock
}

// InventoryTransaction is an immutable audit row describing one stock change.
// Quantity is always positive; the direction comes from Type. There are no
// update or delete paths for this table.
type InventoryTransaction struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	BusinessID  uint            `gorm:"not null;index:idx_inventory_tx_business_product,priority:1" json:"business_id"`
	ProductID   uint            `gorm:"not null;index:idx_inventory_tx_business_product,priority:2" json:"product_id"`
	Type        TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedByID uint            `gorm:"not null" json:"created_by_id"`
	CreatedAt   time.Time       `json:"created_at"`

	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
