package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TaxType string

const (
	TaxNone     TaxType = "none"
	TaxVAT      TaxType = "vat"
	TaxGST      TaxType = "gst"
	TaxSalesTax TaxType = "sales_tax"
)

// Product is a sellable item. SellingPrice and TaxRate are copied onto sale
// items at line-creation time; a posted line never re-reads the product.
type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	BusinessID    uint            `gorm:"not null;index:idx_products_business_sku,priority:1" json:"business_id"`
	SKU           string          `gorm:"index:idx_products_business_sku,priority:2;not null" json:"sku"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"purchase_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate"` // percent
	TaxType       TaxType         `gorm:"type:varchar(20);default:'none'" json:"tax_type"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	SaleItems []SaleItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
