package model

import (
	"time"

	"gorm.io/gorm"
)

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableCleaning    TableStatus = "cleaning"
	TableMaintenance TableStatus = "maintenance"
)

// IsValid reports whether s is a known table status.
func (s TableStatus) IsValid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning, TableMaintenance:
		return true
	}
	return false
}

// RestaurantTable is a physical table. The occupied/available flips belong to
// the sale state machine; manual status changes (cleaning, maintenance,
// reserved) go through the table controller.
type RestaurantTable struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	BusinessID   uint           `gorm:"not null;index:idx_tables_business_number,priority:1" json:"business_id"`
	Number       string         `gorm:"index:idx_tables_business_number,priority:2;not null" json:"number"`
	Section      string         `json:"section"`
	SeatCapacity int            `gorm:"default:0" json:"seat_capacity"`
	Status       TableStatus    `gorm:"type:varchar(20);default:'available'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Sales []Sale `gorm:"foreignKey:TableID" json:"-"`
}

func (RestaurantTable) TableName() string {
	return "restaurant_tables"
}
