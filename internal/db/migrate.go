package db

import (
	"errors"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/mkweon/barunpos-backend/pkg/util"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Business{},
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.InventoryRecord{},
		&model.InventoryTransaction{},
		&model.Sale{},
		&model.SaleItem{},
		&model.CashRegisterSession{},
		&model.RestaurantTable{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

// seedInitialData creates a default business and admin account so a fresh
// deployment is usable without manual SQL.
func seedInitialData() error {
	var business model.Business
	err := DB.Where("name = ?", "바른포스 데모 매장").First(&business).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	logger.Info("Seeding initial data...")

	business = model.Business{
		Name:           "바른포스 데모 매장",
		CurrencyCode:   "KRW",
		ReceiptPrefix:  "DEMO",
		PaymentMethods: []string{"cash", "card"},
	}
	if err := DB.Create(&business).Error; err != nil {
		return err
	}

	hashed, err := util.HashPassword("admin1234!")
	if err != nil {
		return err
	}
	admin := model.User{
		BusinessID:   business.ID,
		Email:        "admin@barunpos.local",
		PasswordHash: hashed,
		Name:         "관리자",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Initial data seeded", map[string]interface{}{
		"business_id": business.ID,
		"admin_email": admin.Email,
	})
	return nil
}
