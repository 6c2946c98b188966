package service

import (
	"testing"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutTestEnv struct {
	db           *gorm.DB
	checkoutSvc  CheckoutService
	inventorySvc InventoryService
	business     *model.Business
	user         *model.User
	coffee       *model.Product
	beans        *model.Product
	table        *model.RestaurantTable
}

func setupCheckoutTest(t *testing.T) *checkoutTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	business := &model.Business{Name: "Test Cafe", ReceiptPrefix: "CAF"}
	testDB.Create(business)

	user := &model.User{
		BusinessID:   business.ID,
		Email:        "till@example.com",
		PasswordHash: "hash",
		Name:         "Till",
		Role:         model.RoleCashier,
		IsActive:     true,
	}
	testDB.Create(user)

	coffee := &model.Product{
		BusinessID:   business.ID,
		SKU:          "COF-001",
		Name:         "아메리카노",
		SellingPrice: dec("10.00"),
		TaxRate:      dec("8"),
		TaxType:      model.TaxSalesTax,
		IsActive:     true,
	}
	testDB.Create(coffee)

	beans := &model.Product{
		BusinessID:   business.ID,
		SKU:          "BEAN-001",
		Name:         "원두 500g",
		SellingPrice: dec("4.00"),
		TaxType:      model.TaxNone,
		IsActive:     true,
	}
	testDB.Create(beans)

	table := &model.RestaurantTable{
		BusinessID: business.ID,
		Number:     "T1",
		Status:     model.TableAvailable,
	}
	testDB.Create(table)

	inventorySvc := NewInventoryService(
		repository.NewInventoryRepository(testDB),
		repository.NewProductRepository(testDB),
		testDB,
	)
	checkoutSvc := NewCheckoutService(
		repository.NewSaleRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewCustomerRepository(testDB),
		repository.NewTableRepository(testDB),
		inventorySvc,
		nil,
		testDB,
	)

	return &checkoutTestEnv{
		db:           testDB,
		checkoutSvc:  checkoutSvc,
		inventorySvc: inventorySvc,
		business:     business,
		user:         user,
		coffee:       coffee,
		beans:        beans,
		table:        table,
	}
}

func TestCheckoutService_RetailSale(t *testing.T) {
	env := setupCheckoutTest(t)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType:      model.SaleRetail,
		PaymentMethod: "cash",
		Items: []CheckoutItemInput{
			{ProductID: env.coffee.ID, Quantity: dec("3"), DiscountPercent: dec("10")},
			{ProductID: env.beans.ID, Quantity: dec("1")},
		},
	})
	require.NoError(t, err)

	// Retail rings up completed with payment taken
	assert.Equal(t, model.SaleStatusCompleted, sale.SaleStatus)
	assert.Equal(t, model.PaymentCompleted, sale.PaymentStatus)
	assert.NotEmpty(t, sale.ReceiptNumber)

	// Subtotal is gross of discounts; total is the sum of tax-inclusive lines
	assert.True(t, sale.Subtotal.Equal(dec("34.00")), sale.Subtotal.String())
	assert.True(t, sale.DiscountTotal.Equal(dec("3.00")), sale.DiscountTotal.String())
	assert.True(t, sale.TaxAmount.Equal(dec("2.16")), sale.TaxAmount.String())
	assert.True(t, sale.TotalAmount.Equal(dec("33.16")), sale.TotalAmount.String())

	// Price snapshots on the lines; the coffee line is 30.00 - 3.00 + 2.16
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].UnitPrice.Equal(dec("10.00")))
	assert.True(t, sale.Items[0].LineTotal.Equal(dec("29.16")), sale.Items[0].LineTotal.String())
	assert.True(t, sale.Items[1].LineTotal.Equal(dec("4.00")), sale.Items[1].LineTotal.String())

	// Retail debits stock immediately
	level, err := env.inventorySvc.CurrentStock(env.business.ID, env.coffee.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(dec("-3")), level.Record.QuantityOnHand.String())
}

func TestCheckoutService_AbsoluteDiscount(t *testing.T) {
	env := setupCheckoutTest(t)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType:      model.SaleRetail,
		PaymentMethod: "card",
		Items: []CheckoutItemInput{
			{ProductID: env.beans.ID, Quantity: dec("2"), DiscountAmount: dec("1.50")},
		},
	})
	require.NoError(t, err)

	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].DiscountAmount.Equal(dec("1.50")), sale.Items[0].DiscountAmount.String())
	assert.True(t, sale.Items[0].LineTotal.Equal(dec("6.50")), sale.Items[0].LineTotal.String())
	assert.True(t, sale.TotalAmount.Equal(dec("6.50")), sale.TotalAmount.String())
}

func TestCheckoutService_NegativeDiscountRejected(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items: []CheckoutItemInput{
			{ProductID: env.beans.ID, Quantity: dec("1"), DiscountPercent: dec("-10")},
		},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items: []CheckoutItemInput{
			{ProductID: env.beans.ID, Quantity: dec("1"), DiscountAmount: dec("-1.00")},
		},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	// Nothing was persisted
	var count int64
	env.db.Model(&model.Sale{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutService_DineInSale(t *testing.T) {
	env := setupCheckoutTest(t)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleDineIn,
		TableID:  &env.table.ID,
		Items: []CheckoutItemInput{
			{ProductID: env.coffee.ID, Quantity: dec("2")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SaleStatusPending, sale.SaleStatus)
	assert.Equal(t, model.PaymentPending, sale.PaymentStatus)

	// Table is now occupied
	var table model.RestaurantTable
	require.NoError(t, env.db.First(&table, env.table.ID).Error)
	assert.Equal(t, model.TableOccupied, table.Status)

	// Pending sales have not touched the ledger
	_, err = env.inventorySvc.CurrentStock(env.business.ID, env.coffee.ID)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestCheckoutService_DineIn_TableOccupied(t *testing.T) {
	env := setupCheckoutTest(t)

	input := CheckoutInput{
		SaleType: model.SaleDineIn,
		TableID:  &env.table.ID,
		Items:    []CheckoutItemInput{{ProductID: env.coffee.ID, Quantity: dec("1")}},
	}

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, input)
	require.NoError(t, err)

	_, err = env.checkoutSvc.Checkout(env.business.ID, env.user.ID, input)
	assert.ErrorIs(t, err, ErrTableNotAvailable)
}

func TestCheckoutService_DineIn_RequiresTable(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleDineIn,
		Items:    []CheckoutItemInput{{ProductID: env.coffee.ID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, ErrTableRequired)
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutService_InvalidSaleType(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleType("delivery"),
		Items:    []CheckoutItemInput{{ProductID: env.coffee.ID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, ErrInvalidSaleType)
}

func TestCheckoutService_InactiveProduct(t *testing.T) {
	env := setupCheckoutTest(t)

	env.coffee.IsActive = false
	require.NoError(t, env.db.Save(env.coffee).Error)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items:    []CheckoutItemInput{{ProductID: env.coffee.ID, Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestCheckoutService_UnknownProductRollsBack(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items: []CheckoutItemInput{
			{ProductID: env.coffee.ID, Quantity: dec("1")},
			{ProductID: 9999, Quantity: dec("1")},
		},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	// Nothing was persisted
	var count int64
	env.db.Model(&model.Sale{}).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&model.InventoryTransaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutService_ResolvesCustomerByPhone(t *testing.T) {
	env := setupCheckoutTest(t)

	existing := &model.Customer{
		BusinessID: env.business.ID,
		Name:       "단골손님",
		Phone:      "010-1234-5678",
	}
	require.NoError(t, env.db.Create(existing).Error)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType:      model.SaleRetail,
		CustomerPhone: "010-1234-5678",
		Items:         []CheckoutItemInput{{ProductID: env.beans.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, existing.ID, *sale.CustomerID)

	// Unknown phone creates a customer
	sale2, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType:      model.SaleRetail,
		CustomerPhone: "010-9999-0000",
		CustomerName:  "새손님",
		Items:         []CheckoutItemInput{{ProductID: env.beans.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	require.NotNil(t, sale2.CustomerID)
	assert.NotEqual(t, existing.ID, *sale2.CustomerID)

	var customer model.Customer
	require.NoError(t, env.db.First(&customer, *sale2.CustomerID).Error)
	assert.Equal(t, "새손님", customer.Name)
}

func TestCheckoutService_AnonymousWalkIn(t *testing.T) {
	env := setupCheckoutTest(t)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items:    []CheckoutItemInput{{ProductID: env.beans.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.Nil(t, sale.CustomerID)
}

func TestCheckoutService_ReceiptPrefixFromBusiness(t *testing.T) {
	env := setupCheckoutTest(t)

	sale, err := env.checkoutSvc.Checkout(env.business.ID, env.user.ID, CheckoutInput{
		SaleType: model.SaleRetail,
		Items:    []CheckoutItemInput{{ProductID: env.beans.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.Contains(t, sale.ReceiptNumber, "CAF-")
}
