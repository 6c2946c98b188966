package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type saleTestEnv struct {
	db           *gorm.DB
	saleSvc      SaleService
	inventorySvc InventoryService
	business     *model.Business
	user         *model.User
	product      *model.Product
	table        *model.RestaurantTable
}

func setupSaleServiceTest(t *testing.T) *saleTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	business := &model.Business{Name: "Test Restaurant", ReceiptPrefix: "TST"}
	testDB.Create(business)

	user := &model.User{
		BusinessID:   business.ID,
		Email:        "cashier@example.com",
		PasswordHash: "hash",
		Name:         "Cashier",
		Role:         model.RoleCashier,
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		BusinessID:   business.ID,
		SKU:          "SKU-001",
		Name:         "김치찌개",
		SellingPrice: decimal.NewFromInt(9000),
		IsActive:     true,
	}
	testDB.Create(product)

	table := &model.RestaurantTable{
		BusinessID: business.ID,
		Number:     "T1",
		Status:     model.TableOccupied,
	}
	testDB.Create(table)

	inventorySvc := NewInventoryService(
		repository.NewInventoryRepository(testDB),
		repository.NewProductRepository(testDB),
		testDB,
	)
	saleSvc := NewSaleService(
		repository.NewSaleRepository(testDB),
		repository.NewTableRepository(testDB),
		inventorySvc,
		nil,
		testDB,
	)

	return &saleTestEnv{
		db:           testDB,
		saleSvc:      saleSvc,
		inventorySvc: inventorySvc,
		business:     business,
		user:         user,
		product:      product,
		table:        table,
	}
}

func (e *saleTestEnv) createPendingSale(t *testing.T, saleType model.SaleType, tableID *uint) *model.Sale {
	sale := &model.Sale{
		BusinessID:    e.business.ID,
		ReceiptNumber: "TST-" + string(saleType) + "-" + t.Name(),
		SaleType:      saleType,
		TableID:       tableID,
		Subtotal:      decimal.NewFromInt(9000),
		TotalAmount:   decimal.NewFromInt(9000),
		SaleStatus:    model.SaleStatusPending,
		PaymentStatus: model.PaymentPending,
		CreatedByID:   e.user.ID,
		Items: []model.SaleItem{
			{
				ProductID: e.product.ID,
				Quantity:  decimal.NewFromInt(2),
				UnitPrice: decimal.NewFromInt(9000),
				LineTotal: decimal.NewFromInt(9000),
			},
		},
	}
	require.NoError(t, e.db.Create(sale).Error)
	return sale
}

func TestSaleService_CompleteSale(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleTakeaway, nil)

	completed, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, sale.ID, "card")
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCompleted, completed.SaleStatus)
	assert.Equal(t, model.PaymentCompleted, completed.PaymentStatus)
	assert.Equal(t, "card", completed.PaymentMethod)

	// Completion wrote the stock debit
	level, err := env.inventorySvc.CurrentStock(env.business.ID, env.product.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(-2)), level.Record.QuantityOnHand.String())
}

func TestSaleService_CompleteSale_AlreadyCompleted(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleTakeaway, nil)
	_, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, sale.ID, "cash")
	require.NoError(t, err)

	_, err = env.saleSvc.CompleteSale(env.business.ID, env.user.ID, sale.ID, "cash")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	// Double completion must not double-debit
	level, err := env.inventorySvc.CurrentStock(env.business.ID, env.product.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(-2)))
}

func TestSaleService_CompleteSale_ReleasesTable(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleDineIn, &env.table.ID)

	_, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, sale.ID, "cash")
	require.NoError(t, err)

	var table model.RestaurantTable
	require.NoError(t, env.db.First(&table, env.table.ID).Error)
	assert.Equal(t, model.TableAvailable, table.Status)
}

func TestSaleService_CompleteSale_NotFound(t *testing.T) {
	env := setupSaleServiceTest(t)

	_, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, 9999, "cash")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSaleService_CancelSale(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleDineIn, &env.table.ID)

	cancelled, err := env.saleSvc.CancelSale(env.business.ID, env.user.ID, sale.ID, "customer left")
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCancelled, cancelled.SaleStatus)
	assert.Equal(t, "customer left", cancelled.Notes)

	// Monetary fields survive as historical record
	assert.True(t, cancelled.TotalAmount.Equal(decimal.NewFromInt(9000)))

	// No stock was ever debited for the pending sale
	_, err = env.inventorySvc.CurrentStock(env.business.ID, env.product.ID)
	assert.ErrorIs(t, err, ErrInventoryNotFound)

	var table model.RestaurantTable
	require.NoError(t, env.db.First(&table, env.table.ID).Error)
	assert.Equal(t, model.TableAvailable, table.Status)
}

func TestSaleService_CancelSale_CompletedSale(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleTakeaway, nil)
	_, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, sale.ID, "cash")
	require.NoError(t, err)

	_, err = env.saleSvc.CancelSale(env.business.ID, env.user.ID, sale.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestSaleService_CompleteSale_ConcurrentWithAdjustments(t *testing.T) {
	env := setupSaleServiceTest(t)

	second := &model.Product{
		BusinessID:   env.business.ID,
		SKU:          "SKU-002",
		Name:         "된장찌개",
		SellingPrice: decimal.NewFromInt(8000),
		IsActive:     true,
	}
	require.NoError(t, env.db.Create(second).Error)

	// Lines deliberately ordered high product ID first; completions and
	// manual adjustments race on both products
	const n = 10
	sales := make([]*model.Sale, n)
	for i := 0; i < n; i++ {
		sale := &model.Sale{
			BusinessID:    env.business.ID,
			ReceiptNumber: fmt.Sprintf("TST-CONC-%d", i),
			SaleType:      model.SaleTakeaway,
			Subtotal:      decimal.NewFromInt(17000),
			TotalAmount:   decimal.NewFromInt(17000),
			SaleStatus:    model.SaleStatusPending,
			PaymentStatus: model.PaymentPending,
			CreatedByID:   env.user.ID,
			Items: []model.SaleItem{
				{ProductID: second.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(8000), LineTotal: decimal.NewFromInt(8000)},
				{ProductID: env.product.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(9000), LineTotal: decimal.NewFromInt(9000)},
			},
		}
		require.NoError(t, env.db.Create(sale).Error)
		sales[i] = sale
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		saleID := sales[i].ID
		go func() {
			defer wg.Done()
			_, err := env.saleSvc.CompleteSale(env.business.ID, env.user.ID, saleID, "cash")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := env.inventorySvc.RecordTransaction(env.business.ID, env.user.ID, env.product.ID, model.TransactionAdjustment, decimal.NewFromInt(1), "")
			assert.NoError(t, err)
			_, err = env.inventorySvc.RecordTransaction(env.business.ID, env.user.ID, second.ID, model.TransactionReceiving, decimal.NewFromInt(2), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// -10 debits +10 adjustments; -10 debits +20 receiving
	level, err := env.inventorySvc.CurrentStock(env.business.ID, env.product.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.IsZero(), level.Record.QuantityOnHand.String())

	level, err = env.inventorySvc.CurrentStock(env.business.ID, second.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(10)), level.Record.QuantityOnHand.String())

	for _, productID := range []uint{env.product.ID, second.ID} {
		match, _, _, err := env.inventorySvc.VerifyLedger(env.business.ID, productID)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestSaleService_GetSale_OtherBusiness(t *testing.T) {
	env := setupSaleServiceTest(t)

	sale := env.createPendingSale(t, model.SaleTakeaway, nil)

	_, err := env.saleSvc.GetSale(env.business.ID+1, sale.ID)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
