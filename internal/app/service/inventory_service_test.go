package service

import (
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

func setupInventoryTest(t *testing.T) (*gorm.DB, InventoryService, *model.Business, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	business := &model.Business{Name: "Test Store", ReceiptPrefix: "TST"}
	testDB.Create(business)

	user := &model.User{
		BusinessID:   business.ID,
		Email:        "stock@example.com",
		PasswordHash: "hash",
		Name:         "Stock Keeper",
		Role:         model.RoleInventory,
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		BusinessID:   business.ID,
		SKU:          "SKU-001",
		Name:         "원두 1kg",
		SellingPrice: decimal.NewFromInt(25000),
		IsActive:     true,
	}
	testDB.Create(product)

	svc := NewInventoryService(
		repository.NewInventoryRepository(testDB),
		repository.NewProductRepository(testDB),
		testDB,
	)
	return testDB, svc, business, user, product
}

func TestInventoryService_RecordTransaction(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	transaction, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionReceiving, decimal.NewFromInt(50), "initial delivery")
	require.NoError(t, err)
	assert.NotZero(t, transaction.ID)

	level, err := svc.CurrentStock(business.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, model.StockInStock, level.Status)
}

func TestInventoryService_RecordTransaction_SignConvention(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	steps := []struct {
		txType   model.TransactionType
		quantity int64
		expected int64
	}{
		{model.TransactionReceiving, 100, 100},
		{model.TransactionSale, 30, 70},
		{model.TransactionReturn, 5, 65},
		{model.TransactionDamage, 2, 63},
		{model.TransactionAdjustment, 7, 70},
	}

	for _, step := range steps {
		_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
			step.txType, decimal.NewFromInt(step.quantity), "")
		require.NoError(t, err)

		level, err := svc.CurrentStock(business.ID, product.ID)
		require.NoError(t, err)
		assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(step.expected)),
			"after %s: got %s", step.txType, level.Record.QuantityOnHand.String())
	}
}

func TestInventoryService_RecordTransaction_RejectsNonPositive(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionReceiving, decimal.Zero, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionReceiving, decimal.NewFromInt(-5), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventoryService_RecordTransaction_RejectsUnknownType(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionType("theft"), decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
}

func TestInventoryService_RecordTransaction_UnknownProduct(t *testing.T) {
	_, svc, business, user, _ := setupInventoryTest(t)

	_, err := svc.RecordTransaction(business.ID, user.ID, 9999,
		model.TransactionReceiving, decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestInventoryService_NegativeStockAllowed(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionSale, decimal.NewFromInt(3), "oversell")
	require.NoError(t, err)

	level, err := svc.CurrentStock(business.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, level.Record.QuantityOnHand.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, model.StockOut, level.Status)
}

func TestInventoryService_LedgerReplayMatchesStock(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	moves := []struct {
		txType   model.TransactionType
		quantity string
	}{
		{model.TransactionReceiving, "120.500"},
		{model.TransactionSale, "14.250"},
		{model.TransactionDamage, "0.750"},
		{model.TransactionAdjustment, "3.000"},
		{model.TransactionReturn, "1.500"},
	}
	for _, m := range moves {
		_, err := svc.RecordTransaction(business.ID, user.ID, product.ID, m.txType, dec(m.quantity), "")
		require.NoError(t, err)
	}

	match, stored, replayed, err := svc.VerifyLedger(business.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, match, "stored %s replayed %s", stored.String(), replayed.String())
	assert.True(t, stored.Equal(dec("107.000")), stored.String())
}

func TestInventoryService_ConcurrentSales(t *testing.T) {
	_, svc, business, user, product := setupInventoryTest(t)

	_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
		model.TransactionReceiving, decimal.NewFromInt(1000), "")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordTransaction(business.ID, user.ID, product.ID,
				model.TransactionSale, decimal.NewFromInt(3), "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	match, stored, _, err := svc.VerifyLedger(business.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, match)
	assert.True(t, stored.Equal(decimal.NewFromInt(940)), stored.String())
}
