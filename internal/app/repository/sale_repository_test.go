package repository

import (
	"testing"
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSaleTest(t *testing.T) (*gorm.DB, SaleRepository, *model.Business, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewSaleRepository(testDB)

	business := &model.Business{
		Name:          "Test Store",
		CurrencyCode:  "KRW",
		ReceiptPrefix: "TST",
	}
	testDB.Create(business)

	user := &model.User{
		BusinessID:   business.ID,
		Email:        "cashier@example.com",
		PasswordHash: "hash",
		Name:         "Test Cashier",
		Role:         model.RoleCashier,
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		BusinessID:   business.ID,
		SKU:          "SKU-001",
		Name:         "아메리카노",
		SellingPrice: decimal.NewFromInt(4500),
		TaxRate:      decimal.NewFromInt(10),
		TaxType:      model.TaxVAT,
		IsActive:     true,
	}
	testDB.Create(product)

	return testDB, repo, business, user, product
}

func newTestSale(business *model.Business, user *model.User, receipt string) *model.Sale {
	return &model.Sale{
		BusinessID:    business.ID,
		ReceiptNumber: receipt,
		SaleType:      model.SaleRetail,
		Subtotal:      decimal.NewFromInt(9000),
		TotalAmount:   decimal.NewFromInt(9900),
		TaxAmount:     decimal.NewFromInt(900),
		PaymentMethod: "cash",
		PaymentStatus: model.PaymentCompleted,
		SaleStatus:    model.SaleStatusCompleted,
		CreatedByID:   user.ID,
	}
}

func TestSaleRepository_Create(t *testing.T) {
	testDB, repo, business, user, product := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	sale := newTestSale(business, user, "TST-001")
	sale.Items = []model.SaleItem{
		{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(4500),
			TaxRate:   decimal.NewFromInt(10),
			TaxAmount: decimal.NewFromInt(900),
			LineTotal: decimal.NewFromInt(9000),
		},
	}

	err := repo.Create(testDB, sale)
	assert.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Len(t, sale.Items, 1)
	assert.NotZero(t, sale.Items[0].ID)
}

func TestSaleRepository_Create_DuplicateReceipt(t *testing.T) {
	testDB, repo, business, user, _ := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(testDB, newTestSale(business, user, "TST-001")))

	err := repo.Create(testDB, newTestSale(business, user, "TST-001"))
	assert.Error(t, err)
}

func TestSaleRepository_FindByID(t *testing.T) {
	testDB, repo, business, user, product := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	sale := newTestSale(business, user, "TST-002")
	sale.Items = []model.SaleItem{
		{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(4500),
			LineTotal: decimal.NewFromInt(4500),
		},
	}
	require.NoError(t, repo.Create(testDB, sale))

	found, err := repo.FindByID(business.ID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "TST-002", found.ReceiptNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, product.ID, found.Items[0].ProductID)
	assert.Equal(t, "아메리카노", found.Items[0].Product.Name)
}

func TestSaleRepository_FindByID_OtherBusiness(t *testing.T) {
	testDB, repo, business, user, _ := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	sale := newTestSale(business, user, "TST-003")
	require.NoError(t, repo.Create(testDB, sale))

	_, err := repo.FindByID(business.ID+1, sale.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSaleRepository_List_StatusFilter(t *testing.T) {
	testDB, repo, business, user, _ := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	completed := newTestSale(business, user, "TST-004")
	require.NoError(t, repo.Create(testDB, completed))

	pending := newTestSale(business, user, "TST-005")
	pending.SaleStatus = model.SaleStatusPending
	pending.PaymentStatus = model.PaymentPending
	require.NoError(t, repo.Create(testDB, pending))

	sales, total, err := repo.List(business.ID, SaleFilter{Status: model.SaleStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, sales, 1)
	assert.Equal(t, "TST-005", sales[0].ReceiptNumber)
}

func TestSaleRepository_SumCompleted(t *testing.T) {
	testDB, repo, business, user, _ := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	cash := newTestSale(business, user, "TST-006")
	require.NoError(t, repo.Create(testDB, cash))

	card := newTestSale(business, user, "TST-007")
	card.PaymentMethod = "card"
	require.NoError(t, repo.Create(testDB, card))

	cancelled := newTestSale(business, user, "TST-008")
	cancelled.SaleStatus = model.SaleStatusCancelled
	require.NoError(t, repo.Create(testDB, cancelled))

	from := time.Now().Add(-time.Hour)

	total, count, err := repo.SumCompleted(business.ID, "cash", from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, total.Equal(decimal.NewFromInt(9900)), total.String())

	total, count, err = repo.SumCompleted(business.ID, "", from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.True(t, total.Equal(decimal.NewFromInt(19800)), total.String())
}

func TestSaleRepository_FindOrphaned(t *testing.T) {
	testDB, repo, business, user, product := setupSaleTest(t)
	defer db.CleanupTestDB(testDB)

	orphan := newTestSale(business, user, "TST-009")
	orphan.SaleStatus = model.SaleStatusPending
	require.NoError(t, repo.Create(testDB, orphan))

	withItems := newTestSale(business, user, "TST-010")
	withItems.Items = []model.SaleItem{
		{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(4500),
			LineTotal: decimal.NewFromInt(4500),
		},
	}
	require.NoError(t, repo.Create(testDB, withItems))

	// Push both sales past the cutoff
	past := time.Now().Add(-time.Hour)
	require.NoError(t, testDB.Model(&model.Sale{}).
		Where("id IN ?", []uint{orphan.ID, withItems.ID}).
		Update("created_at", past).Error)

	orphans, err := repo.FindOrphaned(time.Now().Add(-30 * time.Minute))
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)

	require.NoError(t, repo.MarkNeedsReview([]uint{orphan.ID}))

	orphans, err = repo.FindOrphaned(time.Now().Add(-30 * time.Minute))
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
