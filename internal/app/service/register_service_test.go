package service

import (
	"testing"
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRegisterTest(t *testing.T) (*gorm.DB, RegisterService, *model.Business, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	business := &model.Business{Name: "Test Store", ReceiptPrefix: "TST"}
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

	svc := NewRegisterService(
		repository.NewRegisterRepository(testDB),
		repository.NewSaleRepository(testDB),
		testDB,
	)
	return testDB, svc, business, user
}

func TestRegisterService_OpenSession(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	session, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("200.00"), "")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterOpen, session.Status)
	assert.Equal(t, user.ID, session.StaffID)
	assert.True(t, session.OpeningBalance.Equal(dec("200.00")))
	assert.Nil(t, session.ClosingBalance)
	assert.Nil(t, session.Variance)
}

func TestRegisterService_OpenSession_SameRegisterTwice(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	// Two open sessions on one register name are a caller policy choice,
	// not rejected here
	_, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("200.00"), "")
	require.NoError(t, err)

	_, err = svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("100.00"), "")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(business.ID, false)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestRegisterService_OpenSession_AdminAssignsStaff(t *testing.T) {
	testDB, svc, business, user := setupRegisterTest(t)

	admin := &model.User{
		BusinessID:   business.ID,
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Name:         "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	testDB.Create(admin)

	session, err := svc.OpenSession(business.ID, admin.ID, admin.Role, user.ID, "front-1", dec("150.00"), "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.StaffID)
}

func TestRegisterService_OpenSession_NonAdminCannotAssign(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	_, err := svc.OpenSession(business.ID, user.ID, user.Role, user.ID+1, "front-1", dec("150.00"), "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	sessions, err := svc.ListSessions(business.ID, false)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRegisterService_OpenSession_NegativeBalance(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	_, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("-1.00"), "")
	assert.ErrorIs(t, err, ErrInvalidBalance)
}

func TestRegisterService_CloseSession(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	session, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("200.00"), "")
	require.NoError(t, err)

	closed, err := svc.CloseSession(business.ID, user.ID, session.ID, dec("251.30"), "")
	require.NoError(t, err)
	assert.Equal(t, model.RegisterClosed, closed.Status)
	require.NotNil(t, closed.ClosingBalance)
	require.NotNil(t, closed.Variance)
	require.NotNil(t, closed.ClosingTime)
	assert.True(t, closed.Variance.Equal(dec("51.30")), closed.Variance.String())
}

func TestRegisterService_CloseSession_AlreadyClosed(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	session, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("200.00"), "")
	require.NoError(t, err)
	_, err = svc.CloseSession(business.ID, user.ID, session.ID, dec("200.00"), "")
	require.NoError(t, err)

	_, err = svc.CloseSession(business.ID, user.ID, session.ID, dec("180.00"), "")
	assert.ErrorIs(t, err, ErrRegisterAlreadyClosed)

	// First close stands untouched
	reloaded, err := svc.GetSession(business.ID, session.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ClosingBalance.Equal(dec("200.00")))
}

func TestRegisterService_SetArchived_RoleGate(t *testing.T) {
	_, svc, business, user := setupRegisterTest(t)

	session, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("100.00"), "")
	require.NoError(t, err)

	err = svc.SetArchived(business.ID, model.RoleCashier, session.ID, true)
	assert.ErrorIs(t, err, ErrArchiveNotAllowed)

	err = svc.SetArchived(business.ID, model.RoleManager, session.ID, true)
	require.NoError(t, err)

	sessions, err := svc.ListSessions(business.ID, false)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	sessions, err = svc.ListSessions(business.ID, true)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	// Unarchive restores visibility
	require.NoError(t, svc.SetArchived(business.ID, model.RoleAdmin, session.ID, false))
	sessions, err = svc.ListSessions(business.ID, false)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestRegisterService_GetSessionSummary(t *testing.T) {
	testDB, svc, business, user := setupRegisterTest(t)

	session, err := svc.OpenSession(business.ID, user.ID, user.Role, 0, "front-1", dec("200.00"), "")
	require.NoError(t, err)

	makeSale := func(receipt, method string, amount decimal.Decimal) {
		sale := &model.Sale{
			BusinessID:    business.ID,
			ReceiptNumber: receipt,
			SaleType:      model.SaleRetail,
			Subtotal:      amount,
			TotalAmount:   amount,
			PaymentMethod: method,
			PaymentStatus: model.PaymentCompleted,
			SaleStatus:    model.SaleStatusCompleted,
			CreatedByID:   user.ID,
		}
		require.NoError(t, testDB.Create(sale).Error)
	}
	makeSale("TST-1", "cash", dec("30.00"))
	makeSale("TST-2", "cash", dec("12.50"))
	makeSale("TST-3", "card", dec("99.00"))

	summary, err := svc.GetSessionSummary(business.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.CashSaleCount)
	assert.True(t, summary.CashSales.Equal(dec("42.50")), summary.CashSales.String())
	assert.True(t, summary.TotalSales.Equal(dec("141.50")), summary.TotalSales.String())
	assert.True(t, summary.ExpectedCash.Equal(dec("242.50")), summary.ExpectedCash.String())
	assert.Nil(t, summary.CashVariance)

	// Closing exposes the cash variance against expected
	time.Sleep(10 * time.Millisecond)
	_, err = svc.CloseSession(business.ID, user.ID, session.ID, dec("240.00"), "")
	require.NoError(t, err)

	summary, err = svc.GetSessionSummary(business.ID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.CashVariance)
	assert.True(t, summary.CashVariance.Equal(dec("-2.50")), summary.CashVariance.String())
}
