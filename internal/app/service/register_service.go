package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRegisterNotFound      = errors.New("register session not found")
	ErrRegisterAlreadyClosed = errors.New("register session is already closed")
	ErrInvalidBalance        = errors.New("balance must not be negative")
	ErrPermissionDenied      = errors.New("only admins may open a register for another staff member")
	ErrArchiveNotAllowed     = errors.New("only managers may change session archival")
)

// SessionSummary is the read model for a register session. ExpectedCash and
// Variance against it are derived at read time from completed cash sales in
// the session window; the stored Variance stays the raw closing minus
// opening difference.
type SessionSummary struct {
	Session       *model.CashRegisterSession `json:"session"`
	CashSales     decimal.Decimal            `json:"cash_sales"`
	CashSaleCount int64                      `json:"cash_sale_count"`
	TotalSales    decimal.Decimal            `json:"total_sales"`
	SaleCount     int64                      `json:"sale_count"`
	ExpectedCash  decimal.Decimal            `json:"expected_cash"`
	CashVariance  *decimal.Decimal           `json:"cash_variance,omitempty"`
}

type RegisterService interface {
	OpenSession(businessID, actorID uint, actorRole model.UserRole, staffID uint, registerName string, openingBalance decimal.Decimal, notes string) (*model.CashRegisterSession, error)
	CloseSession(businessID, staffID, sessionID uint, closingBalance decimal.Decimal, notes string) (*model.CashRegisterSession, error)
	GetSession(businessID, sessionID uint) (*model.CashRegisterSession, error)
	ListSessions(businessID uint, includeArchived bool) ([]model.CashRegisterSession, error)
	SetArchived(businessID uint, role model.UserRole, sessionID uint, archived bool) error
	GetSessionSummary(businessID, sessionID uint) (*SessionSummary, error)
}

type registerService struct {
	registerRepo repository.RegisterRepository
	saleRepo     repository.SaleRepository
	db           *gorm.DB
}

func NewRegisterService(
	registerRepo repository.RegisterRepository,
	saleRepo repository.SaleRepository,
	db *gorm.DB,
) RegisterService {
	return &registerService{
		registerRepo: registerRepo,
		saleRepo:     saleRepo,
		db:           db,
	}
}

// OpenSession starts a new open/close cycle for one physical register. An
// admin may open on behalf of another staff member; everyone else opens for
// themselves. Two open sessions for the same register name are allowed;
// preventing that is left to caller policy.
func (s *registerService) OpenSession(businessID, actorID uint, actorRole model.UserRole, staffID uint, registerName string, openingBalance decimal.Decimal, notes string) (*model.CashRegisterSession, error) {
	if openingBalance.IsNegative() {
		return nil, ErrInvalidBalance
	}

	if staffID == 0 {
		staffID = actorID
	}
	if staffID != actorID && actorRole != model.RoleAdmin {
		logger.Warn("Rejected register open for another staff member", map[string]interface{}{
			"business_id": businessID,
			"actor_id":    actorID,
			"staff_id":    staffID,
			"role":        actorRole,
		})
		return nil, ErrPermissionDenied
	}

	session := &model.CashRegisterSession{
		BusinessID:     businessID,
		RegisterName:   registerName,
		StaffID:        staffID,
		OpeningBalance: openingBalance,
		OpeningTime:    time.Now(),
		Status:         model.RegisterOpen,
		Notes:          notes,
	}
	if err := s.registerRepo.Create(session); err != nil {
		logger.Error("Failed to open register session", err, map[string]interface{}{
			"business_id":   businessID,
			"register_name": registerName,
		})
		return nil, err
	}

	logger.Info("Register session opened", map[string]interface{}{
		"session_id":      session.ID,
		"register_name":   registerName,
		"opening_balance": openingBalance.String(),
	})
	return session, nil
}

// CloseSession finalizes an open session. Closing balance, closing time,
// variance and status flip in one update under a row lock, so a session can
// never be half closed.
func (s *registerService) CloseSession(businessID, staffID, sessionID uint, closingBalance decimal.Decimal, notes string) (*model.CashRegisterSession, error) {
	if closingBalance.IsNegative() {
		return nil, ErrInvalidBalance
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during register close, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"session_id": sessionID,
			})
		}
	}()

	session, err := s.registerRepo.FindByIDForUpdate(tx, businessID, sessionID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, err
	}

	if session.Status == model.RegisterClosed {
		tx.Rollback()
		return nil, ErrRegisterAlreadyClosed
	}

	now := time.Now()
	variance := closingBalance.Sub(session.OpeningBalance)

	session.ClosingBalance = &closingBalance
	session.ClosingTime = &now
	session.Variance = &variance
	session.Status = model.RegisterClosed
	if notes != "" {
		session.Notes = notes
	}

	if err := s.registerRepo.Update(tx, session); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit register close", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, err
	}

	logger.Info("Register session closed", map[string]interface{}{
		"session_id":      session.ID,
		"closing_balance": closingBalance.String(),
		"variance":        variance.String(),
	})
	return session, nil
}

func (s *registerService) GetSession(businessID, sessionID uint) (*model.CashRegisterSession, error) {
	session, err := s.registerRepo.FindByID(businessID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *registerService) ListSessions(businessID uint, includeArchived bool) ([]model.CashRegisterSession, error) {
	return s.registerRepo.List(businessID, includeArchived)
}

// SetArchived hides or restores a session in listings. Gated to managers
// and admins; archival never deletes anything.
func (s *registerService) SetArchived(businessID uint, role model.UserRole, sessionID uint, archived bool) error {
	if !role.CanManageSessions() {
		return ErrArchiveNotAllowed
	}

	if err := s.registerRepo.SetArchived(businessID, sessionID, archived); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegisterNotFound
		}
		return err
	}

	logger.Info("Register session archival changed", map[string]interface{}{
		"session_id": sessionID,
		"archived":   archived,
	})
	return nil
}

// GetSessionSummary derives expected cash for a session from the completed
// cash sales inside its open window.
func (s *registerService) GetSessionSummary(businessID, sessionID uint) (*SessionSummary, error) {
	session, err := s.GetSession(businessID, sessionID)
	if err != nil {
		return nil, err
	}

	cashSales, cashCount, err := s.saleRepo.SumCompleted(businessID, "cash", session.OpeningTime, session.ClosingTime)
	if err != nil {
		return nil, err
	}
	totalSales, saleCount, err := s.saleRepo.SumCompleted(businessID, "", session.OpeningTime, session.ClosingTime)
	if err != nil {
		return nil, err
	}

	summary := &SessionSummary{
		Session:       session,
		CashSales:     cashSales,
		CashSaleCount: cashCount,
		TotalSales:    totalSales,
		SaleCount:     saleCount,
		ExpectedCash:  session.OpeningBalance.Add(cashSales),
	}
	if session.ClosingBalance != nil {
		cashVariance := session.ClosingBalance.Sub(summary.ExpectedCash)
		summary.CashVariance = &cashVariance
	}
	return summary, nil
}
