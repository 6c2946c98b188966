package service

import (
	"errors"
	"fmt"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrSaleNotFound           = errors.New("sale not found")
	ErrInvalidStateTransition = errors.New("sale state transition not allowed")
	ErrSaleAlreadyFinalized   = errors.New("sale is already finalized")
)

// SaleEventBroadcaster pushes sale lifecycle events to connected order
// boards. A nil broadcaster disables the push path.
type SaleEventBroadcaster interface {
	BroadcastSaleEvent(businessID uint, event string, sale *model.Sale)
}

type SaleService interface {
	CompleteSale(businessID, actorID, saleID uint, paymentMethod string) (*model.Sale, error)
	CancelSale(businessID, actorID, saleID uint, reason string) (*model.Sale, error)
	GetSale(businessID, saleID uint) (*model.Sale, error)
	ListSales(businessID uint, filter repository.SaleFilter) ([]model.Sale, int64, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	tableRepo    repository.TableRepository
	inventorySvc InventoryService
	broadcaster  SaleEventBroadcaster
	db           *gorm.DB
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	tableRepo repository.TableRepository,
	inventorySvc InventoryService,
	broadcaster SaleEventBroadcaster,
	db *gorm.DB,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		tableRepo:    tableRepo,
		inventorySvc: inventorySvc,
		broadcaster:  broadcaster,
		db:           db,
	}
}

// CompleteSale moves a pending sale to completed. Stock debits for its items
// are written in the same transaction, so a completed sale always has its
// ledger rows and a pending one never does. Dine-in completion releases the
// table.
func (s *saleService) CompleteSale(businessID, actorID, saleID uint, paymentMethod string) (*model.Sale, error) {
	logger.Info("Completing sale", map[string]interface{}{
		"business_id": businessID,
		"sale_id":     saleID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during sale completion, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"sale_id": saleID,
			})
		}
	}()

	sale, err := s.saleRepo.FindByIDForUpdate(tx, businessID, saleID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	if sale.SaleStatus.IsTerminal() {
		tx.Rollback()
		logger.Warn("Rejected completion of finalized sale", map[string]interface{}{
			"sale_id": saleID,
			"status":  sale.SaleStatus,
		})
		return nil, ErrInvalidStateTransition
	}

	if err := s.inventorySvc.RecordSaleDebits(tx, businessID, actorID, sale.Items); err != nil {
		tx.Rollback()
		return nil, err
	}

	sale.SaleStatus = model.SaleStatusCompleted
	sale.PaymentStatus = model.PaymentCompleted
	if paymentMethod != "" {
		sale.PaymentMethod = paymentMethod
	}
	if err := s.saleRepo.Update(tx, sale); err != nil {
		tx.Rollback()
		return nil, err
	}

	if sale.SaleType == model.SaleDineIn && sale.TableID != nil {
		if err := s.tableRepo.UpdateStatus(tx, businessID, *sale.TableID, model.TableAvailable); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit sale completion", err, map[string]interface{}{
			"sale_id": saleID,
		})
		return nil, err
	}

	logger.Info("Sale completed", map[string]interface{}{
		"sale_id":        sale.ID,
		"receipt_number": sale.ReceiptNumber,
		"total_amount":   sale.TotalAmount.String(),
	})

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSaleEvent(businessID, "sale.completed", sale)
	}
	return sale, nil
}

// CancelSale moves a pending sale to cancelled. Monetary fields are kept as
// historical record and no stock debits are written; pending sales never
// touched the ledger. Completed sales cannot be cancelled, that path is a
// return transaction.
func (s *saleService) CancelSale(businessID, actorID, saleID uint, reason string) (*model.Sale, error) {
	logger.Info("Cancelling sale", map[string]interface{}{
		"business_id": businessID,
		"sale_id":     saleID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during sale cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"sale_id": saleID,
			})
		}
	}()

	sale, err := s.saleRepo.FindByIDForUpdate(tx, businessID, saleID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	if sale.SaleStatus.IsTerminal() {
		tx.Rollback()
		return nil, ErrInvalidStateTransition
	}

	sale.SaleStatus = model.SaleStatusCancelled
	if reason != "" {
		sale.Notes = reason
	}
	if err := s.saleRepo.Update(tx, sale); err != nil {
		tx.Rollback()
		return nil, err
	}

	if sale.SaleType == model.SaleDineIn && sale.TableID != nil {
		if err := s.tableRepo.UpdateStatus(tx, businessID, *sale.TableID, model.TableAvailable); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit sale cancellation", err, map[string]interface{}{
			"sale_id": saleID,
		})
		return nil, err
	}

	logger.Info("Sale cancelled", map[string]interface{}{
		"sale_id":        sale.ID,
		"receipt_number": sale.ReceiptNumber,
	})

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSaleEvent(businessID, "sale.cancelled", sale)
	}
	return sale, nil
}

func (s *saleService) GetSale(businessID, saleID uint) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(businessID, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) ListSales(businessID uint, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	return s.saleRepo.List(businessID, filter)
}
