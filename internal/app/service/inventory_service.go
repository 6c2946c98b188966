package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidTransactionType = errors.New("invalid inventory transaction type")
	ErrInventoryNotFound      = errors.New("inventory record not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrProductInactive        = errors.New("product is not active")
)

// StockLevel is the read model for one product's inventory position.
type StockLevel struct {
	Record    *model.InventoryRecord `json:"record"`
	Available decimal.Decimal        `json:"available"`
	Status    model.StockStatus      `json:"status"`
}

type InventoryService interface {
	RecordTransaction(businessID, actorID, productID uint, txType model.TransactionType, quantity decimal.Decimal, notes string) (*model.InventoryTransaction, error)
	RecordSaleDebits(tx *gorm.DB, businessID, actorID uint, items []model.SaleItem) error
	CurrentStock(businessID, productID uint) (*StockLevel, error)
	ListStock(businessID uint) ([]StockLevel, error)
	ListTransactions(businessID uint, filter repository.TransactionFilter) ([]model.InventoryTransaction, int64, error)
	VerifyLedger(businessID, productID uint) (bool, decimal.Decimal, decimal.Decimal, error)
}

// productLocks serializes ledger writes per (business, product). The DB row
// lock already protects postgres; this keeps concurrent writers from piling
// into SQLITE_BUSY in embedded deployments and tests.
type productLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *productLocks) get(businessID, productID uint) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", businessID, productID)
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
	locks         *productLocks
	db            *gorm.DB
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		locks:         newProductLocks(),
		db:            db,
	}
}

// RecordTransaction appends one immutable ledger row and applies its delta
// to the stock record in a single transaction. Stock may go negative; that
// is surfaced through StockStatus, not blocked here.
func (s *inventoryService) RecordTransaction(businessID, actorID, productID uint, txType model.TransactionType, quantity decimal.Decimal, notes string) (*model.InventoryTransaction, error) {
	if !txType.IsValid() {
		return nil, ErrInvalidTransactionType
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		logger.Warn("Rejected inventory transaction with non-positive quantity", map[string]interface{}{
			"business_id": businessID,
			"product_id":  productID,
			"quantity":    quantity.String(),
		})
		return nil, ErrInvalidQuantity
	}

	if _, err := s.productRepo.FindByID(businessID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	lock := s.locks.get(businessID, productID)
	lock.Lock()
	defer lock.Unlock()

	transaction := &model.InventoryTransaction{
		BusinessID:  businessID,
		ProductID:   productID,
		Type:        txType,
		Quantity:    quantity,
		Notes:       notes,
		CreatedByID: actorID,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during inventory transaction, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"business_id": businessID,
				"product_id":  productID,
			})
		}
	}()

	if err := s.applyLedgerEntry(tx, transaction); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit inventory transaction", err, map[string]interface{}{
			"business_id": businessID,
			"product_id":  productID,
		})
		return nil, err
	}

	logger.Info("Inventory transaction recorded", map[string]interface{}{
		"transaction_id": transaction.ID,
		"business_id":    businessID,
		"product_id":     productID,
		"type":           txType,
		"quantity":       quantity.String(),
	})
	return transaction, nil
}

// RecordSaleDebits writes one sale-type ledger row per sale item inside the
// caller's transaction. The caller holds the sale in the same tx, so the
// debits commit or roll back together with the sale status change.
//
// Every product lock is taken up front in ID order, before the first row
// lock. Interleaving mutex and row-lock acquisition across items can
// deadlock against RecordTransaction, which holds a product lock while it
// waits for the same rows.
func (s *inventoryService) RecordSaleDebits(tx *gorm.DB, businessID, actorID uint, items []model.SaleItem) error {
	for _, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidQuantity
		}
	}

	productIDs := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	for _, productID := range productIDs {
		lock := s.locks.get(businessID, productID)
		lock.Lock()
		defer lock.Unlock()
	}

	for _, item := range items {
		entry := &model.InventoryTransaction{
			BusinessID:  businessID,
			ProductID:   item.ProductID,
			Type:        model.TransactionSale,
			Quantity:    item.Quantity,
			Notes:       fmt.Sprintf("sale item #%d", item.ID),
			CreatedByID: actorID,
		}
		if err := s.applyLedgerEntry(tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// applyLedgerEntry creates the stock record on first touch, then writes the
// ledger row and applies its signed delta atomically.
func (s *inventoryService) applyLedgerEntry(tx *gorm.DB, entry *model.InventoryTransaction) error {
	record, err := s.inventoryRepo.FindRecordForUpdate(tx, entry.BusinessID, entry.ProductID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record = &model.InventoryRecord{
			BusinessID:     entry.BusinessID,
			ProductID:      entry.ProductID,
			QuantityOnHand: decimal.Zero,
		}
		if err := s.inventoryRepo.CreateRecord(tx, record); err != nil {
			return err
		}
	}

	if err := s.inventoryRepo.CreateTransaction(tx, entry); err != nil {
		return err
	}
	return s.inventoryRepo.ApplyDelta(tx, record.ID, entry.Type.Delta(entry.Quantity))
}

func (s *inventoryService) CurrentStock(businessID, productID uint) (*StockLevel, error) {
	record, err := s.inventoryRepo.FindRecord(businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, err
	}
	return &StockLevel{
		Record:    record,
		Available: record.Available(),
		Status:    record.Status(),
	}, nil
}

func (s *inventoryService) ListStock(businessID uint) ([]StockLevel, error) {
	records, err := s.inventoryRepo.ListRecords(businessID)
	if err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(records))
	for i := range records {
		record := &records[i]
		levels = append(levels, StockLevel{
			Record:    record,
			Available: record.Available(),
			Status:    record.Status(),
		})
	}
	return levels, nil
}

func (s *inventoryService) ListTransactions(businessID uint, filter repository.TransactionFilter) ([]model.InventoryTransaction, int64, error) {
	return s.inventoryRepo.ListTransactions(businessID, filter)
}

// VerifyLedger replays every transaction for a product and compares the sum
// against the stored on-hand quantity. Returns (match, stored, replayed).
func (s *inventoryService) VerifyLedger(businessID, productID uint) (bool, decimal.Decimal, decimal.Decimal, error) {
	record, err := s.inventoryRepo.FindRecord(businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, decimal.Zero, decimal.Zero, ErrInventoryNotFound
		}
		return false, decimal.Zero, decimal.Zero, err
	}

	replayed, err := s.inventoryRepo.SumDeltas(businessID, productID)
	if err != nil {
		return false, decimal.Zero, decimal.Zero, err
	}

	match := record.QuantityOnHand.Equal(replayed)
	if !match {
		logger.Warn("Ledger replay does not match stored stock", map[string]interface{}{
			"business_id": businessID,
			"product_id":  productID,
			"stored":      record.QuantityOnHand.String(),
			"replayed":    replayed.String(),
		})
	}
	return match, record.QuantityOnHand, replayed, nil
}
