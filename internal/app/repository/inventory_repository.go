package repository

import (
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter narrows ListTransactions. Zero values mean no filter.
type TransactionFilter struct {
	ProductID uint
	Type      model.TransactionType
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type InventoryRepository interface {
	FindRecord(businessID, productID uint) (*model.InventoryRecord, error)
	FindRecordForUpdate(tx *gorm.DB, businessID, productID uint) (*model.InventoryRecord, error)
	CreateRecord(tx *gorm.DB, record *model.InventoryRecord) error
	ApplyDelta(tx *gorm.DB, recordID uint, delta decimal.Decimal) error
	CreateTransaction(tx *gorm.DB, transaction *model.InventoryTransaction) error
	ListRecords(businessID uint) ([]model.InventoryRecord, error)
	ListTransactions(businessID uint, filter TransactionFilter) ([]model.InventoryTransaction, int64, error)
	SumDeltas(businessID, productID uint) (decimal.Decimal, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindRecord(businessID, productID uint) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	if err := r.db.Preload("Product").
		Where("business_id = ? AND product_id = ?", businessID, productID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecordForUpdate locks the record row for the duration of tx.
func (r *inventoryRepository) FindRecordForUpdate(tx *gorm.DB, businessID, productID uint) (*model.InventoryRecord, error) {
	var record model.InventoryRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND product_id = ?", businessID, productID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *inventoryRepository) CreateRecord(tx *gorm.DB, record *model.InventoryRecord) error {
	return tx.Create(record).Error
}

// ApplyDelta adjusts on-hand stock with an atomic SQL increment. The caller
// is responsible for writing the matching InventoryTransaction in the same tx.
func (r *inventoryRepository) ApplyDelta(tx *gorm.DB, recordID uint, delta decimal.Decimal) error {
	result := tx.Model(&model.InventoryRecord{}).
		Where("id = ?", recordID).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", delta))
	if result.Error != nil {
		logger.Error("Failed to apply stock delta", result.Error, map[string]interface{}{
			"record_id": recordID,
			"delta":     delta.String(),
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *inventoryRepository) CreateTransaction(tx *gorm.DB, transaction *model.InventoryTransaction) error {
	logger.Debug("Recording inventory transaction", map[string]interface{}{
		"business_id": transaction.BusinessID,
		"product_id":  transaction.ProductID,
		"type":        transaction.Type,
		"quantity":    transaction.Quantity.String(),
	})
	return tx.Create(transaction).Error
}

func (r *inventoryRepository) ListRecords(businessID uint) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	if err := r.db.Preload("Product").
		Where("business_id = ?", businessID).
		Order("product_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *inventoryRepository) ListTransactions(businessID uint, filter TransactionFilter) ([]model.InventoryTransaction, int64, error) {
	query := r.db.Model(&model.InventoryTransaction{}).Where("business_id = ?", businessID)

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var transactions []model.InventoryTransaction
	if err := query.Preload("Product").
		Order("created_at DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// SumDeltas replays the full ledger for one product. Used by the audit
// surface to cross-check the stored on-hand quantity.
func (r *inventoryRepository) SumDeltas(businessID, productID uint) (decimal.Decimal, error) {
	var transactions []model.InventoryTransaction
	if err := r.db.Where("business_id = ? AND product_id = ?", businessID, productID).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, t := range transactions {
		sum = sum.Add(t.Type.Delta(t.Quantity))
	}
	return sum, nil
}
