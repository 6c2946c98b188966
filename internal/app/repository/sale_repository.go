package repository

import (
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows List. Zero values mean no filter.
type SaleFilter struct {
	Status   model.SaleStatus
	SaleType model.SaleType
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(businessID, id uint) (*model.Sale, error)
	FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.Sale, error)
	Update(tx *gorm.DB, sale *model.Sale) error
	List(businessID uint, filter SaleFilter) ([]model.Sale, int64, error)
	SumCompleted(businessID uint, paymentMethod string, from time.Time, to *time.Time) (decimal.Decimal, int64, error)
	FindOrphaned(olderThan time.Time) ([]model.Sale, error)
	MarkNeedsReview(ids []uint) error
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) preloadSale(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(idb *gorm.DB) *gorm.DB {
		return idb.Preload("Product")
	}).Preload("Customer").Preload("Table")
}

func (r *saleRepository) Create(tx *gorm.DB, sale *model.Sale) error {
	logger.Debug("Creating sale in database", map[string]interface{}{
		"business_id":    sale.BusinessID,
		"receipt_number": sale.ReceiptNumber,
		"sale_type":      sale.SaleType,
		"total_amount":   sale.TotalAmount.String(),
	})

	if err := tx.Create(sale).Error; err != nil {
		logger.Error("Failed to create sale in database", err, map[string]interface{}{
			"receipt_number": sale.ReceiptNumber,
		})
		return err
	}
	return nil
}

func (r *saleRepository) FindByID(businessID, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := r.preloadSale(r.db).
		Where("business_id = ?", businessID).
		First(&sale, id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindByIDForUpdate locks the sale row for the duration of tx. Items are
// loaded separately since FOR UPDATE does not compose with joins.
func (r *saleRepository) FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessID).
		First(&sale, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("sale_id = ?", sale.ID).Find(&sale.Items).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) Update(tx *gorm.DB, sale *model.Sale) error {
	if err := tx.Save(sale).Error; err != nil {
		logger.Error("Failed to update sale in database", err, map[string]interface{}{
			"sale_id": sale.ID,
		})
		return err
	}
	return nil
}

func (r *saleRepository) List(businessID uint, filter SaleFilter) ([]model.Sale, int64, error) {
	query := r.db.Model(&model.Sale{}).Where("business_id = ?", businessID)

	if filter.Status != "" {
		query = query.Where("sale_status = ?", filter.Status)
	}
	if filter.SaleType != "" {
		query = query.Where("sale_type = ?", filter.SaleType)
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

	var sales []model.Sale
	if err := r.preloadSale(query).
		Order("created_at DESC, id DESC").
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// SumCompleted totals completed sales for one payment method in a window.
// A nil to means "until now"; used for register session summaries.
func (r *saleRepository) SumCompleted(businessID uint, paymentMethod string, from time.Time, to *time.Time) (decimal.Decimal, int64, error) {
	query := r.db.Model(&model.Sale{}).
		Where("business_id = ? AND sale_status = ? AND created_at >= ?",
			businessID, model.SaleStatusCompleted, from)
	if paymentMethod != "" {
		query = query.Where("payment_method = ?", paymentMethod)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var row struct {
		Total string
		Count int64
	}
	if err := query.
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error; err != nil {
		return decimal.Zero, 0, err
	}

	total, err := decimal.NewFromString(row.Total)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return total, row.Count, nil
}

// FindOrphaned returns non-cancelled sales older than the cutoff that have
// no line items. These indicate an interrupted checkout and get flagged.
func (r *saleRepository) FindOrphaned(olderThan time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	if err := r.db.
		Where("created_at < ? AND sale_status <> ? AND needs_review = ?",
			olderThan, model.SaleStatusCancelled, false).
		Where("NOT EXISTS (SELECT 1 FROM sale_items WHERE sale_items.sale_id = sales.id)").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) MarkNeedsReview(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.Sale{}).
		Where("id IN ?", ids).
		Update("needs_review", true).Error
}
