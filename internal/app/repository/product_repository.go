package repository

import (
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindByID(businessID, id uint) (*model.Product, error)
	FindBySKU(businessID uint, sku string) (*model.Product, error)
	List(businessID uint, activeOnly bool) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(businessID, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"business_id": product.BusinessID,
		"sku":         product.SKU,
		"name":        product.Name,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"sku": product.SKU,
		})
		return err
	}
	return nil
}

// BulkCreate inserts products in batches. Used by the catalog import
// command, not by the API.
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(businessID, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("business_id = ?", businessID).
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(businessID uint, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("business_id = ? AND sku = ?", businessID, sku).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(businessID uint, activeOnly bool) ([]model.Product, error) {
	query := r.db.Where("business_id = ?", businessID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []model.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(businessID, id uint) error {
	result := r.db.Where("business_id = ?", businessID).Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
