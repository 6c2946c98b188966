package service

import (
	"errors"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrDuplicateSKU = errors.New("sku already exists for this business")

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	SKU           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	SellingPrice  decimal.Decimal `json:"selling_price" binding:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxType       model.TaxType   `json:"tax_type"`
	IsActive      *bool           `json:"is_active"`
	ImageURL      string          `json:"image_url"`
}

type ProductService interface {
	CreateProduct(businessID uint, input ProductInput) (*model.Product, error)
	UpdateProduct(businessID, productID uint, input ProductInput) (*model.Product, error)
	GetProduct(businessID, productID uint) (*model.Product, error)
	ListProducts(businessID uint, activeOnly bool) ([]model.Product, error)
	DeactivateProduct(businessID, productID uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) CreateProduct(businessID uint, input ProductInput) (*model.Product, error) {
	if _, err := s.productRepo.FindBySKU(businessID, input.SKU); err == nil {
		return nil, ErrDuplicateSKU
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taxType := input.TaxType
	if taxType == "" {
		taxType = model.TaxNone
	}

	product := &model.Product{
		BusinessID:    businessID,
		SKU:           input.SKU,
		Name:          input.Name,
		Description:   input.Description,
		SellingPrice:  input.SellingPrice,
		PurchasePrice: input.PurchasePrice,
		TaxRate:       input.TaxRate,
		TaxType:       taxType,
		IsActive:      true,
		ImageURL:      input.ImageURL,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct changes catalog fields. Existing sale lines keep their
// snapshots, so price changes never rewrite history.
func (s *productService) UpdateProduct(businessID, productID uint, input ProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if input.SKU != "" && input.SKU != product.SKU {
		if _, err := s.productRepo.FindBySKU(businessID, input.SKU); err == nil {
			return nil, ErrDuplicateSKU
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		product.SKU = input.SKU
	}
	if input.Name != "" {
		product.Name = input.Name
	}
	product.Description = input.Description
	if !input.SellingPrice.IsZero() {
		product.SellingPrice = input.SellingPrice
	}
	product.PurchasePrice = input.PurchasePrice
	product.TaxRate = input.TaxRate
	if input.TaxType != "" {
		product.TaxType = input.TaxType
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id":  product.ID,
		"business_id": businessID,
	})
	return product, nil
}

func (s *productService) GetProduct(businessID, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(businessID uint, activeOnly bool) ([]model.Product, error) {
	return s.productRepo.List(businessID, activeOnly)
}

// DeactivateProduct takes a product off sale without deleting it; historic
// sale lines still reference it.
func (s *productService) DeactivateProduct(businessID, productID uint) error {
	product, err := s.productRepo.FindByID(businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	product.IsActive = false
	return s.productRepo.Update(product)
}
