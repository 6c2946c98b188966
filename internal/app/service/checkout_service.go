package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/mkweon/barunpos-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidSaleType   = errors.New("invalid sale type")
	ErrTableRequired     = errors.New("dine-in sale requires a table")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableNotAvailable = errors.New("table is not available")
)

// CheckoutItemInput is one cart line as submitted by the till. A percent
// discount takes precedence over an absolute one when both are sent.
type CheckoutItemInput struct {
	ProductID       uint            `json:"product_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
}

// CheckoutInput is the full checkout request. CustomerPhone resolves or
// creates a customer; empty means an anonymous walk-in.
type CheckoutInput struct {
	SaleType      model.SaleType      `json:"sale_type" binding:"required"`
	TableID       *uint               `json:"table_id"`
	CustomerPhone string              `json:"customer_phone"`
	CustomerName  string              `json:"customer_name"`
	PaymentMethod string              `json:"payment_method"`
	Notes         string              `json:"notes"`
	Items         []CheckoutItemInput `json:"items" binding:"required"`
}

type CheckoutService interface {
	Checkout(businessID, actorID uint, input CheckoutInput) (*model.Sale, error)
}

type checkoutService struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	tableRepo    repository.TableRepository
	inventorySvc InventoryService
	broadcaster  SaleEventBroadcaster
	db           *gorm.DB
}

func NewCheckoutService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	tableRepo repository.TableRepository,
	inventorySvc InventoryService,
	broadcaster SaleEventBroadcaster,
	db *gorm.DB,
) CheckoutService {
	return &checkoutService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		tableRepo:    tableRepo,
		inventorySvc: inventorySvc,
		broadcaster:  broadcaster,
		db:           db,
	}
}

// Checkout validates the cart, prices it, and persists the sale with its
// line items in one transaction. Retail sales are created completed with
// their stock debits; dine-in and takeaway start pending and debit at
// completion. Dine-in additionally occupies the table.
func (s *checkoutService) Checkout(businessID, actorID uint, input CheckoutInput) (*model.Sale, error) {
	if !input.SaleType.IsValid() {
		return nil, ErrInvalidSaleType
	}
	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if input.SaleType == model.SaleDineIn && input.TableID == nil {
		return nil, ErrTableRequired
	}

	logger.Info("Processing checkout", map[string]interface{}{
		"business_id": businessID,
		"sale_type":   input.SaleType,
		"item_count":  len(input.Items),
	})

	var business model.Business
	if err := s.db.First(&business, businessID).Error; err != nil {
		return nil, err
	}

	items := make([]model.SaleItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidQuantity
		}
		if line.DiscountPercent.IsNegative() || line.DiscountAmount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		product, err := s.productRepo.FindByID(businessID, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Checkout references unknown product", map[string]interface{}{
					"business_id": businessID,
					"product_id":  line.ProductID,
				})
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}
		item, err := BuildSaleItem(product, line.Quantity, line.DiscountPercent, line.DiscountAmount)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	totals := SumSaleItems(items)

	customerID, err := s.resolveCustomer(businessID, input.CustomerPhone, input.CustomerName)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		BusinessID:    businessID,
		CustomerID:    customerID,
		SaleType:      input.SaleType,
		TableID:       input.TableID,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		TaxAmount:     totals.TaxAmount,
		TotalAmount:   totals.TotalAmount,
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
		CreatedByID:   actorID,
		Items:         items,
	}

	if input.SaleType == model.SaleRetail {
		// Retail rings up and pays in one step
		sale.SaleStatus = model.SaleStatusCompleted
		sale.PaymentStatus = model.PaymentCompleted
	} else {
		sale.SaleStatus = model.SaleStatusPending
		sale.PaymentStatus = model.PaymentPending
	}

	// Receipt numbers are time-derived; retry once on the unique index in
	// case two tills collide within the same second
	for attempt := 0; attempt < 2; attempt++ {
		sale.ReceiptNumber = util.GenerateReceiptNumber(business.ReceiptPrefix, time.Now())
		sale.ID = 0
		for i := range sale.Items {
			sale.Items[i].ID = 0
			sale.Items[i].SaleID = 0
		}

		err = s.persistSale(businessID, actorID, sale)
		if err == nil {
			break
		}
		if !isDuplicateReceipt(err) {
			return nil, err
		}
		logger.Warn("Receipt number collision, regenerating", map[string]interface{}{
			"receipt_number": sale.ReceiptNumber,
		})
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"sale_id":        sale.ID,
		"receipt_number": sale.ReceiptNumber,
		"sale_status":    sale.SaleStatus,
		"total_amount":   sale.TotalAmount.String(),
	})

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSaleEvent(businessID, "sale.created", sale)
	}
	return sale, nil
}

// persistSale runs the transactional part of checkout: sale row, line items,
// table occupancy and, for retail, the stock debits.
func (s *checkoutService) persistSale(businessID, actorID uint, sale *model.Sale) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"business_id": businessID,
			})
		}
	}()

	if sale.SaleType == model.SaleDineIn && sale.TableID != nil {
		table, err := s.tableRepo.FindByIDForUpdate(tx, businessID, *sale.TableID)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if table.Status != model.TableAvailable {
			tx.Rollback()
			return ErrTableNotAvailable
		}
		if err := s.tableRepo.UpdateStatus(tx, businessID, table.ID, model.TableOccupied); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := s.saleRepo.Create(tx, sale); err != nil {
		tx.Rollback()
		return err
	}

	if sale.SaleStatus == model.SaleStatusCompleted {
		if err := s.inventorySvc.RecordSaleDebits(tx, businessID, actorID, sale.Items); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// resolveCustomer finds a customer by phone or creates one. Both phone and
// name empty means an anonymous sale.
func (s *checkoutService) resolveCustomer(businessID uint, phone, name string) (*uint, error) {
	if phone == "" {
		return nil, nil
	}

	customer, err := s.customerRepo.FindByPhone(businessID, phone)
	if err == nil {
		return &customer.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = phone
	}
	customer = &model.Customer{
		BusinessID: businessID,
		Name:       name,
		Phone:      phone,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}

	logger.Info("Created customer during checkout", map[string]interface{}{
		"business_id": businessID,
		"customer_id": customer.ID,
	})
	return &customer.ID, nil
}

func isDuplicateReceipt(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return (strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")) &&
		strings.Contains(msg, "receipt")
}
