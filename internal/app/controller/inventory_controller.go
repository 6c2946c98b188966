package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type InventoryController struct {
	inventoryService service.InventoryService
	exportService    service.ExportService
}

func NewInventoryController(inventoryService service.InventoryService, exportService service.ExportService) *InventoryController {
	return &InventoryController{
		inventoryService: inventoryService,
		exportService:    exportService,
	}
}

type RecordTransactionRequest struct {
	ProductID uint                  `json:"product_id" binding:"required"`
	Type      model.TransactionType `json:"type" binding:"required"`
	Quantity  decimal.Decimal       `json:"quantity" binding:"required"`
	Notes     string                `json:"notes"`
}

// RecordTransaction appends a manual stock movement
// POST /api/v1/inventory/transactions
func (ctrl *InventoryController) RecordTransaction(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, _ := middleware.GetUserID(c)

	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	transaction, err := ctrl.inventoryService.RecordTransaction(businessID, userID, req.ProductID, req.Type, req.Quantity, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransactionType):
			apperrors.BadRequest(c, apperrors.StockInvalidTxType, "잘못된 재고 이동 유형입니다")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.StockInvalidQuantity, "수량은 0보다 커야 합니다")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.StockProductNotFound, "상품을 찾을 수 없습니다")
		default:
			log.Error("Failed to record inventory transaction", err, map[string]interface{}{
				"business_id": businessID,
				"product_id":  req.ProductID,
			})
			apperrors.InternalError(c, "재고 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions returns the ledger with optional filters
// GET /api/v1/inventory/transactions?product_id=&type=&from=&to=&page=&limit=
func (ctrl *InventoryController) ListTransactions(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	filter := ctrl.parseFilter(c)
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	transactions, total, err := ctrl.inventoryService.ListTransactions(businessID, filter)
	if err != nil {
		apperrors.InternalError(c, "재고 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        total,
		"page":         filter.Page,
		"limit":        filter.Limit,
	})
}

// GetStock returns the current stock level of one product
// GET /api/v1/inventory/stock/:productId
func (ctrl *InventoryController) GetStock(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
		return
	}

	level, err := ctrl.inventoryService.CurrentStock(businessID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			apperrors.NotFound(c, apperrors.StockRecordNotFound, "재고 기록을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "재고 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stock": level})
}

// ListStock returns all stock levels for the business
// GET /api/v1/inventory/stock
func (ctrl *InventoryController) ListStock(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	levels, err := ctrl.inventoryService.ListStock(businessID)
	if err != nil {
		apperrors.InternalError(c, "재고 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock": levels,
		"count": len(levels),
	})
}

// VerifyLedger replays the ledger for one product against stored stock
// GET /api/v1/inventory/verify/:productId
func (ctrl *InventoryController) VerifyLedger(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
		return
	}

	match, stored, replayed, err := ctrl.inventoryService.VerifyLedger(businessID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			apperrors.NotFound(c, apperrors.StockRecordNotFound, "재고 기록을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "재고 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match":    match,
		"stored":   stored,
		"replayed": replayed,
	})
}

// ExportTransactions downloads the filtered ledger as XLSX
// GET /api/v1/inventory/transactions/export?product_id=&type=&from=&to=
func (ctrl *InventoryController) ExportTransactions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)

	buf, filename, err := ctrl.exportService.ExportInventoryTransactions(businessID, ctrl.parseFilter(c))
	if err != nil {
		log.Error("Failed to export inventory transactions", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.InternalError(c, "재고 내보내기에 실패했습니다")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (ctrl *InventoryController) parseFilter(c *gin.Context) repository.TransactionFilter {
	filter := repository.TransactionFilter{
		Type: model.TransactionType(c.Query("type")),
	}
	if productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32); err == nil {
		filter.ProductID = uint(productID)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}
	return filter
}
