package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
)

type SaleController struct {
	checkoutService service.CheckoutService
	saleService     service.SaleService
}

func NewSaleController(checkoutService service.CheckoutService, saleService service.SaleService) *SaleController {
	return &SaleController{
		checkoutService: checkoutService,
		saleService:     saleService,
	}
}

type CompleteSaleRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// Checkout creates a sale from the submitted cart
// POST /api/v1/sales/checkout
func (ctrl *SaleController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req service.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	sale, err := ctrl.checkoutService.Checkout(businessID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.SaleEmptyCart, "장바구니가 비어 있습니다")
		case errors.Is(err, service.ErrInvalidSaleType):
			apperrors.BadRequest(c, apperrors.SaleInvalidType, "잘못된 판매 유형입니다")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.StockInvalidQuantity, "수량은 0보다 커야 합니다")
		case errors.Is(err, service.ErrNegativeAmount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "할인 금액은 음수가 될 수 없습니다")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.StockProductNotFound, "상품을 찾을 수 없습니다")
		case errors.Is(err, service.ErrProductInactive):
			apperrors.BadRequest(c, apperrors.StockProductInactive, "판매 중지된 상품입니다")
		case errors.Is(err, service.ErrTableRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "매장 식사는 테이블 지정이 필요합니다")
		case errors.Is(err, service.ErrTableNotFound):
			apperrors.NotFound(c, apperrors.TableNotFound, "테이블을 찾을 수 없습니다")
		case errors.Is(err, service.ErrTableNotAvailable):
			apperrors.Conflict(c, apperrors.TableNotAvailable, "이미 사용 중인 테이블입니다")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{"business_id": businessID})
			apperrors.InternalError(c, "판매 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sale": sale})
}

// CompleteSale finalizes a pending sale
// PUT /api/v1/sales/:id/complete
func (ctrl *SaleController) CompleteSale(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, _ := middleware.GetUserID(c)

	saleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 판매 ID입니다")
		return
	}

	var req CompleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	sale, err := ctrl.saleService.CompleteSale(businessID, userID, uint(saleID), req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			apperrors.NotFound(c, apperrors.SaleNotFound, "판매 내역을 찾을 수 없습니다")
		case errors.Is(err, service.ErrInvalidStateTransition):
			apperrors.Conflict(c, apperrors.SaleInvalidTransition, "이미 완료되었거나 취소된 판매입니다")
		default:
			log.Error("Failed to complete sale", err, map[string]interface{}{"sale_id": saleID})
			apperrors.InternalError(c, "판매 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// CancelSale cancels a pending sale
// PUT /api/v1/sales/:id/cancel
func (ctrl *SaleController) CancelSale(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, _ := middleware.GetUserID(c)

	saleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 판매 ID입니다")
		return
	}

	var req CancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	sale, err := ctrl.saleService.CancelSale(businessID, userID, uint(saleID), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			apperrors.NotFound(c, apperrors.SaleNotFound, "판매 내역을 찾을 수 없습니다")
		case errors.Is(err, service.ErrInvalidStateTransition):
			apperrors.Conflict(c, apperrors.SaleInvalidTransition, "이미 완료되었거나 취소된 판매입니다")
		default:
			log.Error("Failed to cancel sale", err, map[string]interface{}{"sale_id": saleID})
			apperrors.InternalError(c, "판매 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// GetSale returns one sale with its items
// GET /api/v1/sales/:id
func (ctrl *SaleController) GetSale(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	saleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 판매 ID입니다")
		return
	}

	sale, err := ctrl.saleService.GetSale(businessID, uint(saleID))
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			apperrors.NotFound(c, apperrors.SaleNotFound, "판매 내역을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

// ListSales returns sales with optional filters
// GET /api/v1/sales?status=&type=&from=&to=&page=&limit=
func (ctrl *SaleController) ListSales(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	filter := repository.SaleFilter{
		Status:   model.SaleStatus(c.Query("status")),
		SaleType: model.SaleType(c.Query("type")),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filter.To = &to
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	sales, total, err := ctrl.saleService.ListSales(businessID, filter)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales": sales,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}
