package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProduct adds a product to the catalog
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	product, err := ctrl.productService.CreateProduct(businessID, req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateSKU) {
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "이미 등록된 상품 코드입니다")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{"business_id": businessID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct changes catalog fields of a product
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
		return
	}

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	product, err := ctrl.productService.UpdateProduct(businessID, uint(productID), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.StockProductNotFound, "상품을 찾을 수 없습니다")
		case errors.Is(err, service.ErrDuplicateSKU):
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "이미 등록된 상품 코드입니다")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetProduct returns one product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
		return
	}

	product, err := ctrl.productService.GetProduct(businessID, uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.StockProductNotFound, "상품을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListProducts returns the catalog
// GET /api/v1/products?active=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	activeOnly := c.Query("active") == "true"

	products, err := ctrl.productService.ListProducts(businessID, activeOnly)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// DeactivateProduct takes a product off sale
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeactivateProduct(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 상품 ID입니다")
		return
	}

	if err := ctrl.productService.DeactivateProduct(businessID, uint(productID)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.StockProductNotFound, "상품을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "상품이 판매 중지되었습니다"})
}
