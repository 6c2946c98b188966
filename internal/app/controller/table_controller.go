package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
	"gorm.io/gorm"
)

type TableController struct {
	tableRepo repository.TableRepository
	db        *gorm.DB
}

func NewTableController(tableRepo repository.TableRepository, db *gorm.DB) *TableController {
	return &TableController{
		tableRepo: tableRepo,
		db:        db,
	}
}

type CreateTableRequest struct {
	Number       string `json:"number" binding:"required"`
	Section      string `json:"section"`
	SeatCapacity int    `json:"seat_capacity"`
}

type UpdateTableStatusRequest struct {
	Status model.TableStatus `json:"status" binding:"required"`
}

// CreateTable registers a physical table
// POST /api/v1/tables
func (ctrl *TableController) CreateTable(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	table := &model.RestaurantTable{
		BusinessID:   businessID,
		Number:       req.Number,
		Section:      req.Section,
		SeatCapacity: req.SeatCapacity,
		Status:       model.TableAvailable,
	}
	if err := ctrl.tableRepo.Create(table); err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"table": table})
}

// ListTables returns the floor layout
// GET /api/v1/tables
func (ctrl *TableController) ListTables(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	tables, err := ctrl.tableRepo.List(businessID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tables": tables,
		"count":  len(tables),
	})
}

// UpdateTableStatus changes a table's manual status. Occupied/available
// flips driven by sales go through the sale state machine, not here.
// PATCH /api/v1/tables/:id/status
func (ctrl *TableController) UpdateTableStatus(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	tableID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 테이블 ID입니다")
		return
	}

	var req UpdateTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.IsValid() {
		apperrors.BadRequest(c, apperrors.TableInvalidStatus, "잘못된 테이블 상태입니다")
		return
	}

	if err := ctrl.tableRepo.UpdateStatus(ctrl.db, businessID, uint(tableID), req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.NotFound(c, apperrors.TableNotFound, "테이블을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
