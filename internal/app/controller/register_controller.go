package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	apperrors "github.com/mkweon/barunpos-backend/internal/errors"
	"github.com/mkweon/barunpos-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type RegisterController struct {
	registerService service.RegisterService
}

func NewRegisterController(registerService service.RegisterService) *RegisterController {
	return &RegisterController{
		registerService: registerService,
	}
}

type OpenSessionRequest struct {
	RegisterName   string          `json:"register_name" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	StaffID        uint            `json:"staff_id"` // admins may open for another staff member
	Notes          string          `json:"notes"`
}

type CloseSessionRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Notes          string          `json:"notes"`
}

// OpenSession starts a register session
// POST /api/v1/registers
func (ctrl *RegisterController) OpenSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	session, err := ctrl.registerService.OpenSession(businessID, userID, role, req.StaffID, req.RegisterName, req.OpeningBalance, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBalance):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "시재 금액은 음수가 될 수 없습니다")
		case errors.Is(err, service.ErrPermissionDenied):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzForbidden, "다른 직원의 시재는 관리자만 열 수 있습니다")
		default:
			log.Error("Failed to open register session", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "시재 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// CloseSession finalizes an open register session
// PUT /api/v1/registers/:id/close
func (ctrl *RegisterController) CloseSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, _ := middleware.GetBusinessID(c)
	userID, _ := middleware.GetUserID(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 세션 ID입니다")
		return
	}

	var req CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력값이 올바르지 않습니다")
		return
	}

	session, err := ctrl.registerService.CloseSession(businessID, userID, uint(sessionID), req.ClosingBalance, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBalance):
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "시재 금액은 음수가 될 수 없습니다")
		case errors.Is(err, service.ErrRegisterNotFound):
			apperrors.NotFound(c, apperrors.RegisterNotFound, "시재 세션을 찾을 수 없습니다")
		case errors.Is(err, service.ErrRegisterAlreadyClosed):
			apperrors.Conflict(c, apperrors.RegisterAlreadyClosed, "이미 마감된 세션입니다")
		default:
			log.Error("Failed to close register session", err, map[string]interface{}{
				"session_id": sessionID,
			})
			apperrors.InternalError(c, "시재 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ListSessions returns register sessions
// GET /api/v1/registers?include_archived=
func (ctrl *RegisterController) ListSessions(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	includeArchived := c.Query("include_archived") == "true"

	sessions, err := ctrl.registerService.ListSessions(businessID, includeArchived)
	if err != nil {
		apperrors.InternalError(c, "시재 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSessionSummary returns the derived cash summary for a session
// GET /api/v1/registers/:id/summary
func (ctrl *RegisterController) GetSessionSummary(c *gin.Context) {
	businessID, _ := middleware.GetBusinessID(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 세션 ID입니다")
		return
	}

	summary, err := ctrl.registerService.GetSessionSummary(businessID, uint(sessionID))
	if err != nil {
		if errors.Is(err, service.ErrRegisterNotFound) {
			apperrors.NotFound(c, apperrors.RegisterNotFound, "시재 세션을 찾을 수 없습니다")
			return
		}
		apperrors.InternalError(c, "시재 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Archive hides a session in default listings
// PUT /api/v1/registers/:id/archive
func (ctrl *RegisterController) Archive(c *gin.Context) {
	ctrl.setArchived(c, true)
}

// Unarchive restores a session to default listings
// PUT /api/v1/registers/:id/unarchive
func (ctrl *RegisterController) Unarchive(c *gin.Context) {
	ctrl.setArchived(c, false)
}

func (ctrl *RegisterController) setArchived(c *gin.Context, archived bool) {
	businessID, _ := middleware.GetBusinessID(c)
	role, _ := middleware.GetUserRole(c)

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 세션 ID입니다")
		return
	}

	if err := ctrl.registerService.SetArchived(businessID, role, uint(sessionID), archived); err != nil {
		switch {
		case errors.Is(err, service.ErrArchiveNotAllowed):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzManagerOnly, "세션 보관은 관리자만 가능합니다")
		case errors.Is(err, service.ErrRegisterNotFound):
			apperrors.NotFound(c, apperrors.RegisterNotFound, "시재 세션을 찾을 수 없습니다")
		default:
			apperrors.InternalError(c, "시재 처리 중 오류가 발생했습니다")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": archived})
}
